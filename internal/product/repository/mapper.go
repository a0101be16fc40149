package repository

import (
	"database/sql"

	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/store"
)

// ToModel converts a stored row into a product. NULL optional columns become empty strings.
func ToModel(r store.Row) model.Product {
	return model.Product{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price,
		Cost:     r.Cost,
		Stock:    r.Stock,
		Category: r.Category,
		ImageURL: r.ImageURL.String,
		Barcode:  r.Barcode.String,
	}
}

// ToRow converts a product into its stored form. Empty optional fields are stored as NULL.
func ToRow(p model.Product) store.Row {
	return store.Row{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Cost:     p.Cost,
		Stock:    p.Stock,
		Category: p.Category,
		ImageURL: nullString(p.ImageURL),
		Barcode:  nullString(p.Barcode),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
