// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// Row is the stored representation of a product.
// ImageURL and Barcode are nullable columns.
type Row struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	Stock    int
	Category string
	ImageURL sql.NullString
	Barcode  sql.NullString
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// Insert persists a new product and returns the ID assigned to it.
	// The ID of the given row is ignored.
	Insert(ctx context.Context, row Row) (int64, error)

	// InsertAll persists every row or none of them and returns the IDs in input order.
	InsertAll(ctx context.Context, rows []Row) ([]int64, error)

	// Update overwrites every field of the row with the same ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, row Row) error

	// Delete removes a product by its ID. Deleting an absent product is not an error.
	Delete(ctx context.Context, id int64) error

	// FindAll returns every product ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Row, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Row, error)

	// Close releases the underlying resources.
	Close() error
}
