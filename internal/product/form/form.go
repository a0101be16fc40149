// Package form turns raw add/edit form input into a validated product.
package form

import (
	"errors"
	"strconv"
	"strings"

	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidDraft is matched by every ValidationError.
var ErrInvalidDraft = errors.New("invalid product draft")

// Field names reported by ValidationError.
const (
	FieldName  = "name"
	FieldCost  = "cost"
	FieldPrice = "price"
	FieldStock = "stock"
)

// Draft holds the text typed into the product form.
// Category is the picked category; CustomCategory is used when nothing was picked.
type Draft struct {
	Name           string `json:"name"`
	Cost           string `json:"cost"`
	Price          string `json:"price"`
	Stock          string `json:"stock"`
	Category       string `json:"category"`
	CustomCategory string `json:"custom_category,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	Barcode        string `json:"barcode,omitempty"`
}

// ValidationError reports the first failing check of a draft.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDraft
}

type rule struct {
	field   string
	tag     string
	message string
}

// rules are checked in order and the first failure wins.
var rules = []rule{
	{FieldName, "required", "product name is required"},
	{FieldCost, "required", "cost is required"},
	{FieldPrice, "required", "price is required"},
	{FieldStock, "required", "stock is required"},
	{FieldCost, "decimal", "cost must be a valid number"},
	{FieldPrice, "decimal", "price must be a valid number"},
	{FieldStock, "integer", "stock must be a valid whole number"},
	{FieldCost, "nonnegative", "cost must not be negative"},
	{FieldPrice, "nonnegative", "price must not be negative"},
	{FieldStock, "nonnegative", "stock must not be negative"},
}

// Validator checks drafts. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the number checks registered.
func NewValidator() *Validator {
	v := validator.New()
	mustRegister(v, "decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "nonnegative", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

var defaultValidator = NewValidator()

// Validate checks a draft with the default Validator.
func Validate(d Draft) (model.Product, error) {
	return defaultValidator.Validate(d)
}

// Validate trims the draft, applies the rules in order and returns the product it describes.
// The returned product has no ID.
func (v *Validator) Validate(d Draft) (model.Product, error) {
	d = d.trimmed()
	values := map[string]string{
		FieldName:  d.Name,
		FieldCost:  d.Cost,
		FieldPrice: d.Price,
		FieldStock: d.Stock,
	}
	for _, r := range rules {
		if err := v.validate.Var(values[r.field], r.tag); err != nil {
			return model.Product{}, &ValidationError{Field: r.field, Message: r.message}
		}
	}

	stock, _ := strconv.Atoi(d.Stock)
	return model.Product{
		Name:     d.Name,
		Cost:     decimal.RequireFromString(d.Cost),
		Price:    decimal.RequireFromString(d.Price),
		Stock:    stock,
		Category: d.category(),
		ImageURL: d.ImageURL,
		Barcode:  d.Barcode,
	}, nil
}

// FromProduct fills a draft with the current values of a product, for the edit form.
func FromProduct(p model.Product) Draft {
	return Draft{
		Name:     p.Name,
		Cost:     p.Cost.String(),
		Price:    p.Price.String(),
		Stock:    strconv.Itoa(p.Stock),
		Category: p.Category,
		ImageURL: p.ImageURL,
		Barcode:  p.Barcode,
	}
}

func (d Draft) trimmed() Draft {
	return Draft{
		Name:           strings.TrimSpace(d.Name),
		Cost:           strings.TrimSpace(d.Cost),
		Price:          strings.TrimSpace(d.Price),
		Stock:          strings.TrimSpace(d.Stock),
		Category:       strings.TrimSpace(d.Category),
		CustomCategory: strings.TrimSpace(d.CustomCategory),
		ImageURL:       strings.TrimSpace(d.ImageURL),
		Barcode:        strings.TrimSpace(d.Barcode),
	}
}

func (d Draft) category() string {
	if d.Category != "" {
		return d.Category
	}
	return d.CustomCategory
}
