// Package model defines the product entity and the values derived from it.
package model

import (
	"github.com/shopspring/decimal"
)

// LowStockLimit is the highest stock level still classified as low.
const LowStockLimit = 5

// Product is a catalogue entry. ID is assigned by the store and never changes.
// ImageURL and Barcode are empty when absent.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	Stock    int
	Category string
	ImageURL string
	Barcode  string
}

// StockStatus classifies a stock level.
type StockStatus string

const (
	OutOfStock StockStatus = "out_of_stock"
	LowStock   StockStatus = "low_stock"
	InStock    StockStatus = "in_stock"
)

// ClassifyStock maps a stock level to its status.
func ClassifyStock(stock int) StockStatus {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock <= LowStockLimit:
		return LowStock
	default:
		return InStock
	}
}

// Status returns the stock status of the product.
func (p Product) Status() StockStatus {
	return ClassifyStock(p.Stock)
}

// Profit is the selling price minus the acquisition cost.
func (p Product) Profit() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// MarginPercent is profit relative to cost, rounded to two places. It is zero when cost is not positive.
func (p Product) MarginPercent() decimal.Decimal {
	if !p.Cost.IsPositive() {
		return decimal.Zero
	}
	return p.Profit().Div(p.Cost).Mul(decimal.NewFromInt(100)).Round(2)
}

// Profitable reports whether the product sells at or above cost.
func (p Product) Profitable() bool {
	return !p.Profit().IsNegative()
}

// StockValue is cost times units on hand.
func (p Product) StockValue() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(p.Stock)))
}
