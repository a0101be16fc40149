package model

import "github.com/shopspring/decimal"

// Stats summarises a product list.
type Stats struct {
	Total          int
	OutOfStock     int
	LowStock       int
	InventoryValue decimal.Decimal
}

// ComputeStats derives the summary from products. It is recomputed on every call.
func ComputeStats(products []Product) Stats {
	s := Stats{Total: len(products), InventoryValue: decimal.Zero}
	for _, p := range products {
		switch {
		case p.Stock == 0:
			s.OutOfStock++
		case p.Stock >= 1 && p.Stock <= LowStockLimit:
			s.LowStock++
		}
		s.InventoryValue = s.InventoryValue.Add(p.StockValue())
	}
	return s
}
