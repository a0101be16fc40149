package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func Test_ClassifyStock(t *testing.T) {
	testCases := []struct {
		stock    int
		expected StockStatus
	}{
		{stock: -1, expected: OutOfStock},
		{stock: 0, expected: OutOfStock},
		{stock: 1, expected: LowStock},
		{stock: 2, expected: LowStock},
		{stock: 5, expected: LowStock},
		{stock: 6, expected: InStock},
		{stock: 1000, expected: InStock},
	}
	for _, tc := range testCases {
		t.Run(string(tc.expected), func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyStock(tc.stock))
			assert.Equal(t, tc.expected, Product{Stock: tc.stock}.Status())
		})
	}
}

func Test_ClassifyStock_IsPureOverRange(t *testing.T) {
	for stock := 0; stock <= 50; stock++ {
		status := ClassifyStock(stock)
		switch {
		case stock == 0:
			assert.Equal(t, OutOfStock, status)
		case stock <= 5:
			assert.Equal(t, LowStock, status)
		default:
			assert.Equal(t, InStock, status)
		}
		assert.Equal(t, status, ClassifyStock(stock))
	}
}

func Test_Product_Profit(t *testing.T) {
	testCases := []struct {
		name       string
		price      string
		cost       string
		profit     string
		margin     string
		profitable bool
	}{
		{name: "profitable", price: "2000", cost: "1000", profit: "1000", margin: "100", profitable: true},
		{name: "break even", price: "1500", cost: "1500", profit: "0", margin: "0", profitable: true},
		{name: "loss", price: "900", cost: "1000", profit: "-100", margin: "-10", profitable: false},
		{name: "zero cost", price: "500", cost: "0", profit: "500", margin: "0", profitable: true},
		{name: "fractional", price: "10.50", cost: "3", profit: "7.5", margin: "250", profitable: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			p := Product{Price: decimal.RequireFromString(tc.price), Cost: decimal.RequireFromString(tc.cost)}

			// then
			assert.True(t, decimal.RequireFromString(tc.profit).Equal(p.Profit()), "profit %s", p.Profit())
			assert.True(t, decimal.RequireFromString(tc.margin).Equal(p.MarginPercent()), "margin %s", p.MarginPercent())
			assert.Equal(t, tc.profitable, p.Profitable())
		})
	}
}

func Test_ComputeStats(t *testing.T) {
	// given
	products := []Product{
		{ID: 1, Name: "Pensil", Cost: decimal.NewFromInt(1000), Stock: 2},
		{ID: 2, Name: "Buku", Cost: decimal.NewFromInt(5000), Stock: 0},
		{ID: 3, Name: "Penggaris", Cost: decimal.NewFromInt(2500), Stock: 10},
		{ID: 4, Name: "Penghapus", Cost: decimal.NewFromInt(500), Stock: 5},
	}

	// when
	stats := ComputeStats(products)

	// then
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, 2, stats.LowStock)
	assert.Equal(t, "29500", stats.InventoryValue.String())
}

func Test_ComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Zero(t, stats.Total)
	assert.True(t, stats.InventoryValue.IsZero())
}
