// Package query filters and orders product lists for display.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/abgdnv/kasir/internal/product/model"
)

// AllCategories matches every category. AllCategoriesID is accepted as a synonym.
const (
	AllCategories   = "All"
	AllCategoriesID = "Semua"
)

// SortKey selects the ordering of a product list.
type SortKey string

const (
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
	SortByStock SortKey = "stock"
)

// SortKeys lists the supported keys.
var SortKeys = []SortKey{SortByName, SortByPrice, SortByStock}

// Valid reports whether k is a supported key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// Criteria describes a list query.
type Criteria struct {
	Search   string
	Category string
	Sort     SortKey
}

// Apply filters the products and sorts the result. The input slice is not modified.
func Apply(products []model.Product, c Criteria) []model.Product {
	return Sort(Filter(products, c.Search, c.Category), c.Sort)
}

// Filter keeps products whose name contains search, ignoring case, and whose category matches.
// The search text is matched as typed, spaces included.
// An empty category or the all-categories sentinel matches everything.
func Filter(products []model.Product, search, category string) []model.Product {
	needle := strings.ToLower(search)
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if !matchesCategory(p.Category, category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(productCategory, category string) bool {
	switch category {
	case "", AllCategories, AllCategoriesID:
		return true
	default:
		return productCategory == category
	}
}

// Sort returns a copy of products ordered ascending by key, ties broken by ID.
// Names compare byte-wise, so upper case sorts before lower case. An unknown key orders by ID only.
func Sort(products []model.Product, key SortKey) []model.Product {
	out := slices.Clone(products)
	slices.SortStableFunc(out, func(a, b model.Product) int {
		var c int
		switch key {
		case SortByName:
			c = strings.Compare(a.Name, b.Name)
		case SortByPrice:
			c = a.Price.Cmp(b.Price)
		case SortByStock:
			c = cmp.Compare(a.Stock, b.Stock)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Categories returns the all-categories sentinel followed by the distinct
// non-empty categories in first-seen order. The empty category already means
// "no filter", so it is never offered as a choice of its own.
func Categories(products []model.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllCategories}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
