package rest

import (
	"time"

	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/screen"
	"github.com/abgdnv/kasir/internal/product/state"
)

// ProductResponse is the JSON form of a product. Money values are decimal strings.
type ProductResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Price         string            `json:"price"`
	Cost          string            `json:"cost"`
	Stock         int               `json:"stock"`
	Category      string            `json:"category"`
	ImageURL      string            `json:"image_url,omitempty"`
	Barcode       string            `json:"barcode,omitempty"`
	Status        model.StockStatus `json:"status"`
	Profit        string            `json:"profit"`
	MarginPercent string            `json:"margin_percent"`
}

type StatsResponse struct {
	Total          int    `json:"total"`
	OutOfStock     int    `json:"out_of_stock"`
	LowStock       int    `json:"low_stock"`
	InventoryValue string `json:"inventory_value"`
}

type InventoryResponse struct {
	Products   []ProductResponse `json:"products"`
	Stats      StatsResponse     `json:"stats"`
	Categories []string          `json:"categories"`
	Search     string            `json:"search"`
	Category   string            `json:"category"`
	Sort       string            `json:"sort"`
}

// InventoryRequest changes the inventory screen. Absent fields keep their value.
type InventoryRequest struct {
	Search   *string `json:"search"`
	Category *string `json:"category"`
	Sort     *string `json:"sort" validate:"omitempty,oneof=name price stock"`
}

type NavigateRequest struct {
	Path string `json:"path" validate:"required,max=64"`
}

type NavigationResponse struct {
	Tabs        []screen.Tab `json:"tabs"`
	StackRoutes []string     `json:"stack_routes"`
	Tab         screen.Route `json:"tab"`
	Current     screen.Route `json:"current"`
	Path        string       `json:"path"`
	Depth       int          `json:"depth"`
}

type ImportResponse struct {
	Imported int             `json:"imported"`
	IDs      []int64         `json:"ids"`
	Errors   []ImportLineErr `json:"errors"`
}

type ImportLineErr struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type NoticeResponse struct {
	Op    string `json:"op"`
	Error string `json:"error"`
	At    string `json:"at"`
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price.String(),
		Cost:          p.Cost.String(),
		Stock:         p.Stock,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		Barcode:       p.Barcode,
		Status:        p.Status(),
		Profit:        p.Profit().String(),
		MarginPercent: p.MarginPercent().String(),
	}
}

func toProductResponses(products []model.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

func toStatsResponse(s model.Stats) StatsResponse {
	return StatsResponse{
		Total:          s.Total,
		OutOfStock:     s.OutOfStock,
		LowStock:       s.LowStock,
		InventoryValue: s.InventoryValue.String(),
	}
}

func toInventoryResponse(v screen.InventoryView) InventoryResponse {
	return InventoryResponse{
		Products:   toProductResponses(v.Products),
		Stats:      toStatsResponse(v.Stats),
		Categories: v.Categories,
		Search:     v.Query,
		Category:   v.Category,
		Sort:       string(v.Sort),
	}
}

func toNavigationResponse(n *screen.Navigator) NavigationResponse {
	current := n.Current()
	return NavigationResponse{
		Tabs:        screen.Tabs,
		StackRoutes: screen.StackRoutes,
		Tab:         n.Tab(),
		Current:     current,
		Path:        current.String(),
		Depth:       n.Depth(),
	}
}

func toNoticeResponse(n state.Notice) NoticeResponse {
	return NoticeResponse{Op: n.Op, Error: "operation failed", At: n.At.UTC().Format(time.RFC3339)}
}
