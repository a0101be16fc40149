package screen

import (
	"sync"
	"time"

	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/query"
	"github.com/abgdnv/kasir/internal/product/state"
)

// InventoryView is what the inventory screen renders.
// Query is the text typed so far; Products reflect it once the debounce has passed.
type InventoryView struct {
	Products   []model.Product
	Stats      model.Stats
	Categories []string
	Query      string
	Category   string
	Sort       query.SortKey
}

// Inventory is the view model of the inventory tab.
type Inventory struct {
	mu        sync.Mutex
	all       []model.Product
	criteria  query.Criteria
	typed     string
	debouncer *query.Debouncer
	view      *state.Observable[InventoryView]
	unsub     func()
}

// NewInventory subscribes to the holder. Search input is applied after the debounce delay.
func NewInventory(holder *state.Holder, debounce time.Duration) *Inventory {
	inv := &Inventory{
		criteria:  query.Criteria{Category: query.AllCategories, Sort: query.SortByName},
		debouncer: query.NewDebouncer(debounce),
		view:      state.NewObservable(InventoryView{}),
	}
	inv.unsub = holder.Subscribe(func(list []model.Product) {
		inv.mu.Lock()
		inv.all = list
		inv.mu.Unlock()
		inv.publish()
	})
	return inv
}

// SetSearch records typed text and schedules filtering by it.
func (inv *Inventory) SetSearch(text string) {
	inv.mu.Lock()
	inv.typed = text
	inv.mu.Unlock()
	inv.publish()

	inv.debouncer.Trigger(func() {
		inv.mu.Lock()
		inv.criteria.Search = text
		inv.mu.Unlock()
		inv.publish()
	})
}

// SetCategory filters by category immediately. Empty selects every category.
func (inv *Inventory) SetCategory(category string) {
	if category == "" {
		category = query.AllCategories
	}
	inv.mu.Lock()
	inv.criteria.Category = category
	inv.mu.Unlock()
	inv.publish()
}

// SetSort changes the ordering immediately. Unknown keys are ignored.
func (inv *Inventory) SetSort(key query.SortKey) {
	if !key.Valid() {
		return
	}
	inv.mu.Lock()
	inv.criteria.Sort = key
	inv.mu.Unlock()
	inv.publish()
}

// View returns the latest view.
func (inv *Inventory) View() InventoryView {
	return inv.view.Get()
}

// Subscribe calls fn with the current view and every later one.
// fn must not call back into the Inventory.
func (inv *Inventory) Subscribe(fn func(InventoryView)) (cancel func()) {
	return inv.view.Subscribe(fn)
}

// Close stops listening to the holder and drops a pending search.
func (inv *Inventory) Close() {
	inv.debouncer.Close()
	inv.unsub()
}

func (inv *Inventory) publish() {
	inv.mu.Lock()
	v := InventoryView{
		Products:   query.Apply(inv.all, inv.criteria),
		Stats:      model.ComputeStats(inv.all),
		Categories: query.Categories(inv.all),
		Query:      inv.typed,
		Category:   inv.criteria.Category,
		Sort:       inv.criteria.Sort,
	}
	inv.view.Set(v)
	inv.mu.Unlock()
}
