// Package screen holds UI-agnostic view models and the navigation model of the app.
package screen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrUnknownRoute is returned for paths that name no screen.
var ErrUnknownRoute = errors.New("unknown route")

// Route names.
const (
	RouteHome          = "home"
	RouteInventory     = "inventory"
	RoutePay           = "pay"
	RouteReports       = "reports"
	RouteDebt          = "debt"
	RouteProfitLoss    = "profit-loss"
	RouteSetting       = "setting"
	RouteAddProduct    = "addProduct"
	RouteEditProduct   = "editProduct"
	RouteProductDetail = "productDetail"
)

// Tab is an entry of the bottom bar.
type Tab struct {
	Route       string `json:"route"`
	Title       string `json:"title"`
	Placeholder bool   `json:"placeholder"`
}

// Tabs lists the bottom bar in display order. Placeholder tabs have no behaviour yet.
var Tabs = []Tab{
	{Route: RouteHome, Title: "Home"},
	{Route: RouteInventory, Title: "Inventory"},
	{Route: RoutePay, Title: "Pay", Placeholder: true},
	{Route: RouteReports, Title: "Reports", Placeholder: true},
	{Route: RouteDebt, Title: "Debt", Placeholder: true},
	{Route: RouteProfitLoss, Title: "Profit & Loss", Placeholder: true},
	{Route: RouteSetting, Title: "Setting", Placeholder: true},
}

// StackRoutes lists the patterns of screens pushed over a tab.
var StackRoutes = []string{
	RouteAddProduct,
	RouteEditProduct + "/{id}",
	RouteProductDetail + "/{id}",
}

// Route identifies a screen. ID is set for product screens that take one.
type Route struct {
	Name string `json:"name"`
	ID   int64  `json:"id,omitempty"`
}

// IsTab reports whether the route is a bottom bar tab.
func (r Route) IsTab() bool {
	for _, t := range Tabs {
		if t.Route == r.Name {
			return true
		}
	}
	return false
}

// String renders the route as a path such as editProduct/3.
func (r Route) String() string {
	if takesID(r.Name) {
		return r.Name + "/" + strconv.FormatInt(r.ID, 10)
	}
	return r.Name
}

func takesID(name string) bool {
	return name == RouteEditProduct || name == RouteProductDetail
}

// ParseRoute resolves a path like "inventory" or "productDetail/7".
func ParseRoute(path string) (Route, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	name, arg, hasArg := strings.Cut(path, "/")

	switch {
	case takesID(name):
		if !hasArg {
			return Route{}, fmt.Errorf("%w: %s needs a product id", ErrUnknownRoute, name)
		}
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return Route{}, fmt.Errorf("%w: invalid product id %q", ErrUnknownRoute, arg)
		}
		return Route{Name: name, ID: id}, nil
	case hasArg:
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	case name == RouteAddProduct:
		return Route{Name: name}, nil
	}
	r := Route{Name: name}
	if !r.IsTab() {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	return r, nil
}

// Navigator tracks the selected tab and the screens stacked above it.
type Navigator struct {
	mu    sync.Mutex
	tab   Route
	stack []Route
}

// NewNavigator starts on the home tab.
func NewNavigator() *Navigator {
	return &Navigator{tab: Route{Name: RouteHome}}
}

// Navigate selects a tab, clearing the stack, or pushes a stack screen.
func (n *Navigator) Navigate(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if r.IsTab() {
		n.tab = r
		n.stack = nil
		return
	}
	n.stack = append(n.stack, r)
}

// Back pops the top stack screen. It returns false when only the tab is shown.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// Current returns the visible screen.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) > 0 {
		return n.stack[len(n.stack)-1]
	}
	return n.tab
}

// Tab returns the selected tab.
func (n *Navigator) Tab() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tab
}

// Depth is the number of stacked screens.
func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}
