package screen

import (
	"context"
	"errors"

	perrors "github.com/abgdnv/kasir/internal/product/errors"
	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/state"
	"github.com/shopspring/decimal"
)

// DetailState is the phase of the product detail screen.
type DetailState string

const (
	DetailLoading  DetailState = "loading"
	DetailLoaded   DetailState = "loaded"
	DetailNotFound DetailState = "not_found"
	DetailError    DetailState = "error"
)

// DetailView is what the product detail screen renders.
type DetailView struct {
	State   DetailState
	Product model.Product
	Status  model.StockStatus
	Profit  decimal.Decimal
	Margin  decimal.Decimal
	Error   string
}

// Detail is the view model of the product detail screen.
// Results arriving after Close are ignored.
type Detail struct {
	scope *state.Scope
	view  *state.Observable[DetailView]
}

// OpenDetail starts loading product id.
func OpenDetail(ctx context.Context, holder *state.Holder, loop *state.Loop, id int64) *Detail {
	d := &Detail{
		scope: state.NewScope(loop),
		view:  state.NewObservable(DetailView{State: DetailLoading}),
	}
	state.Deliver(d.scope, holder.Get(ctx, id), func(p model.Product, err error) {
		d.view.Set(detailView(p, err))
	})
	return d
}

func detailView(p model.Product, err error) DetailView {
	switch {
	case err == nil:
		return DetailView{
			State:   DetailLoaded,
			Product: p,
			Status:  p.Status(),
			Profit:  p.Profit(),
			Margin:  p.MarginPercent(),
		}
	case errors.Is(err, perrors.ErrProductNotFound):
		return DetailView{State: DetailNotFound}
	default:
		return DetailView{State: DetailError, Error: "failed to load product"}
	}
}

// View returns the latest view.
func (d *Detail) View() DetailView {
	return d.view.Get()
}

// Wait blocks until loading has finished or ctx ends.
func (d *Detail) Wait(ctx context.Context) (DetailView, error) {
	ready := make(chan DetailView, 1)
	cancel := d.view.Subscribe(func(v DetailView) {
		if v.State == DetailLoading {
			return
		}
		select {
		case ready <- v:
		default:
		}
	})
	defer cancel()
	select {
	case v := <-ready:
		return v, nil
	case <-ctx.Done():
		return DetailView{}, ctx.Err()
	}
}

// Close drops any result still on its way.
func (d *Detail) Close() {
	d.scope.Close()
}
