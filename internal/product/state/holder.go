package state

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/repository"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "products"

// Notice reports a failed store operation. The operation was not applied.
type Notice struct {
	Op  string
	Err error
	At  time.Time
}

// Holder is the in-memory source of truth for the product list shown to users.
// The list is replaced only on the loop; store calls run on their own goroutines.
type Holder struct {
	repo     repository.ProductRepository
	loop     *Loop
	logger   *slog.Logger
	products *Observable[[]model.Product]
	notices  *Observable[Notice]
	group    singleflight.Group
	issued   atomic.Int64
	applied  int64 // loop only
}

// NewHolder creates a Holder with an empty list. Call Start to load it.
func NewHolder(repo repository.ProductRepository, loop *Loop, logger *slog.Logger) *Holder {
	return &Holder{
		repo:     repo,
		loop:     loop,
		logger:   logger.With("component", "state"),
		products: NewObservable([]model.Product{}),
		notices:  NewObservable(Notice{}),
	}
}

type snapshot struct {
	gen  int64
	list []model.Product
}

// Start triggers the initial load.
func (h *Holder) Start(ctx context.Context) *Future[[]model.Product] {
	return h.Refresh(ctx)
}

// Refresh re-reads every product and replaces the list.
// Concurrent refreshes share one store read. A result older than the list already applied is dropped,
// and the future then carries the current list.
func (h *Holder) Refresh(ctx context.Context) *Future[[]model.Product] {
	return Launch(h.loop, ctx,
		func(ctx context.Context) (snapshot, error) {
			return h.fetch(ctx, false)
		},
		func(s snapshot, err error) ([]model.Product, error) {
			if err != nil {
				h.report(ctx, "refresh", err)
				return nil, err
			}
			h.apply(s)
			return h.products.Get(), nil
		})
}

// Add inserts a product and refreshes the list. The future carries the new ID.
func (h *Holder) Add(ctx context.Context, p model.Product) *Future[int64] {
	return h.mutate(ctx, "add", func(ctx context.Context) (int64, error) {
		return h.repo.Insert(ctx, p)
	})
}

// Edit replaces a product and refreshes the list.
func (h *Holder) Edit(ctx context.Context, p model.Product) *Future[int64] {
	return h.mutate(ctx, "edit", func(ctx context.Context) (int64, error) {
		return p.ID, h.repo.Update(ctx, p)
	})
}

// Remove deletes a product and refreshes the list.
func (h *Holder) Remove(ctx context.Context, p model.Product) *Future[int64] {
	return h.mutate(ctx, "remove", func(ctx context.Context) (int64, error) {
		return p.ID, h.repo.Delete(ctx, p.ID)
	})
}

// Get reads a single product from the store without touching the list.
func (h *Holder) Get(ctx context.Context, id int64) *Future[model.Product] {
	return Launch(h.loop, ctx,
		func(ctx context.Context) (model.Product, error) {
			return h.repo.GetByID(ctx, id)
		},
		func(p model.Product, err error) (model.Product, error) {
			return p, err
		})
}

// Import stores products as one batch and refreshes the list once.
// A failed import leaves the store and the list unchanged.
func (h *Holder) Import(ctx context.Context, products []model.Product) *Future[[]int64] {
	type result struct {
		ids  []int64
		snap snapshot
		ferr error
	}
	return Launch(h.loop, ctx,
		func(ctx context.Context) (result, error) {
			ids, err := h.repo.Import(ctx, products)
			if err != nil {
				return result{}, err
			}
			snap, ferr := h.fetch(ctx, true)
			return result{ids: ids, snap: snap, ferr: ferr}, nil
		},
		func(r result, err error) ([]int64, error) {
			if err != nil {
				h.report(ctx, "import", err)
				return nil, err
			}
			if r.ferr != nil {
				h.report(ctx, "refresh", r.ferr)
			} else {
				h.apply(r.snap)
			}
			return r.ids, nil
		})
}

// Products returns the current list.
func (h *Holder) Products() []model.Product {
	return h.products.Get()
}

// Subscribe calls fn with the current list and every replacement of it.
func (h *Holder) Subscribe(fn func([]model.Product)) (cancel func()) {
	return h.products.Subscribe(fn)
}

// Notices publishes failed store operations.
func (h *Holder) Notices() *Observable[Notice] {
	return h.notices
}

// Stats computes the summary of the current list.
func (h *Holder) Stats() model.Stats {
	return model.ComputeStats(h.products.Get())
}

func (h *Holder) mutate(ctx context.Context, op string, write func(context.Context) (int64, error)) *Future[int64] {
	type result struct {
		id   int64
		snap snapshot
		ferr error
	}
	return Launch(h.loop, ctx,
		func(ctx context.Context) (result, error) {
			id, err := write(ctx)
			if err != nil {
				return result{}, err
			}
			snap, ferr := h.fetch(ctx, true)
			return result{id: id, snap: snap, ferr: ferr}, nil
		},
		func(r result, err error) (int64, error) {
			if err != nil {
				h.report(ctx, op, err)
				return 0, err
			}
			if r.ferr != nil {
				h.report(ctx, "refresh", r.ferr)
			} else {
				h.apply(r.snap)
			}
			return r.id, nil
		})
}

// fetch reads the list. A fresh fetch never joins a read that started before the caller's write.
func (h *Holder) fetch(ctx context.Context, fresh bool) (snapshot, error) {
	if fresh {
		h.group.Forget(refreshKey)
	}
	v, err, _ := h.group.Do(refreshKey, func() (any, error) {
		gen := h.issued.Add(1)
		list, err := h.repo.GetAll(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return snapshot{gen: gen, list: list}, nil
	})
	if err != nil {
		return snapshot{}, err
	}
	return v.(snapshot), nil
}

// apply installs a snapshot unless a newer one is already in place. Runs on the loop.
func (h *Holder) apply(s snapshot) bool {
	if s.gen <= h.applied {
		h.logger.Debug("Dropping stale product list", "generation", s.gen, "applied", h.applied)
		return false
	}
	h.applied = s.gen
	h.products.Set(s.list)
	return true
}

func (h *Holder) report(ctx context.Context, op string, err error) {
	h.logger.ErrorContext(ctx, "Product operation failed", "op", op, "error", err)
	h.notices.Set(Notice{Op: op, Err: err, At: time.Now()})
}
