// Package repository maps stored product rows to domain products and announces every change.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/kasir/internal/product/errors"
	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/store"
	"github.com/abgdnv/kasir/pkg/logger"
	"github.com/abgdnv/kasir/pkg/messaging"
	"github.com/abgdnv/kasir/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// ProductRepository defines typed access to the product catalogue.
type ProductRepository interface {
	// Insert stores a new product and returns its generated ID.
	Insert(ctx context.Context, p model.Product) (int64, error)

	// Update replaces every field of the product with the same ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, p model.Product) error

	// Delete removes a product. Deleting an absent product is not an error.
	Delete(ctx context.Context, id int64) error

	// GetAll returns every product ordered by ID.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID returns a single product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetByID(ctx context.Context, id int64) (model.Product, error)

	// Import stores every product or none of them and returns the IDs in input order.
	Import(ctx context.Context, products []model.Product) ([]int64, error)
}

// Repository implements ProductRepository on top of a ProductStore.
type Repository struct {
	store     store.ProductStore
	publisher messaging.Publisher
	logger    *slog.Logger
	changes   metric.Int64Counter
	now       func() time.Time
}

// New creates a new Repository. A nil publisher disables change events.
func New(st store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Repository {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	meter := otel.Meter("kasir")
	changes, err := meter.Int64Counter("products_changed",
		metric.WithDescription("Total number of product writes by kind"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_changed counter: %v", err))
	}
	return &Repository{
		store:     st,
		publisher: publisher,
		logger:    logger,
		changes:   changes,
		now:       time.Now,
	}
}

// Insert stores a new product and announces it.
func (r *Repository) Insert(ctx context.Context, p model.Product) (int64, error) {
	id, err := r.store.Insert(ctx, ToRow(p))
	if err != nil {
		return 0, storeError("insert product", err)
	}
	p.ID = id
	r.announce(ctx, events.KindCreated, p)
	return id, nil
}

// Update replaces a product and announces the change.
func (r *Repository) Update(ctx context.Context, p model.Product) error {
	if err := r.store.Update(ctx, ToRow(p)); err != nil {
		return storeError(fmt.Sprintf("update product %d", p.ID), err)
	}
	r.announce(ctx, events.KindUpdated, p)
	return nil
}

// Delete removes a product and announces the removal.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return storeError(fmt.Sprintf("delete product %d", id), err)
	}
	r.announce(ctx, events.KindDeleted, model.Product{ID: id})
	return nil
}

// GetAll returns every product.
func (r *Repository) GetAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.store.FindAll(ctx)
	if err != nil {
		return nil, storeError("list products", err)
	}
	products := make([]model.Product, len(rows))
	for i, row := range rows {
		products[i] = ToModel(row)
	}
	return products, nil
}

// GetByID returns a single product.
func (r *Repository) GetByID(ctx context.Context, id int64) (model.Product, error) {
	row, err := r.store.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, storeError(fmt.Sprintf("get product %d", id), err)
	}
	return ToModel(*row), nil
}

// Import stores the products as one batch and announces each of them once it is committed.
func (r *Repository) Import(ctx context.Context, products []model.Product) ([]int64, error) {
	rows := make([]store.Row, len(products))
	for i, p := range products {
		rows[i] = ToRow(p)
	}
	ids, err := r.store.InsertAll(ctx, rows)
	if err != nil {
		return nil, storeError(fmt.Sprintf("import %d products", len(products)), err)
	}
	for i, p := range products {
		p.ID = ids[i]
		r.announce(ctx, events.KindCreated, p)
	}
	return ids, nil
}

// announce publishes a change event and counts the write. Publish failures are only logged.
func (r *Repository) announce(ctx context.Context, kind string, p model.Product) {
	r.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))

	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.ProductEvent{
		EventID:    uuid.NewString(),
		Carrier:    carrier,
		Kind:       kind,
		ProductID:  p.ID,
		Name:       p.Name,
		Stock:      p.Stock,
		Category:   p.Category,
		OccurredAt: r.now().UTC(),
	}
	if kind != events.KindDeleted {
		event.Price = p.Price.String()
		event.Cost = p.Cost.String()
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		ctx = logger.WithAttrs(ctx, slog.Int64("product_id", p.ID))
		r.logger.ErrorContext(ctx, "Failed to publish product event", "kind", kind, "error", err)
	}
}

// storeError keeps not-found and cancellation errors recognisable and marks every other failure as a store fault.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, perrors.ErrStoreUnavailable, err)
	}
}
