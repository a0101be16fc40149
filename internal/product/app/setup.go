// Package app contains the application setup for kasir.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/kasir/internal/config"
	"github.com/abgdnv/kasir/internal/product/repository"
	"github.com/abgdnv/kasir/internal/product/screen"
	"github.com/abgdnv/kasir/internal/product/state"
	"github.com/abgdnv/kasir/internal/product/store"
	"github.com/abgdnv/kasir/internal/product/transport/rest"
	"github.com/abgdnv/kasir/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/kasir/pkg/config"
	"github.com/abgdnv/kasir/pkg/messaging"
	natsclient "github.com/abgdnv/kasir/pkg/nats"
	"github.com/abgdnv/kasir/pkg/server"
	"github.com/go-chi/chi/v5"
)

const ServiceName = "kasir"

type Dependencies struct {
	Holder    *state.Holder
	Loop      *state.Loop
	Inventory *screen.Inventory
	Navigator *screen.Navigator
	Logger    *slog.Logger
}

// SetupStore opens the configured product store and brings its schema up to date.
func SetupStore(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.ProductStore, error) {
	if cfg.Driver == pkgconfig.DriverMemory {
		logger.Warn("Using in-memory product store, data is lost on exit")
		return store.NewInMemoryStore(), nil
	}

	db, err := bootstrap.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dialect := store.SQLite
	if cfg.Driver == pkgconfig.DriverPostgres {
		dialect = store.Postgres
	}
	err = store.Migrate(store.MigrateOptions{
		Dialect: dialect,
		URL:     cfg.URL,
		DB:      db,
		Reset:   cfg.ResetOnStart,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("Product store ready", "driver", cfg.Driver, "url", pkgconfig.MaskURL(cfg.URL))
	return store.NewSQLStore(db, dialect), nil
}

// SetupPublisher connects to NATS and makes sure the product stream exists.
// With NATS disabled it returns a publisher that drops every event.
func SetupPublisher(ctx context.Context, cfg pkgconfig.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		logger.Info("NATS is disabled, product events are not published")
		return messaging.NopPublisher{}, func() {}, nil
	}

	nc, err := natsclient.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, cfg.Stream, messaging.ProductsSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", cfg.Url, "stream", cfg.Stream)
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}
	return natsclient.NewPublisher(js), closeFn, nil
}

// SetupDependencies builds the holder and the screen models and loads the product list.
// A failed initial load is reported as a notice and leaves the list empty.
func SetupDependencies(ctx context.Context, st store.ProductStore, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	loop := state.NewLoop()
	holder := state.NewHolder(repository.New(st, publisher, logger), loop, logger)

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
	defer cancel()
	if list, err := holder.Start(loadCtx).Await(loadCtx); err != nil {
		logger.Error("Initial product load failed", "error", err)
	} else {
		logger.Info("Products loaded", "count", len(list))
	}

	return &Dependencies{
		Holder:    holder,
		Loop:      loop,
		Inventory: screen.NewInventory(holder, cfg.Inventory.SearchDebounce),
		Navigator: screen.NewNavigator(),
		Logger:    logger,
	}
}

// Close stops the screen models and the state loop.
func (d *Dependencies) Close() {
	d.Inventory.Close()
	d.Loop.Stop()
}

// SetupHttpHandler initializes the routes of the application.
// A non-nil metrics handler is mounted at metricsPath.
func SetupHttpHandler(deps *Dependencies, metricsPath string, metrics http.Handler) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	if metrics != nil {
		mux.Handle(metricsPath, metrics)
	}
	return mux
}

// wireRoutes sets up the HTTP routes of the application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.Holder, deps.Loop, deps.Inventory, deps.Navigator, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the instrumented HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config, metrics http.Handler) *http.Server {
	mux := SetupHttpHandler(deps, cfg.Telemetry.Metrics.Path, metrics)
	return server.NewHTTPServer(cfg.HTTPServer, server.Instrument(ServiceName, mux))
}

// CloseStore releases the store, logging any failure.
func CloseStore(st store.ProductStore, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("Failed to close product store", "error", fmt.Errorf("close store: %w", err))
	}
}
