package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/kasir/internal/config"
	"github.com/abgdnv/kasir/internal/product/form"
	"github.com/abgdnv/kasir/internal/product/model"
	pkgconfig "github.com/abgdnv/kasir/pkg/config"
	"github.com/abgdnv/kasir/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver, url string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database = pkgconfig.DatabaseConfig{Driver: driver, URL: url, Timeout: 5 * time.Second}
	cfg.Inventory.SearchDebounce = time.Millisecond
	cfg.Telemetry.Metrics.Path = "/metrics"
	return cfg
}

func Test_Setup_EndToEnd(t *testing.T) {
	testCases := []struct {
		name   string
		driver string
		url    func(t *testing.T) string
	}{
		{name: "memory", driver: pkgconfig.DriverMemory, url: func(*testing.T) string { return "" }},
		{name: "sqlite", driver: pkgconfig.DriverSQLite, url: func(t *testing.T) string { return filepath.Join(t.TempDir(), "kasir.db") }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			cfg := testConfig(t, tc.driver, tc.url(t))
			st, err := SetupStore(context.Background(), cfg.Database, logger)
			require.NoError(t, err)
			defer CloseStore(st, logger)
			publisher, closePublisher, err := SetupPublisher(context.Background(), cfg.NATS, logger)
			require.NoError(t, err)
			defer closePublisher()
			assert.IsType(t, messaging.NopPublisher{}, publisher)
			deps := SetupDependencies(context.Background(), st, publisher, cfg, logger)
			defer deps.Close()
			metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "# metrics")
			})
			handler := SetupHttpHandler(deps, cfg.Telemetry.Metrics.Path, metrics)

			// when
			create := httptest.NewRecorder()
			handler.ServeHTTP(create, httptest.NewRequest(http.MethodPost, "/api/v1/products",
				strings.NewReader(`{"name":"Pensil","cost":"1000","price":"5000","stock":"3"}`)))
			health := httptest.NewRecorder()
			handler.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			scrape := httptest.NewRecorder()
			handler.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			// then
			assert.Equal(t, http.StatusCreated, create.Code, create.Body.String())
			assert.Equal(t, http.StatusOK, health.Code)
			assert.Equal(t, "# metrics", scrape.Body.String())
			require.Len(t, deps.Holder.Products(), 1)
			assert.Equal(t, "5000", deps.Holder.Products()[0].Price.String())
		})
	}
}

func Test_SetupStore_SQLitePersists(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t, pkgconfig.DriverSQLite, filepath.Join(t.TempDir(), "kasir.db"))
	st, err := SetupStore(context.Background(), cfg.Database, logger)
	require.NoError(t, err)
	deps := SetupDependencies(context.Background(), st, nil, cfg, logger)
	_, err = deps.Holder.Add(context.Background(), mustDraftProduct(t)).Await(context.Background())
	require.NoError(t, err)
	deps.Close()
	CloseStore(st, logger)

	// when the store is reopened, and then reopened with a reset
	reopened, err := SetupStore(context.Background(), cfg.Database, logger)
	require.NoError(t, err)
	rows, err := reopened.FindAll(context.Background())
	require.NoError(t, err)
	CloseStore(reopened, logger)

	cfg.Database.ResetOnStart = true
	reset, err := SetupStore(context.Background(), cfg.Database, logger)
	require.NoError(t, err)
	defer CloseStore(reset, logger)
	afterReset, err := reset.FindAll(context.Background())
	require.NoError(t, err)

	// then
	assert.Len(t, rows, 1)
	assert.Empty(t, afterReset)
}

func mustDraftProduct(t *testing.T) model.Product {
	t.Helper()
	p, err := form.Validate(form.Draft{Name: "Pensil", Cost: "1000", Price: "5000", Stock: "3"})
	require.NoError(t, err)
	return p
}
