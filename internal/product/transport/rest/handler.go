// Package rest exposes the product catalogue and the app screens over HTTP.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	perrors "github.com/abgdnv/kasir/internal/product/errors"
	"github.com/abgdnv/kasir/internal/product/form"
	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/query"
	"github.com/abgdnv/kasir/internal/product/screen"
	"github.com/abgdnv/kasir/internal/product/state"
	"github.com/abgdnv/kasir/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	holder    *state.Holder
	loop      *state.Loop
	inventory *screen.Inventory
	navigator *screen.Navigator
	forms     *form.Validator
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler creates a Handler serving the given holder and screen models.
func NewHandler(holder *state.Holder, loop *state.Loop, inventory *screen.Inventory, navigator *screen.Navigator, logger *slog.Logger) *Handler {
	return &Handler{
		holder:    holder,
		loop:      loop,
		inventory: inventory,
		navigator: navigator,
		forms:     form.NewValidator(),
		validate:  validator.New(),
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the app.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Get("/categories", h.Categories)
		r.Post("/refresh", h.Refresh)
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Get("/draft", h.Draft)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Get("/", h.Inventory)
		r.Patch("/", h.UpdateInventory)
		r.Get("/stream", h.Stream)
	})

	r.Route("/api/v1/navigation", func(r chi.Router) {
		r.Get("/", h.Navigation)
		r.Post("/", h.Navigate)
		r.Post("/back", h.Back)
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll returns the current list filtered by the search, category and sort query parameters.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	sort, ok := web.ParseOneOf(r, w, h.logger, "sort", string(query.SortByName), sortKeys()...)
	if !ok {
		return
	}
	c := query.Criteria{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Sort:     query.SortKey(sort),
	}
	list := query.Apply(h.holder.Products(), c)
	h.logger.DebugContext(r.Context(), "Listing products", "count", len(list), "sort", sort)
	web.RespondJSON(w, h.logger, http.StatusOK, toProductResponses(list))
}

// Stats returns the summary of the whole list.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, toStatsResponse(h.holder.Stats()))
}

// Categories returns the category choices, starting with the all-categories entry.
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, query.Categories(h.holder.Products()))
}

// Refresh reloads the list from the store.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	list, err := h.holder.Refresh(r.Context()).Await(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error refreshing products", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to refresh products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, toProductResponses(list))
}

// FindByID returns one product with its derived values, as shown on the detail screen.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	detail := screen.OpenDetail(r.Context(), h.holder, h.loop, id)
	defer detail.Close()

	view, err := detail.Wait(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Product detail abandoned", "ID", id, "error", err)
		return
	}
	switch view.State {
	case screen.DetailLoaded:
		web.RespondJSON(w, h.logger, http.StatusOK, toProductResponse(view.Product))
	case screen.DetailNotFound:
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	default:
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", view.Error)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
	}
}

// Draft returns the values the edit form opens with.
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	f, ok := h.editForm(w, r)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, f.Initial())
}

// Create validates a draft from the add form and stores it.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var d form.Draft
	if !web.DecodeJSON(w, r, h.logger, &d) {
		return
	}
	h.submit(w, r, screen.NewAddForm(h.holder, h.forms), d, http.StatusCreated)
}

// Update replaces every field of a product with the values of a draft.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	f, ok := h.editForm(w, r)
	if !ok {
		return
	}
	var d form.Draft
	if !web.DecodeJSON(w, r, h.logger, &d) {
		return
	}
	h.submit(w, r, f, d, http.StatusOK)
}

// DeleteByID removes a product. Removing an absent product succeeds.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	if _, err := h.holder.Remove(r.Context(), model.Product{ID: id}).Await(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// editForm loads the product named by the {id} parameter into an edit form.
// On failure it writes the response and returns false.
func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) (*screen.Form, bool) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return nil, false
	}
	p, err := h.holder.Get(r.Context(), id).Await(r.Context())
	switch {
	case err == nil:
		return screen.NewEditForm(h.holder, h.forms, p), true
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	default:
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
	}
	return nil, false
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, f *screen.Form, d form.Draft, status int) {
	id, err := f.Submit(r.Context(), d).Await(r.Context())
	if err != nil {
		var verr *form.ValidationError
		switch {
		case errors.As(err, &verr):
			h.logger.WarnContext(r.Context(), "Draft rejected", "field", verr.Field, "reason", verr.Message)
			web.RespondFieldError(w, h.logger, http.StatusUnprocessableEntity, verr.Field, verr.Message)
		case errors.Is(err, perrors.ErrProductNotFound):
			web.RespondError(w, h.logger, http.StatusNotFound, "Product not found")
		case errors.Is(err, context.Canceled):
			h.logger.WarnContext(r.Context(), "Request cancelled while saving product")
		default:
			h.logger.ErrorContext(r.Context(), "Error saving product", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to save product")
		}
		return
	}
	saved, err := h.holder.Get(r.Context(), id).Await(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error reading saved product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product saved successfully", "ID", saved.ID, "Name", saved.Name)
	web.RespondJSON(w, h.logger, status, toProductResponse(saved))
}

// validationFailed writes the field errors of a request DTO.
func (h *Handler) validationFailed(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[strings.ToLower(fieldErr.Field())] = "failed on rule: " + fieldErr.Tag()
		}
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return
	}
	h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
}

func sortKeys() []string {
	keys := make([]string, len(query.SortKeys))
	for i, k := range query.SortKeys {
		keys[i] = string(k)
	}
	return keys
}
