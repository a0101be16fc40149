package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/kasir/internal/product/query"
	"github.com/abgdnv/kasir/internal/product/screen"
	"github.com/abgdnv/kasir/internal/product/state"
	"github.com/abgdnv/kasir/pkg/web"
)

// Inventory returns the inventory screen as currently shown.
func (h *Handler) Inventory(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, toInventoryResponse(h.inventory.View()))
}

// UpdateInventory changes the search text, category or sort of the inventory screen.
// The search is applied after the debounce delay; the reply shows the typed text at once.
func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if !web.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}
	if req.Category != nil {
		h.inventory.SetCategory(*req.Category)
	}
	if req.Sort != nil {
		h.inventory.SetSort(query.SortKey(*req.Sort))
	}
	if req.Search != nil {
		h.inventory.SetSearch(*req.Search)
	}
	web.RespondJSON(w, h.logger, http.StatusOK, toInventoryResponse(h.inventory.View()))
}

// Stream sends the inventory screen as server-sent events, once on connect and after every change.
// Failed store operations are sent as notice events.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	views := make(chan screen.InventoryView, 1)
	notices := make(chan state.Notice, 8)
	cancelViews := h.inventory.Subscribe(func(v screen.InventoryView) { offerLatest(views, v) })
	defer cancelViews()
	cancelNotices := h.holder.Notices().Subscribe(func(n state.Notice) {
		if n.Op == "" {
			return
		}
		select {
		case notices <- n:
		default:
		}
	})
	defer cancelNotices()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.logger.InfoContext(r.Context(), "Inventory stream opened")
	for {
		var (
			event   string
			payload any
		)
		select {
		case <-r.Context().Done():
			h.logger.InfoContext(r.Context(), "Inventory stream closed")
			return
		case v := <-views:
			event, payload = "inventory", toInventoryResponse(v)
		case n := <-notices:
			event, payload = "notice", toNoticeResponse(n)
		}
		if err := writeEvent(w, event, payload); err != nil {
			h.logger.WarnContext(r.Context(), "Inventory stream write failed", "error", err)
			return
		}
		flusher.Flush()
	}
}

// Navigation returns the tabs, the stack routes and the visible screen.
func (h *Handler) Navigation(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, toNavigationResponse(h.navigator))
}

// Navigate opens the screen named by a path such as "inventory" or "productDetail/3".
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !web.DecodeJSON(w, r, h.logger, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}
	route, err := screen.ParseRoute(req.Path)
	if err != nil {
		if errors.Is(err, screen.ErrUnknownRoute) {
			web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Error parsing route", "path", req.Path, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to navigate")
		return
	}
	h.navigator.Navigate(route)
	h.logger.DebugContext(r.Context(), "Navigated", "route", route.String())
	web.RespondJSON(w, h.logger, http.StatusOK, toNavigationResponse(h.navigator))
}

// Back closes the top stacked screen. It answers 409 when only a tab is shown.
func (h *Handler) Back(w http.ResponseWriter, _ *http.Request) {
	if !h.navigator.Back() {
		web.RespondError(w, h.logger, http.StatusConflict, "Nothing to go back to")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, toNavigationResponse(h.navigator))
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// offerLatest puts v into a one-slot channel, replacing a value nobody has read yet.
func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
