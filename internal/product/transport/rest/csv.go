package rest

import (
	"net/http"
	"time"

	"github.com/abgdnv/kasir/internal/product/csvio"
	"github.com/abgdnv/kasir/pkg/web"
)

// MaxImportBytes limits the size of an uploaded CSV file.
const MaxImportBytes = 8 << 20

// Export downloads every product as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	products := h.holder.Products()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products-`+time.Now().Format("20060102")+`.csv"`)
	if err := csvio.Export(w, products); err != nil {
		h.logger.ErrorContext(r.Context(), "Error exporting products", "error", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Products exported", "count", len(products))
}

// Import reads a CSV body, stores the valid lines and reports the rejected ones.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	res, err := csvio.Import(http.MaxBytesReader(w, r.Body, MaxImportBytes), h.forms)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Error reading import file", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid CSV file")
		return
	}

	resp := ImportResponse{IDs: []int64{}, Errors: make([]ImportLineErr, 0, len(res.Errors))}
	for _, le := range res.Errors {
		resp.Errors = append(resp.Errors, ImportLineErr{Line: le.Line, Field: le.Field, Message: le.Message})
	}
	if len(res.Products) > 0 {
		ids, err := h.holder.Import(r.Context(), res.Products).Await(r.Context())
		if err != nil {
			h.logger.ErrorContext(r.Context(), "Error importing products", "records", len(res.Products), "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Import failed, no products were stored")
			return
		}
		resp.IDs = ids
	}
	resp.Imported = len(resp.IDs)
	h.logger.InfoContext(r.Context(), "Products imported", "imported", resp.Imported, "rejected", len(resp.Errors))
	web.RespondJSON(w, h.logger, http.StatusOK, resp)
}
