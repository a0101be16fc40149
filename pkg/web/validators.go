package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// ParseOneOf reads an optional query parameter restricted to a fixed set of values.
// A missing parameter yields def. On an unknown value it writes a 400 response and returns false.
func ParseOneOf(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key, def string, allowed ...string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return def, true
	}
	if !slices.Contains(allowed, value) {
		RespondError(w, logger, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s: %s (allowed: %s)", key, value, strings.Join(allowed, ", ")))
		return "", false
	}
	return value, true
}
