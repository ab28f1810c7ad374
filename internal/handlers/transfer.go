package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/platform/api"
	"github.com/example/anitrack/internal/platform/httpserver"
	"github.com/example/anitrack/internal/tracker"
)

// Search handles GET /v1/search?q=...&page=N&limit=M (provider passthrough).
func Search(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			api.BadRequest(w, "MISSING_QUERY", "q is required", rid, nil)
			return
		}
		page := parseIntParam(r.URL.Query().Get("page"), 1)
		limit := parseIntParam(r.URL.Query().Get("limit"), 10)

		results, err := t.SearchProvider(r.Context(), q, page, limit)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

// Export handles GET /v1/export
func Export(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, t.ExportAll())
	}
}

// Import handles POST /v1/import: a wholesale replace of all three
// collections from a previously exported bundle.
func Import(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var bundle catalog.ExportBundle
		if !decodeJSON(w, r, rid, &bundle) {
			return
		}

		counts, err := t.ImportAll(r.Context(), bundle)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, counts)
	}
}

func parseIntParam(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
