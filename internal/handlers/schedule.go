package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/platform/api"
	"github.com/example/anitrack/internal/platform/httpserver"
	"github.com/example/anitrack/internal/tracker"
)

// ListSchedule handles GET /v1/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD
func ListSchedule(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		from, ok := parseDateParam(r.URL.Query().Get("from"))
		if !ok {
			api.BadRequest(w, "INVALID_DATE", "from must be YYYY-MM-DD", rid, nil)
			return
		}
		to, ok := parseDateParam(r.URL.Query().Get("to"))
		if !ok {
			api.BadRequest(w, "INVALID_DATE", "to must be YYYY-MM-DD", rid, nil)
			return
		}

		rels := t.ListSchedule(from, to)
		if rels == nil {
			rels = []catalog.ScheduledRelease{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"scheduled": rels})
	}
}

type upsertScheduleRequest struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	AnimeID       string `json:"animeId,omitempty"`
	AnimeTitle    string `json:"animeTitle,omitempty"`
	EpisodeNumber int    `json:"episodeNumber,omitempty"`
	EpisodeTitle  string `json:"episodeTitle,omitempty"`
	ReleaseDate   string `json:"releaseDate"`
}

// UpsertSchedule handles POST /v1/schedule, the direct entry point that
// still upserts by (type, source id).
func UpsertSchedule(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req upsertScheduleRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		rel, err := t.UpsertScheduledRelease(r.Context(), catalog.ScheduledRelease{
			ID:            strings.TrimSpace(req.ID),
			Type:          catalog.ReleaseType(strings.TrimSpace(req.Type)),
			AnimeID:       strings.TrimSpace(req.AnimeID),
			AnimeTitle:    req.AnimeTitle,
			EpisodeNumber: req.EpisodeNumber,
			EpisodeTitle:  req.EpisodeTitle,
			ReleaseDate:   req.ReleaseDate,
		})
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, rel)
	}
}

func parseDateParam(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	d, ok := catalog.ParseDate(raw)
	return d, ok
}
