// Package handlers exposes the tracker over HTTP. Handlers stay thin:
// parse, call the tracker, map the result.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/platform/api"
	"github.com/example/anitrack/internal/platform/httpserver"
	"github.com/example/anitrack/internal/tracker"
)

type addAnimeRequest struct {
	ID           string `json:"id"`
	ScheduleDate string `json:"scheduleDate,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Dub          bool   `json:"dub,omitempty"`
}

// AddAnime handles POST /v1/anime
func AddAnime(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req addAnimeRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		entry, err := t.AddAnime(r.Context(), req.ID, tracker.AddAnimeInput{
			ScheduleDate: req.ScheduleDate,
			Notes:        req.Notes,
			Dub:          req.Dub,
		})
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, entry)
	}
}

// ListAnime handles GET /v1/anime?enrich=false
func ListAnime(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("enrich") == "false" {
			api.WriteJSON(w, http.StatusOK, map[string]any{"anime": t.ListAnime()})
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"anime": t.ListAnimeEnriched(r.Context())})
	}
}

// GetAnime handles GET /v1/anime/{anime_id}
func GetAnime(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		animeID := strings.TrimSpace(chi.URLParam(r, "anime_id"))
		if animeID == "" {
			api.BadRequest(w, "MISSING_ID", "anime_id is required", rid, nil)
			return
		}

		entry, err := t.GetAnimeEnriched(r.Context(), animeID)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, entry)
	}
}

type updateAnimeRequest struct {
	Title        *string `json:"title,omitempty"`
	Thumbnail    *string `json:"thumbnail,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Dub          *bool   `json:"dub,omitempty"`
	ScheduleDate *string `json:"scheduleDate,omitempty"`
}

// UpdateAnime handles PATCH /v1/anime/{anime_id}
func UpdateAnime(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		animeID := strings.TrimSpace(chi.URLParam(r, "anime_id"))
		if animeID == "" {
			api.BadRequest(w, "MISSING_ID", "anime_id is required", rid, nil)
			return
		}

		var req updateAnimeRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		entry, err := t.UpdateAnime(r.Context(), animeID, catalog.AnimePatch{
			Title:        req.Title,
			Thumbnail:    req.Thumbnail,
			Notes:        req.Notes,
			Dub:          req.Dub,
			ScheduleDate: req.ScheduleDate,
		})
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, entry)
	}
}

// RemoveAnime handles DELETE /v1/anime/{anime_id}
func RemoveAnime(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		animeID := strings.TrimSpace(chi.URLParam(r, "anime_id"))
		if animeID == "" {
			api.BadRequest(w, "MISSING_ID", "anime_id is required", rid, nil)
			return
		}

		res, err := t.RemoveAnime(r.Context(), animeID)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, res)
	}
}
