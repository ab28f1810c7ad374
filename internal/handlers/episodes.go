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

// ListEpisodes handles GET /v1/anime/{anime_id}/episodes
func ListEpisodes(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		animeID := strings.TrimSpace(chi.URLParam(r, "anime_id"))
		if animeID == "" {
			api.BadRequest(w, "MISSING_ID", "anime_id is required", rid, nil)
			return
		}

		eps := t.ListEpisodes(animeID)
		if eps == nil {
			eps = []catalog.Episode{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"episodes": eps})
	}
}

// AddEpisode handles POST /v1/anime/{anime_id}/episodes
func AddEpisode(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		animeID := strings.TrimSpace(chi.URLParam(r, "anime_id"))
		if animeID == "" {
			api.BadRequest(w, "MISSING_ID", "anime_id is required", rid, nil)
			return
		}

		var in tracker.EpisodeInput
		if !decodeJSON(w, r, rid, &in) {
			return
		}

		ep, err := t.AddEpisode(r.Context(), animeID, in)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, ep)
	}
}

type bulkAddRequest struct {
	Episodes        []tracker.EpisodeInput `json:"episodes"`
	ReplaceExisting bool                   `json:"replaceExisting,omitempty"`
}

// BulkAddEpisodes handles POST /v1/anime/{anime_id}/episodes/bulk
func BulkAddEpisodes(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		animeID := strings.TrimSpace(chi.URLParam(r, "anime_id"))
		if animeID == "" {
			api.BadRequest(w, "MISSING_ID", "anime_id is required", rid, nil)
			return
		}

		var req bulkAddRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		if len(req.Episodes) == 0 {
			api.BadRequest(w, "MISSING_FIELD", "episodes array is required", rid, nil)
			return
		}

		res, err := t.BulkAddEpisodes(r.Context(), animeID, req.Episodes, req.ReplaceExisting)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, res)
	}
}

// GetEpisode handles GET /v1/episodes/{episode_id}
func GetEpisode(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		episodeID := strings.TrimSpace(chi.URLParam(r, "episode_id"))
		if episodeID == "" {
			api.BadRequest(w, "MISSING_ID", "episode_id is required", rid, nil)
			return
		}

		ep, err := t.GetEpisode(episodeID)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, ep)
	}
}

type updateEpisodeRequest struct {
	Title       *string `json:"title,omitempty"`
	Link        *string `json:"link,omitempty"`
	AltLink     *string `json:"altLink,omitempty"`
	Number      *int    `json:"number,omitempty"`
	ReleaseDate *string `json:"releaseDate,omitempty"`
}

// UpdateEpisode handles PATCH /v1/episodes/{episode_id}
func UpdateEpisode(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		episodeID := strings.TrimSpace(chi.URLParam(r, "episode_id"))
		if episodeID == "" {
			api.BadRequest(w, "MISSING_ID", "episode_id is required", rid, nil)
			return
		}

		var req updateEpisodeRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		ep, err := t.UpdateEpisode(r.Context(), episodeID, catalog.EpisodePatch{
			Title:       req.Title,
			Link:        req.Link,
			AltLink:     req.AltLink,
			Number:      req.Number,
			ReleaseDate: req.ReleaseDate,
		})
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, ep)
	}
}

// DeleteEpisode handles DELETE /v1/episodes/{episode_id}
func DeleteEpisode(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		episodeID := strings.TrimSpace(chi.URLParam(r, "episode_id"))
		if episodeID == "" {
			api.BadRequest(w, "MISSING_ID", "episode_id is required", rid, nil)
			return
		}

		ep, err := t.DeleteEpisode(r.Context(), episodeID)
		if err != nil {
			writeDomainError(w, rid, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, ep)
	}
}
