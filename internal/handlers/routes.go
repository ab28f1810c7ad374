package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/example/anitrack/internal/tracker"
)

// RegisterRoutes mounts the admin API. httpserver.SetupRouter must have
// been called on r first.
func RegisterRoutes(r chi.Router, t *tracker.Tracker) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/anime", func(r chi.Router) {
			r.Get("/", ListAnime(t))
			r.Post("/", AddAnime(t))
			r.Route("/{anime_id}", func(r chi.Router) {
				r.Get("/", GetAnime(t))
				r.Patch("/", UpdateAnime(t))
				r.Delete("/", RemoveAnime(t))
				r.Get("/episodes", ListEpisodes(t))
				r.Post("/episodes", AddEpisode(t))
				r.Post("/episodes/bulk", BulkAddEpisodes(t))
			})
		})

		r.Route("/episodes/{episode_id}", func(r chi.Router) {
			r.Get("/", GetEpisode(t))
			r.Patch("/", UpdateEpisode(t))
			r.Delete("/", DeleteEpisode(t))
		})

		r.Get("/schedule", ListSchedule(t))
		r.Post("/schedule", UpsertSchedule(t))

		r.Get("/search", Search(t))
		r.Get("/export", Export(t))
		r.Post("/import", Import(t))
	})
}
