package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/events"
)

// EpisodeInput carries the caller-supplied fields of one episode.
// Number nil means auto-assign the next free number for the anime.
type EpisodeInput struct {
	Number      *int   `json:"number,omitempty"`
	Title       string `json:"title,omitempty"`
	Link        string `json:"link"`
	AltLink     string `json:"altLink,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// AddEpisode attaches one episode to a tracked anime. The link field is
// required; title defaults to "Episode {number}"; a future release date
// upserts the derived schedule entry.
func (t *Tracker) AddEpisode(ctx context.Context, animeID string, in EpisodeInput) (catalog.Episode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ep, err := t.buildAndInsertEpisode(animeID, in)
	if err != nil {
		return catalog.Episode{}, err
	}

	if err := t.episodes.Persist(ctx); err != nil {
		return catalog.Episode{}, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return catalog.Episode{}, err
	}

	t.events.Publish(events.SubjectEpisodeAdded, "episode_added", map[string]any{
		"anime_id": animeID, "episode_id": ep.ID, "number": ep.Number,
	})
	return ep, nil
}

// UpdateEpisode applies a merge patch and re-evaluates the schedule
// derivation: a release date that is now in the future upserts the
// entry with refreshed fields, a past or cleared date removes it.
func (t *Tracker) UpdateEpisode(ctx context.Context, id string, patch catalog.EpisodePatch) (catalog.Episode, error) {
	if patch.ReleaseDate != nil && *patch.ReleaseDate != "" {
		if _, ok := catalog.ParseDate(*patch.ReleaseDate); !ok {
			return catalog.Episode{}, catalog.E(catalog.KindMissingField, "releaseDate %q is not a valid date", *patch.ReleaseDate)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	ep, err := t.episodes.Update(id, patch, now)
	if err != nil {
		return catalog.Episode{}, err
	}

	t.deriveEpisodeSchedule(ep)

	if err := t.episodes.Persist(ctx); err != nil {
		return catalog.Episode{}, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return catalog.Episode{}, err
	}

	t.events.Publish(events.SubjectEpisodeUpdated, "episode_updated", map[string]any{
		"anime_id": ep.AnimeID, "episode_id": ep.ID,
	})
	return ep, nil
}

// DeleteEpisode removes one episode and its schedule entry.
func (t *Tracker) DeleteEpisode(ctx context.Context, id string) (catalog.Episode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ep, err := t.episodes.Delete(id)
	if err != nil {
		return catalog.Episode{}, err
	}
	t.schedule.Remove(catalog.ReleaseTypeEpisode, id)

	if err := t.episodes.Persist(ctx); err != nil {
		return catalog.Episode{}, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return catalog.Episode{}, err
	}

	t.events.Publish(events.SubjectEpisodeRemoved, "episode_removed", map[string]any{
		"anime_id": ep.AnimeID, "episode_id": ep.ID,
	})
	return ep, nil
}

// ListEpisodes returns an anime's episodes ordered by number. An
// untracked or deleted anime simply has none; reads never 404 here.
func (t *Tracker) ListEpisodes(animeID string) []catalog.Episode {
	return t.episodes.ByAnime(animeID)
}

// GetEpisode returns one episode.
func (t *Tracker) GetEpisode(id string) (catalog.Episode, error) {
	return t.episodes.Get(id)
}

// BulkError records one failed item of a bulk insert.
type BulkError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BulkResult reports partial-success bulk semantics: added episodes and
// per-item failures, never an all-or-nothing abort.
type BulkResult struct {
	Added    int               `json:"added"`
	Episodes []catalog.Episode `json:"episodes"`
	Errors   []BulkError       `json:"errors,omitempty"`
}

// BulkAddEpisodes validates each input independently. With
// replaceExisting, all prior episodes of the anime (and their schedule
// entries) are removed before the new batch is applied.
func (t *Tracker) BulkAddEpisodes(ctx context.Context, animeID string, inputs []EpisodeInput, replaceExisting bool) (BulkResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.anime.Get(animeID); err != nil {
		return BulkResult{}, err
	}

	if replaceExisting {
		for _, old := range t.episodes.DeleteByAnime(animeID) {
			t.schedule.Remove(catalog.ReleaseTypeEpisode, old.ID)
		}
	}

	var res BulkResult
	for i, in := range inputs {
		ep, err := t.buildAndInsertEpisode(animeID, in)
		if err != nil {
			res.Errors = append(res.Errors, BulkError{Index: i, Reason: err.Error()})
			continue
		}
		res.Episodes = append(res.Episodes, ep)
		res.Added++
	}

	if err := t.episodes.Persist(ctx); err != nil {
		return res, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return res, err
	}

	t.events.Publish(events.SubjectEpisodeAdded, "episodes_bulk_added", map[string]any{
		"anime_id": animeID, "added": res.Added, "failed": len(res.Errors),
	})
	return res, nil
}

// buildAndInsertEpisode is the shared single/bulk insert path. Caller
// holds t.mu and persists afterwards.
func (t *Tracker) buildAndInsertEpisode(animeID string, in EpisodeInput) (catalog.Episode, error) {
	entry, err := t.anime.Get(animeID)
	if err != nil {
		return catalog.Episode{}, err
	}
	if in.Link == "" {
		return catalog.Episode{}, catalog.E(catalog.KindMissingField, "episode link is required")
	}
	if in.ReleaseDate != "" {
		if _, ok := catalog.ParseDate(in.ReleaseDate); !ok {
			return catalog.Episode{}, catalog.E(catalog.KindMissingField, "releaseDate %q is not a valid date", in.ReleaseDate)
		}
	}

	number := t.episodes.NextNumber(animeID)
	if in.Number != nil {
		number = *in.Number
	}
	title := in.Title
	if title == "" {
		title = fmt.Sprintf("Episode %d", number)
	}

	now := t.now().UTC()
	ep := catalog.Episode{
		ID:          uuid.NewString(),
		AnimeID:     animeID,
		Number:      number,
		Title:       title,
		Link:        in.Link,
		AltLink:     in.AltLink,
		ReleaseDate: in.ReleaseDate,
		DateAdded:   now,
	}
	if err := t.episodes.Insert(ep); err != nil {
		return catalog.Episode{}, err
	}

	if catalog.FutureDate(ep.ReleaseDate, now) {
		t.schedule.Upsert(catalog.ScheduledRelease{
			ID:            ep.ID,
			Type:          catalog.ReleaseTypeEpisode,
			AnimeID:       animeID,
			AnimeTitle:    entry.Title,
			EpisodeNumber: ep.Number,
			EpisodeTitle:  ep.Title,
			ReleaseDate:   ep.ReleaseDate,
		}, now)
	}
	return ep, nil
}

// deriveEpisodeSchedule applies the schedule state machine after an
// episode mutation. Caller holds t.mu.
func (t *Tracker) deriveEpisodeSchedule(ep catalog.Episode) {
	now := t.now().UTC()
	if catalog.FutureDate(ep.ReleaseDate, now) {
		animeTitle := ""
		if entry, err := t.anime.Get(ep.AnimeID); err == nil {
			animeTitle = entry.Title
		}
		t.schedule.Upsert(catalog.ScheduledRelease{
			ID:            ep.ID,
			Type:          catalog.ReleaseTypeEpisode,
			AnimeID:       ep.AnimeID,
			AnimeTitle:    animeTitle,
			EpisodeNumber: ep.Number,
			EpisodeTitle:  ep.Title,
			ReleaseDate:   ep.ReleaseDate,
		}, now)
		return
	}
	t.schedule.Remove(catalog.ReleaseTypeEpisode, ep.ID)
}
