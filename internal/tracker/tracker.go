// Package tracker coordinates mutations that span the anime, episode
// and scheduled-release collections: referential checks, delete
// cascades, and keeping the derived schedule in sync with release
// dates. Every successful mutation persists the touched collections
// before returning.
package tracker

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/events"
	"github.com/example/anitrack/internal/jikan"
	"github.com/example/anitrack/internal/metacache"
)

// Provider is the external metadata source, queried by numeric id or
// free-text search.
type Provider interface {
	GetAnime(ctx context.Context, malID int) (*jikan.AnimeResponse, error)
	Search(ctx context.Context, q string, page, limit int) (*jikan.AnimeListResponse, error)
}

type Options struct {
	Anime    *catalog.AnimeRepo
	Episodes *catalog.EpisodeRepo
	Schedule *catalog.ScheduleRepo
	Provider Provider
	Cache    *metacache.Cache
	Events   *events.Publisher
	Logger   *zap.Logger
}

type Tracker struct {
	// mu serializes read-modify-write cycles across concurrent handlers
	// so two mutations cannot interleave between check and persist.
	mu sync.Mutex

	anime    *catalog.AnimeRepo
	episodes *catalog.EpisodeRepo
	schedule *catalog.ScheduleRepo
	provider Provider
	cache    *metacache.Cache
	events   *events.Publisher
	log      *zap.Logger

	now func() time.Time
}

func New(opts Options) *Tracker {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cache := opts.Cache
	if cache == nil {
		cache = metacache.New(metacache.DefaultTTL, nil, "")
	}
	return &Tracker{
		anime:    opts.Anime,
		episodes: opts.Episodes,
		schedule: opts.Schedule,
		provider: opts.Provider,
		cache:    cache,
		events:   opts.Events,
		log:      log,
		now:      time.Now,
	}
}

// Load materializes all three collections from disk. Called once at
// process start.
func (t *Tracker) Load(ctx context.Context) error {
	if err := t.anime.Load(ctx); err != nil {
		return err
	}
	if err := t.episodes.Load(ctx); err != nil {
		return err
	}
	return t.schedule.Load(ctx)
}

// AddAnimeInput carries the operator-supplied fields of an add.
type AddAnimeInput struct {
	ScheduleDate string
	Notes        string
	Dub          bool
}

// AddAnime tracks a new title by its provider id. The provider fetch is
// best-effort: when it fails the entry is created as a minimal stub and
// the add still succeeds. This policy is deliberate and uniform; the
// operator can re-sync display fields later once the provider is back.
func (t *Tracker) AddAnime(ctx context.Context, externalID string, in AddAnimeInput) (catalog.AnimeEntry, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return catalog.AnimeEntry{}, catalog.E(catalog.KindMissingField, "anime id is required")
	}
	if in.ScheduleDate != "" {
		if _, ok := catalog.ParseDate(in.ScheduleDate); !ok {
			return catalog.AnimeEntry{}, catalog.E(catalog.KindMissingField, "scheduleDate %q is not a valid date", in.ScheduleDate)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.anime.Get(externalID); err == nil {
		return catalog.AnimeEntry{}, catalog.E(catalog.KindDuplicateKey, "anime %q is already tracked", externalID)
	}

	now := t.now().UTC()
	entry := catalog.AnimeEntry{
		ID:           externalID,
		Title:        jikan.UnknownTitle,
		Notes:        in.Notes,
		Dub:          in.Dub,
		ScheduleDate: in.ScheduleDate,
		DateAdded:    now,
	}

	if summary, ok := t.fetchSummary(ctx, externalID); ok {
		entry.Title = summary.Title
		entry.Thumbnail = summary.Image
	} else {
		t.log.Warn("provider unavailable, adding stub record", zap.String("anime_id", externalID))
	}

	if err := t.anime.Insert(entry); err != nil {
		return catalog.AnimeEntry{}, err
	}

	scheduleTouched := t.deriveAnimeSchedule(entry, now)

	if err := t.anime.Persist(ctx); err != nil {
		return catalog.AnimeEntry{}, err
	}
	if scheduleTouched {
		if err := t.schedule.Persist(ctx); err != nil {
			return catalog.AnimeEntry{}, err
		}
	}

	t.events.Publish(events.SubjectAnimeAdded, "anime_added", map[string]any{"anime_id": entry.ID, "title": entry.Title})
	return entry, nil
}

// UpdateAnime applies a merge patch and re-derives the anime's
// scheduled-release entry from its schedule date.
func (t *Tracker) UpdateAnime(ctx context.Context, id string, patch catalog.AnimePatch) (catalog.AnimeEntry, error) {
	if patch.ScheduleDate != nil && *patch.ScheduleDate != "" {
		if _, ok := catalog.ParseDate(*patch.ScheduleDate); !ok {
			return catalog.AnimeEntry{}, catalog.E(catalog.KindMissingField, "scheduleDate %q is not a valid date", *patch.ScheduleDate)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	entry, err := t.anime.Update(id, patch, now)
	if err != nil {
		return catalog.AnimeEntry{}, err
	}

	t.deriveAnimeSchedule(entry, now)

	if err := t.anime.Persist(ctx); err != nil {
		return catalog.AnimeEntry{}, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return catalog.AnimeEntry{}, err
	}

	t.events.Publish(events.SubjectAnimeUpdated, "anime_updated", map[string]any{"anime_id": entry.ID})
	t.events.InvalidateCache(entry.ID)
	return entry, nil
}

// RemoveResult reports what a cascade removed.
type RemoveResult struct {
	RemovedEpisodes  int `json:"removed_episodes"`
	RemovedScheduled int `json:"removed_scheduled"`
}

// RemoveAnime deletes a title and cascades to its episodes and schedule
// entries, persisting all three collections. There is no in-memory
// rollback if a later persist step fails; the next successful mutation
// converges the files again.
func (t *Tracker) RemoveAnime(ctx context.Context, id string) (RemoveResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.anime.Delete(id); err != nil {
		return RemoveResult{}, err
	}

	removed := t.episodes.DeleteByAnime(id)
	pruned := t.schedule.RemoveByAnime(id)
	t.cache.Invalidate(id)

	if err := t.anime.Persist(ctx); err != nil {
		return RemoveResult{}, err
	}
	if err := t.episodes.Persist(ctx); err != nil {
		return RemoveResult{}, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return RemoveResult{}, err
	}

	t.events.Publish(events.SubjectAnimeRemoved, "anime_removed", map[string]any{
		"anime_id":         id,
		"removed_episodes": len(removed),
	})
	t.events.InvalidateCache(id)

	return RemoveResult{RemovedEpisodes: len(removed), RemovedScheduled: pruned}, nil
}

// ListAnime returns the stored snapshot of every tracked title.
func (t *Tracker) ListAnime() []catalog.AnimeEntry {
	return t.anime.All()
}

// GetAnime returns one stored entry.
func (t *Tracker) GetAnime(id string) (catalog.AnimeEntry, error) {
	return t.anime.Get(id)
}

// deriveAnimeSchedule applies the schedule state machine for an anime's
// own entry: future date upserts, past or cleared date removes. Reports
// whether the schedule collection was touched.
func (t *Tracker) deriveAnimeSchedule(entry catalog.AnimeEntry, now time.Time) bool {
	if catalog.FutureDate(entry.ScheduleDate, now) {
		t.schedule.Upsert(catalog.ScheduledRelease{
			ID:          entry.ID,
			Type:        catalog.ReleaseTypeAnime,
			AnimeID:     entry.ID,
			AnimeTitle:  entry.Title,
			ReleaseDate: entry.ScheduleDate,
		}, now)
		return true
	}
	return t.schedule.Remove(catalog.ReleaseTypeAnime, entry.ID)
}

// fetchSummary resolves provider metadata for an anime id, trying the
// cache first. The ok result is false when neither source can help.
func (t *Tracker) fetchSummary(ctx context.Context, animeID string) (jikan.Summary, bool) {
	if s, ok := t.cache.Get(animeID); ok {
		return s, true
	}
	if t.provider == nil {
		return jikan.Summary{}, false
	}
	malID, err := strconv.Atoi(animeID)
	if err != nil || malID <= 0 {
		return jikan.Summary{}, false
	}
	resp, err := t.provider.GetAnime(ctx, malID)
	if err != nil {
		t.log.Warn("provider fetch failed", zap.String("anime_id", animeID), zap.Error(err))
		return jikan.Summary{}, false
	}
	s := jikan.ToSummary(resp.Data)
	t.cache.Put(animeID, s, 0)
	return s, true
}
