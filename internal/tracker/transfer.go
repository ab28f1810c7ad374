package tracker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/anitrack/internal/catalog"
	"github.com/example/anitrack/internal/events"
	"github.com/example/anitrack/internal/jikan"
)

// ListSchedule returns scheduled releases, optionally bounded by a date
// range. Zero bounds are open.
func (t *Tracker) ListSchedule(from, to time.Time) []catalog.ScheduledRelease {
	if from.IsZero() && to.IsZero() {
		return t.schedule.All()
	}
	return t.schedule.InRange(from, to)
}

// UpsertScheduledRelease is the direct entry point for schedule
// entries. It still upserts by (type, source id), so it can never
// duplicate an entry the derivation rules already maintain.
func (t *Tracker) UpsertScheduledRelease(ctx context.Context, rel catalog.ScheduledRelease) (catalog.ScheduledRelease, error) {
	if rel.Type != catalog.ReleaseTypeAnime && rel.Type != catalog.ReleaseTypeEpisode {
		return catalog.ScheduledRelease{}, catalog.E(catalog.KindMissingField, "type must be %q or %q", catalog.ReleaseTypeAnime, catalog.ReleaseTypeEpisode)
	}
	if rel.ID == "" {
		return catalog.ScheduledRelease{}, catalog.E(catalog.KindMissingField, "id is required")
	}
	if _, ok := catalog.ParseDate(rel.ReleaseDate); !ok {
		return catalog.ScheduledRelease{}, catalog.E(catalog.KindMissingField, "releaseDate %q is not a valid date", rel.ReleaseDate)
	}
	if rel.AnimeID == "" && rel.Type == catalog.ReleaseTypeAnime {
		rel.AnimeID = rel.ID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.anime.Get(rel.AnimeID)
	if err != nil {
		return catalog.ScheduledRelease{}, err
	}
	if rel.AnimeTitle == "" {
		rel.AnimeTitle = entry.Title
	}

	now := t.now().UTC()
	t.schedule.Upsert(rel, now)
	rel.LastUpdated = now

	if err := t.schedule.Persist(ctx); err != nil {
		return catalog.ScheduledRelease{}, err
	}
	return rel, nil
}

// ImportCounts reports what a wholesale import replaced.
type ImportCounts struct {
	Anime     int `json:"anime"`
	Episodes  int `json:"episodes"`
	Scheduled int `json:"scheduled"`
}

// ImportAll replaces all three collections with the bundle's contents.
// The export format is trusted as-is (no invariant re-validation); the
// metadata cache is always invalidated afterwards.
func (t *Tracker) ImportAll(ctx context.Context, bundle catalog.ExportBundle) (ImportCounts, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.anime.ReplaceAll(bundle.Anime)
	t.episodes.ReplaceAll(bundle.Episodes)
	t.schedule.ReplaceAll(bundle.Scheduled)
	t.cache.Clear()

	if err := t.anime.Persist(ctx); err != nil {
		return ImportCounts{}, err
	}
	if err := t.episodes.Persist(ctx); err != nil {
		return ImportCounts{}, err
	}
	if err := t.schedule.Persist(ctx); err != nil {
		return ImportCounts{}, err
	}

	counts := ImportCounts{
		Anime:     len(bundle.Anime),
		Episodes:  len(bundle.Episodes),
		Scheduled: len(bundle.Scheduled),
	}
	t.events.Publish(events.SubjectImportCompleted, "import_completed", map[string]any{
		"anime": counts.Anime, "episodes": counts.Episodes, "scheduled": counts.Scheduled,
	})
	t.events.InvalidateCache("")
	return counts, nil
}

// ExportAll bundles all three collections for backup.
func (t *Tracker) ExportAll() catalog.ExportBundle {
	return catalog.ExportBundle{
		SchemaVersion: catalog.SchemaVersion,
		ExportedAt:    t.now().UTC(),
		Anime:         t.anime.All(),
		Episodes:      t.episodes.All(),
		Scheduled:     t.schedule.All(),
	}
}

// SearchProvider is a passthrough to the provider's free-text search.
func (t *Tracker) SearchProvider(ctx context.Context, q string, page, limit int) ([]jikan.Summary, error) {
	if t.provider == nil {
		return nil, catalog.E(catalog.KindProviderUnavailable, "no metadata provider configured")
	}
	resp, err := t.provider.Search(ctx, q, page, limit)
	if err != nil {
		return nil, catalog.Wrap(catalog.KindProviderUnavailable, err, "provider search failed")
	}
	out := make([]jikan.Summary, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, jikan.ToSummary(d))
	}
	return out, nil
}

// EnrichedAnime merges the stored snapshot with provider metadata.
// Metadata is nil when neither cache nor provider could supply it; the
// stored snapshot is the documented fallback.
type EnrichedAnime struct {
	catalog.AnimeEntry
	Metadata *jikan.Summary `json:"metadata,omitempty"`
}

const enrichConcurrency = 4

// ListAnimeEnriched returns every tracked title with provider
// summaries, batch-fetching cache misses with bounded fan-out that
// joins before returning.
func (t *Tracker) ListAnimeEnriched(ctx context.Context) []EnrichedAnime {
	entries := t.anime.All()
	out := make([]EnrichedAnime, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			e := EnrichedAnime{AnimeEntry: entry}
			if s, ok := t.fetchSummary(ctx, entry.ID); ok {
				e.Metadata = &s
			}
			out[i] = e
			return nil
		})
	}
	_ = g.Wait() // per-item failures already fell back to the snapshot
	return out
}

// GetAnimeEnriched returns one entry merged with provider metadata.
func (t *Tracker) GetAnimeEnriched(ctx context.Context, id string) (EnrichedAnime, error) {
	entry, err := t.anime.Get(id)
	if err != nil {
		return EnrichedAnime{}, err
	}
	e := EnrichedAnime{AnimeEntry: entry}
	if s, ok := t.fetchSummary(ctx, id); ok {
		e.Metadata = &s
	}
	return e, nil
}
