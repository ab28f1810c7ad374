package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/anitrack/internal/store"
)

// EpisodeRepo owns the in-memory episode collection. Number uniqueness
// per anime is enforced here; referential checks against the anime
// collection belong to the tracker.
type EpisodeRepo struct {
	mu sync.RWMutex
	st *store.Store
	c  *collection[Episode]
}

func NewEpisodeRepo(st *store.Store) *EpisodeRepo {
	return &EpisodeRepo{
		st: st,
		c:  newCollection(func(e Episode) string { return e.ID }),
	}
}

func (r *EpisodeRepo) Load(ctx context.Context) error {
	var items []Episode
	if err := r.st.Load(ctx, CollectionEpisodes, &items); err != nil {
		return Wrap(KindPersistenceFailure, err, "load episode collection")
	}
	r.mu.Lock()
	r.c.replaceAll(items)
	r.mu.Unlock()
	return nil
}

func (r *EpisodeRepo) Persist(ctx context.Context) error {
	r.mu.RLock()
	items := r.c.all()
	r.mu.RUnlock()
	if err := r.st.Save(ctx, CollectionEpisodes, items); err != nil {
		return Wrap(KindPersistenceFailure, err, "persist episode collection")
	}
	return nil
}

func (r *EpisodeRepo) All() []Episode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c.all()
}

func (r *EpisodeRepo) Get(id string) (Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.c.findByID(id)
	if !ok {
		return Episode{}, E(KindNotFound, "episode %q not found", id)
	}
	return e, nil
}

// ByAnime returns the episodes of one anime ordered by number.
func (r *EpisodeRepo) ByAnime(animeID string) []Episode {
	r.mu.RLock()
	eps := r.c.filter(func(e Episode) bool { return e.AnimeID == animeID })
	r.mu.RUnlock()
	sort.Slice(eps, func(i, j int) bool { return eps[i].Number < eps[j].Number })
	return eps
}

// NextNumber returns max(existing numbers for animeID)+1, or 1 when the
// anime has no episodes yet.
func (r *EpisodeRepo) NextNumber(animeID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, e := range r.c.filter(func(e Episode) bool { return e.AnimeID == animeID }) {
		if e.Number > max {
			max = e.Number
		}
	}
	return max + 1
}

func (r *EpisodeRepo) Insert(e Episode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.c.filter(func(x Episode) bool { return x.AnimeID == e.AnimeID }) {
		if existing.Number == e.Number {
			return E(KindDuplicateNumber, "episode %d already exists for anime %q", e.Number, e.AnimeID)
		}
	}
	if !r.c.insertUnique(e) {
		return E(KindDuplicateKey, "episode id %q already exists", e.ID)
	}
	return nil
}

// EpisodePatch is a merge patch over an Episode. ID and AnimeID are
// immutable.
type EpisodePatch struct {
	Title       *string
	Link        *string
	AltLink     *string
	Number      *int
	ReleaseDate *string
}

func (r *EpisodeRepo) Update(id string, p EpisodePatch, now time.Time) (Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.c.findByID(id)
	if !ok {
		return Episode{}, E(KindNotFound, "episode %q not found", id)
	}
	if p.Number != nil && *p.Number != e.Number {
		for _, sibling := range r.c.filter(func(x Episode) bool { return x.AnimeID == e.AnimeID && x.ID != id }) {
			if sibling.Number == *p.Number {
				return Episode{}, E(KindDuplicateNumber, "episode %d already exists for anime %q", *p.Number, e.AnimeID)
			}
		}
		e.Number = *p.Number
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Link != nil {
		e.Link = *p.Link
	}
	if p.AltLink != nil {
		e.AltLink = *p.AltLink
	}
	if p.ReleaseDate != nil {
		e.ReleaseDate = *p.ReleaseDate
	}
	e.LastUpdated = now.UTC()
	r.c.replaceByID(id, e)
	return e, nil
}

func (r *EpisodeRepo) Delete(id string) (Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.c.deleteByID(id)
	if !ok {
		return Episode{}, E(KindNotFound, "episode %q not found", id)
	}
	return e, nil
}

// DeleteByAnime removes every episode of one anime and returns the
// removed set, used by the anime-delete cascade and bulk replace mode.
func (r *EpisodeRepo) DeleteByAnime(animeID string) []Episode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c.deleteWhere(func(e Episode) bool { return e.AnimeID == animeID })
}

func (r *EpisodeRepo) ReplaceAll(items []Episode) {
	r.mu.Lock()
	r.c.replaceAll(items)
	r.mu.Unlock()
}

func (r *EpisodeRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c.len()
}
