package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/example/anitrack/internal/store"
)

// AnimeRepo owns the in-memory anime collection, loaded once at startup
// and persisted after every mutation by the tracker.
type AnimeRepo struct {
	mu sync.RWMutex
	st *store.Store
	c  *collection[AnimeEntry]
}

func NewAnimeRepo(st *store.Store) *AnimeRepo {
	return &AnimeRepo{
		st: st,
		c:  newCollection(func(a AnimeEntry) string { return a.ID }),
	}
}

func (r *AnimeRepo) Load(ctx context.Context) error {
	var items []AnimeEntry
	if err := r.st.Load(ctx, CollectionAnime, &items); err != nil {
		return Wrap(KindPersistenceFailure, err, "load anime collection")
	}
	r.mu.Lock()
	r.c.replaceAll(items)
	r.mu.Unlock()
	return nil
}

func (r *AnimeRepo) Persist(ctx context.Context) error {
	r.mu.RLock()
	items := r.c.all()
	r.mu.RUnlock()
	if err := r.st.Save(ctx, CollectionAnime, items); err != nil {
		return Wrap(KindPersistenceFailure, err, "persist anime collection")
	}
	return nil
}

func (r *AnimeRepo) All() []AnimeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c.all()
}

func (r *AnimeRepo) Get(id string) (AnimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.c.findByID(id)
	if !ok {
		return AnimeEntry{}, E(KindNotFound, "anime %q is not tracked", id)
	}
	return a, nil
}

func (r *AnimeRepo) Insert(a AnimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.c.insertUnique(a) {
		return E(KindDuplicateKey, "anime %q is already tracked", a.ID)
	}
	return nil
}

// AnimePatch is a merge patch over an AnimeEntry. Nil fields are left
// alone; a pointer to the zero value clears the field. ID is immutable.
type AnimePatch struct {
	Title        *string
	Thumbnail    *string
	Notes        *string
	Dub          *bool
	ScheduleDate *string
}

func (r *AnimeRepo) Update(id string, p AnimePatch, now time.Time) (AnimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.c.findByID(id)
	if !ok {
		return AnimeEntry{}, E(KindNotFound, "anime %q is not tracked", id)
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Thumbnail != nil {
		a.Thumbnail = *p.Thumbnail
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.Dub != nil {
		a.Dub = *p.Dub
	}
	if p.ScheduleDate != nil {
		a.ScheduleDate = *p.ScheduleDate
	}
	a.LastUpdated = now.UTC()
	r.c.replaceByID(id, a)
	return a, nil
}

func (r *AnimeRepo) Delete(id string) (AnimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.c.deleteByID(id)
	if !ok {
		return AnimeEntry{}, E(KindNotFound, "anime %q is not tracked", id)
	}
	return a, nil
}

func (r *AnimeRepo) ReplaceAll(items []AnimeEntry) {
	r.mu.Lock()
	r.c.replaceAll(items)
	r.mu.Unlock()
}

func (r *AnimeRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c.len()
}
