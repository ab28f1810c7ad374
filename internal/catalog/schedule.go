package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/anitrack/internal/store"
)

// ScheduleRepo owns the derived scheduled-release collection. Records
// are keyed by (Type, ID) where ID is the source record's id, so an
// upsert can never produce duplicates for the same source.
type ScheduleRepo struct {
	mu sync.RWMutex
	st *store.Store
	c  *collection[ScheduledRelease]
}

func NewScheduleRepo(st *store.Store) *ScheduleRepo {
	return &ScheduleRepo{
		st: st,
		c:  newCollection(func(s ScheduledRelease) string { return string(s.Type) + "/" + s.ID }),
	}
}

func (r *ScheduleRepo) Load(ctx context.Context) error {
	var items []ScheduledRelease
	if err := r.st.Load(ctx, CollectionSchedule, &items); err != nil {
		return Wrap(KindPersistenceFailure, err, "load schedule collection")
	}
	r.mu.Lock()
	r.c.replaceAll(items)
	r.mu.Unlock()
	return nil
}

func (r *ScheduleRepo) Persist(ctx context.Context) error {
	r.mu.RLock()
	items := r.c.all()
	r.mu.RUnlock()
	if err := r.st.Save(ctx, CollectionSchedule, items); err != nil {
		return Wrap(KindPersistenceFailure, err, "persist schedule collection")
	}
	return nil
}

// Upsert creates or replaces the entry for rel's (Type, ID).
func (r *ScheduleRepo) Upsert(rel ScheduledRelease, now time.Time) {
	rel.LastUpdated = now.UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(rel.Type) + "/" + rel.ID
	if !r.c.replaceByID(key, rel) {
		r.c.insertUnique(rel)
	}
}

// Remove deletes the entry for (typ, sourceID) if present.
func (r *ScheduleRepo) Remove(typ ReleaseType, sourceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.c.deleteByID(string(typ) + "/" + sourceID)
	return ok
}

// RemoveByAnime prunes every entry referencing animeID (the anime's own
// entry and all of its episode entries) and reports how many went away.
func (r *ScheduleRepo) RemoveByAnime(animeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := r.c.deleteWhere(func(s ScheduledRelease) bool { return s.AnimeID == animeID })
	return len(removed)
}

// All returns every entry ordered by release date, then type and id for
// a stable tie-break.
func (r *ScheduleRepo) All() []ScheduledRelease {
	r.mu.RLock()
	items := r.c.all()
	r.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool {
		if items[i].ReleaseDate != items[j].ReleaseDate {
			return items[i].ReleaseDate < items[j].ReleaseDate
		}
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// InRange filters entries whose release date falls in [from, to]. Zero
// bounds are open.
func (r *ScheduleRepo) InRange(from, to time.Time) []ScheduledRelease {
	var out []ScheduledRelease
	for _, rel := range r.All() {
		d, ok := ParseDate(rel.ReleaseDate)
		if !ok {
			continue
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, rel)
	}
	return out
}

func (r *ScheduleRepo) ReplaceAll(items []ScheduledRelease) {
	r.mu.Lock()
	r.c.replaceAll(items)
	r.mu.Unlock()
}

func (r *ScheduleRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c.len()
}
