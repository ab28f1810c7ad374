package catalog

// collection is the shared in-memory core under each typed repository:
// an ordered slice of records addressed by a caller-supplied id func.
// Callers hold their own locks; the core is not goroutine-safe.
type collection[T any] struct {
	items []T
	id    func(T) string
}

func newCollection[T any](id func(T) string) *collection[T] {
	return &collection[T]{id: id}
}

func (c *collection[T]) findByID(id string) (T, bool) {
	for _, it := range c.items {
		if c.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) filter(pred func(T) bool) []T {
	var out []T
	for _, it := range c.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// insertUnique appends item unless its id is already present.
func (c *collection[T]) insertUnique(item T) bool {
	if _, exists := c.findByID(c.id(item)); exists {
		return false
	}
	c.items = append(c.items, item)
	return true
}

func (c *collection[T]) replaceByID(id string, item T) bool {
	for i, it := range c.items {
		if c.id(it) == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

func (c *collection[T]) deleteByID(id string) (T, bool) {
	for i, it := range c.items {
		if c.id(it) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return it, true
		}
	}
	var zero T
	return zero, false
}

// deleteWhere removes every matching record and returns the removed set.
func (c *collection[T]) deleteWhere(pred func(T) bool) []T {
	var removed []T
	kept := c.items[:0]
	for _, it := range c.items {
		if pred(it) {
			removed = append(removed, it)
		} else {
			kept = append(kept, it)
		}
	}
	c.items = kept
	return removed
}

// all returns a copy so callers can't mutate the backing slice.
func (c *collection[T]) all() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) replaceAll(items []T) {
	c.items = make([]T, len(items))
	copy(c.items, items)
}

func (c *collection[T]) len() int { return len(c.items) }
