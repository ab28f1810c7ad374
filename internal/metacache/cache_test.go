package metacache

import (
	"testing"
	"time"

	"github.com/example/anitrack/internal/jikan"
)

func TestCache_PutGet(t *testing.T) {
	c := New(time.Minute, nil, "")

	if _, ok := c.Get("101"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("101", jikan.Summary{MalID: 101, Title: "Example Show"}, 0)
	s, ok := c.Get("101")
	if !ok {
		t.Fatal("expected hit")
	}
	if s.Title != "Example Show" {
		t.Fatalf("expected cached summary, got %+v", s)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute, nil, "")

	c.Put("101", jikan.Summary{MalID: 101}, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("101"); ok {
		t.Fatal("expected entry to have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry evicted, len=%d", c.Len())
	}
}

func TestCache_InvalidateAndClear(t *testing.T) {
	c := New(time.Minute, nil, "")
	c.Put("101", jikan.Summary{MalID: 101}, 0)
	c.Put("102", jikan.Summary{MalID: 102}, 0)

	c.Invalidate("101")
	if _, ok := c.Get("101"); ok {
		t.Fatal("expected 101 invalidated")
	}
	if _, ok := c.Get("102"); !ok {
		t.Fatal("expected 102 untouched")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, len=%d", c.Len())
	}
}
