// Package catalog holds the persisted record types and the typed
// repositories over the three tracked collections.
package catalog

import "time"

// Collection names as they appear on disk (<name>.json).
const (
	CollectionAnime    = "anime"
	CollectionEpisodes = "episodes"
	CollectionSchedule = "scheduled-releases"
)

// SchemaVersion tags export bundles so a future import can tell what it
// is looking at.
const SchemaVersion = 1

// DateLayout is the calendar-day format used for release and schedule
// dates. Full RFC 3339 timestamps are accepted on input.
const DateLayout = "2006-01-02"

// AnimeEntry is one tracked title. Display fields are a local cache of
// provider data, not authoritative.
type AnimeEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Dub          bool      `json:"dub"`
	ScheduleDate string    `json:"scheduleDate,omitempty"`
	DateAdded    time.Time `json:"dateAdded"`
	LastUpdated  time.Time `json:"lastUpdated,omitempty"`
}

// Episode is one episode of a tracked anime. Number is unique within the
// same AnimeID.
type Episode struct {
	ID          string    `json:"id"`
	AnimeID     string    `json:"animeId"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	AltLink     string    `json:"altLink,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	DateAdded   time.Time `json:"dateAdded"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

type ReleaseType string

const (
	ReleaseTypeAnime   ReleaseType = "anime"
	ReleaseTypeEpisode ReleaseType = "episode"
)

// ScheduledRelease is a derived record for a future-dated anime or
// episode. ID is the id of the source record, so (Type, ID) identifies
// exactly one active entry.
type ScheduledRelease struct {
	ID            string      `json:"id"`
	Type          ReleaseType `json:"type"`
	AnimeID       string      `json:"animeId"`
	AnimeTitle    string      `json:"animeTitle"`
	EpisodeNumber int         `json:"episodeNumber,omitempty"`
	EpisodeTitle  string      `json:"episodeTitle,omitempty"`
	ReleaseDate   string      `json:"releaseDate"`
	LastUpdated   time.Time   `json:"lastUpdated,omitempty"`
}

// ExportBundle is the wholesale backup format: all three collections
// plus an export timestamp and schema version tag.
type ExportBundle struct {
	SchemaVersion int                `json:"schemaVersion"`
	ExportedAt    time.Time          `json:"exportedAt"`
	Anime         []AnimeEntry       `json:"anime"`
	Episodes      []Episode          `json:"episodes"`
	Scheduled     []ScheduledRelease `json:"scheduled"`
}

// ParseDate accepts a calendar day or a full RFC 3339 timestamp and
// returns the day truncated to midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FutureDate reports whether s parses to today or a later day.
func FutureDate(s string, now time.Time) bool {
	d, ok := ParseDate(s)
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(today)
}
