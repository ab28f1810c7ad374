// Package events provides a fire-and-forget NATS publisher for tracker
// mutation events. The binary runs fine without a broker: a nil
// publisher is a safe no-op.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every mutation event type.
const (
	SubjectAnimeAdded      = "anitrack.anime.added"
	SubjectAnimeUpdated    = "anitrack.anime.updated"
	SubjectAnimeRemoved    = "anitrack.anime.removed"
	SubjectEpisodeAdded    = "anitrack.episode.added"
	SubjectEpisodeUpdated  = "anitrack.episode.updated"
	SubjectEpisodeRemoved  = "anitrack.episode.removed"
	SubjectImportCompleted = "anitrack.import.completed"
	SubjectCacheInvalidate = "anitrack.cache.invalidate"
)

// Event is the canonical envelope sent on every anitrack.* subject.
type Event struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes mutation events to NATS.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// New creates a Publisher over an existing connection.
// Pass nc=nil to get a no-op stub.
func New(nc *nats.Conn, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{nc: nc, log: log}
}

// Publish sends an event asynchronously (fire-and-forget). Failures are
// logged as warnings and never surface to the caller.
func (p *Publisher) Publish(subject, eventName string, props map[string]any) {
	if p == nil || p.nc == nil {
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		OccurredAt: time.Now().UTC(),
		Properties: props,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// InvalidateCache broadcasts a cache invalidation for one anime id, or
// everything when animeID is empty.
func (p *Publisher) InvalidateCache(animeID string) {
	if p == nil || p.nc == nil {
		return
	}
	payload := animeID
	if payload == "" {
		payload = "ALL"
	}
	if err := p.nc.Publish(SubjectCacheInvalidate, []byte(payload)); err != nil {
		p.log.Warn("events: cache invalidate publish failed", zap.Error(err))
	}
}
