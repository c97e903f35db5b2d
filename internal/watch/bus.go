package watch

import (
	"go.uber.org/atomic"

	"rently/internal/models"
	"rently/internal/structures"
)

type EventType string

const (
	EventListingCreated EventType = "listing_created"
	EventListingUpdated EventType = "listing_updated"
)

// Event carries the pre- and post-write state of one listing document.
// Before is nil for creations.
type Event struct {
	Type   EventType
	Before *models.Listing
	After  *models.Listing
}

const defaultBufferSize = 256

// Bus is the in-process channel the listing write path publishes change
// events on. Publish blocks when the buffer is full rather than dropping
// moderation-relevant events.
type Bus struct {
	ch        chan Event
	published atomic.Int64
}

func NewBus(conf *structures.Config) *Bus {
	size := conf.Moderation.EventBufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Bus{ch: make(chan Event, size)}
}

func (b *Bus) Publish(ev Event) {
	b.ch <- ev
	b.published.Inc()
}

func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Pending reports the number of events waiting for dispatch.
func (b *Bus) Pending() int {
	return len(b.ch)
}

func (b *Bus) Published() int64 {
	return b.published.Load()
}
