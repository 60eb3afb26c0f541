package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"ubae_shell/internal/query"
	"ubae_shell/internal/queue"
)

// Handler applies invalidation events published by other shell instances
// to the local query store.
type Handler struct {
	local  query.Invalidator // Must not re-broadcast
	origin string
}

// NewHandler creates a handler that invalidates local on behalf of the
// instance identified by origin.
func NewHandler(local query.Invalidator, origin string) *Handler {
	return &Handler{
		local:  local,
		origin: origin,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.InvalidationEvent) error {
	startTime := time.Now()

	switch event.Type {
	case queue.EventQueryInvalidated:
		h.handleQueryInvalidated(event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	log.Printf("[Worker] HandleEvent OK: type=%s key=%s duration=%v", event.Type, event.Key, time.Since(startTime))
	return nil
}

func (h *Handler) handleQueryInvalidated(event queue.InvalidationEvent) {
	// Own events were applied locally before publishing.
	if event.Origin == h.origin {
		return
	}
	log.Printf("[Worker] QueryInvalidated: key=%s origin=%s", event.Key, event.Origin)
	h.local.Invalidate(query.Key(event.Key))
}
