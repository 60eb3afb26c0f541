package service

import (
	"context"
	"log"
	"time"

	"ubae_shell/internal/query"
	"ubae_shell/internal/queue"
)

const publishTimeout = 2 * time.Second

// BroadcastInvalidator invalidates locally and then tells other shell
// instances about it. Without a publisher it only invalidates locally.
type BroadcastInvalidator struct {
	store     *query.Store
	publisher queue.Publisher
	origin    string
}

func NewBroadcastInvalidator(store *query.Store, publisher queue.Publisher, origin string) *BroadcastInvalidator {
	return &BroadcastInvalidator{
		store:     store,
		publisher: publisher,
		origin:    origin,
	}
}

// Invalidate marks key stale in the local store and publishes the event.
// A failed publish is logged; the local refetch already happened.
func (b *BroadcastInvalidator) Invalidate(key query.Key) {
	b.store.Invalidate(key)

	if b.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := queue.NewQueryInvalidatedEvent(string(key), b.origin)
	if _, err := b.publisher.Publish(ctx, queue.StreamInvalidations, event); err != nil {
		log.Printf("[Invalidator] Broadcast FAILED: key=%s origin=%s err=%v", key, b.origin, err)
	}
}
