package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the invalidation stream
const (
	EventQueryInvalidated = "query_invalidated"
)

// Stream names
const (
	StreamInvalidations = "stream:query-invalidations"
)

// ConsumerGroupPrefix is prefixed to the instance id to name each shell's own
// consumer group, so every instance receives every event.
const ConsumerGroupPrefix = "shell:"

// InvalidationEvent tells other shell instances of the same user that a
// cached query is stale.
type InvalidationEvent struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	Origin    string `json:"origin"`    // Instance id of the publisher
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred
}

// NewQueryInvalidatedEvent creates an event for a key invalidated by origin.
func NewQueryInvalidatedEvent(key, origin string) InvalidationEvent {
	return InvalidationEvent{
		Type:      EventQueryInvalidated,
		Key:       key,
		Origin:    origin,
		Timestamp: time.Now().Unix(),
	}
}

// ConsumerGroup returns the consumer group name for an instance.
func ConsumerGroup(instanceID string) string {
	return ConsumerGroupPrefix + instanceID
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e InvalidationEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseInvalidationEvent parses an event from Redis stream message values.
func ParseInvalidationEvent(values map[string]interface{}) (InvalidationEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return InvalidationEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event InvalidationEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return InvalidationEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Key == "" {
		return InvalidationEvent{}, fmt.Errorf("event has no key")
	}
	return event, nil
}
