package messaging

import (
	"context"
	"sync"
	"time"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Publisher defines the interface for publishing lifecycle events
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Event is the envelope written to the broker.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// MemoryBroker keeps published messages in process. Used when no Redis URL
// is configured and by tests.
type MemoryBroker struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{messages: make(map[string][]interface{})}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[channel] = append(b.messages[channel], message)
	return nil
}

// Messages returns a copy of what was published on channel.
func (b *MemoryBroker) Messages(channel string) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]interface{}, len(b.messages[channel]))
	copy(out, b.messages[channel])
	return out
}

func (b *MemoryBroker) Close() error {
	return nil
}
