package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// ChannelPolls carries every poll domain event.
const ChannelPolls = "channel:polls"

// Domain event types, format: domain.action
const (
	EventTypePollCreated       = "poll.created"
	EventTypePollToggled       = "poll.toggled"
	EventTypeResponseSubmitted = "response.submitted"
)

type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// NewEvent marshals payload and stamps the event with the current time.
func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type Handler func(ctx context.Context, event Event) error

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler Handler) error
}

type Broker interface {
	Publisher
	Subscriber
}

// InProcBus is a Broker that dispatches events synchronously within the
// process. Handlers registered for a channel run in registration order on
// the publisher's goroutine; a handler error is logged by the caller, not
// propagated to other handlers.
type InProcBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewInProcBus() *InProcBus {
	return &InProcBus{handlers: make(map[string][]Handler)}
}

func (b *InProcBus) Publish(ctx context.Context, channel string, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[channel]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *InProcBus) Subscribe(ctx context.Context, channel string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = append(b.handlers[channel], handler)
	return nil
}
