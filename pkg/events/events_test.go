package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestNewEventMarshalsPayload(t *testing.T) {
	ev, err := NewEvent(EventTypePollCreated, map[string]string{"id": "p1"})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if ev.Type != EventTypePollCreated {
		t.Errorf("type = %q, want %q", ev.Type, EventTypePollCreated)
	}
	if ev.Timestamp == 0 {
		t.Error("timestamp not set")
	}

	var payload map[string]string
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["id"] != "p1" {
		t.Errorf("payload id = %q, want p1", payload["id"])
	}
}

func TestInProcBusDeliversToAllHandlers(t *testing.T) {
	bus := NewInProcBus()

	var first, second []string
	bus.Subscribe(context.Background(), ChannelPolls, func(_ context.Context, ev Event) error {
		first = append(first, ev.Type)
		return nil
	})
	bus.Subscribe(context.Background(), ChannelPolls, func(_ context.Context, ev Event) error {
		second = append(second, ev.Type)
		return nil
	})

	ev, _ := NewEvent(EventTypePollToggled, nil)
	if err := bus.Publish(context.Background(), ChannelPolls, ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", len(first), len(second))
	}
}

func TestInProcBusChannelsAreIsolated(t *testing.T) {
	bus := NewInProcBus()

	delivered := 0
	bus.Subscribe(context.Background(), "other-channel", func(_ context.Context, ev Event) error {
		delivered++
		return nil
	})

	ev, _ := NewEvent(EventTypePollCreated, nil)
	if err := bus.Publish(context.Background(), ChannelPolls, ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
}

func TestInProcBusHandlerErrorPropagates(t *testing.T) {
	bus := NewInProcBus()
	wantErr := errors.New("handler failed")
	bus.Subscribe(context.Background(), ChannelPolls, func(_ context.Context, _ Event) error {
		return wantErr
	})

	ev, _ := NewEvent(EventTypePollCreated, nil)
	if err := bus.Publish(context.Background(), ChannelPolls, ev); !errors.Is(err, wantErr) {
		t.Errorf("Publish error = %v, want %v", err, wantErr)
	}
}
