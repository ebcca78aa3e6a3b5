package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"livepoll/internal/transport/wsdto"
	"livepoll/pkg/events"
	"livepoll/pkg/logger"
)

// Hub fans poll snapshots out to every connected client and delivers
// targeted notices back to individual connections. It is the single place
// where domain events become wire events.
type Hub struct {
	mu sync.RWMutex

	// clients maps connection ID to client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	logger *logger.Logger
}

func NewHub(l *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		logger:     l,
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register adds a new client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client. Safe to call more than once for the same
// client; removal never disturbs in-flight broadcasts to other connections.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastAll delivers an event to every connected client. Delivery is
// best-effort per connection: each client has its own buffered channel and
// a full buffer drops the frame rather than blocking the loop.
func (h *Hub) BroadcastAll(eventKind string, payload interface{}) {
	frame, err := marshalFrame(eventKind, payload)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("failed to marshal %s frame: %v", eventKind, err)
		}
		return
	}
	h.mu.RLock()
	for _, c := range h.clients {
		c.SendMessage(frame)
	}
	h.mu.RUnlock()
}

// SendToOne delivers an event to a single connection, used for targeted
// notices back to an event's originator.
func (h *Hub) SendToOne(connectionID, eventKind string, payload interface{}) {
	frame, err := marshalFrame(eventKind, payload)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("failed to marshal %s frame: %v", eventKind, err)
		}
		return
	}
	h.mu.RLock()
	if c, ok := h.clients[connectionID]; ok {
		c.SendMessage(frame)
	}
	h.mu.RUnlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscribeEvents attaches the hub to the poll event channel, translating
// domain events into their wire counterparts.
func (h *Hub) SubscribeEvents(ctx context.Context, sub events.Subscriber) error {
	return sub.Subscribe(ctx, events.ChannelPolls, func(_ context.Context, ev events.Event) error {
		switch ev.Type {
		case events.EventTypePollCreated:
			h.broadcastRaw(wsdto.EventNewPoll, ev.Payload)
		case events.EventTypeResponseSubmitted:
			h.broadcastRaw(wsdto.EventUpdateResults, ev.Payload)
		case events.EventTypePollToggled:
			h.broadcastRaw(wsdto.EventPollData, ev.Payload)
		default:
			if h.logger != nil {
				h.logger.Warnf("unhandled poll event type %q", ev.Type)
			}
		}
		return nil
	})
}

func (h *Hub) broadcastRaw(eventKind string, data json.RawMessage) {
	frame, err := json.Marshal(wsdto.Envelope{Event: eventKind, Data: data})
	if err != nil {
		return
	}
	h.mu.RLock()
	for _, c := range h.clients {
		c.SendMessage(frame)
	}
	h.mu.RUnlock()
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	if h.logger != nil {
		h.logger.Infof("client connected: %s", client.ID)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
	if h.logger != nil {
		h.logger.Infof("client disconnected: %s", client.ID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.Send)
	}
}

func marshalFrame(eventKind string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsdto.Envelope{Event: eventKind, Data: data})
}
