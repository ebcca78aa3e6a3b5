package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"livepoll/internal/domain/poll"
	"livepoll/internal/services"
	"livepoll/internal/testutil"
	"livepoll/internal/transport/wsdto"
	"livepoll/pkg/events"
)

type gatewayFixture struct {
	hub     *Hub
	gateway *Gateway
	store   *testutil.MemoryStore
	polls   *services.PollService
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	hub := startHub(t)
	bus := events.NewInProcBus()
	if err := hub.SubscribeEvents(context.Background(), bus); err != nil {
		t.Fatalf("SubscribeEvents failed: %v", err)
	}

	store := testutil.NewMemoryStore()
	pollSvc := services.NewPollService(store.Polls(), store.Responses(), bus, nil)
	respSvc := services.NewResponseService(store.Polls(), store.Responses(), bus, nil)

	return &gatewayFixture{
		hub:     hub,
		gateway: NewGateway(hub, pollSvc, respSvc, nil),
		store:   store,
		polls:   pollSvc,
	}
}

func frame(t *testing.T, event string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	out, err := json.Marshal(wsdto.Envelope{Event: event, Data: raw})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func expectError(t *testing.T, c *Client, message string) {
	t.Helper()
	env := recvFrame(t, c)
	if env.Event != wsdto.EventError {
		t.Fatalf("event = %q, want error", env.Event)
	}
	var msg string
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if msg != message {
		t.Errorf("error message = %q, want %q", msg, message)
	}
}

func (f *gatewayFixture) seedPoll(t *testing.T) poll.Snapshot {
	t.Helper()
	snap, err := f.polls.Create(context.Background(), services.CreatePollInput{
		Title:     "Favorite color",
		CreatedBy: "creator",
		Questions: []services.CreateQuestionInput{{Text: "Pick one", Options: []string{"Red", "Blue"}}},
	})
	if err != nil {
		t.Fatalf("seed poll: %v", err)
	}
	return snap
}

func TestGatewayCreatePollBroadcastsNewPoll(t *testing.T) {
	f := newGatewayFixture(t)
	sender := registerClient(t, f.hub)
	watcher := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventCreatePoll, wsdto.CreatePollRequest{
		Title:     "Lunch",
		CreatedBy: "u1",
		Questions: []wsdto.CreateQuestionRequest{{Text: "Where?", Options: []string{"North", "South"}}},
	}))

	for _, c := range []*Client{sender, watcher} {
		env := recvFrame(t, c)
		if env.Event != wsdto.EventNewPoll {
			t.Errorf("event = %q, want %q", env.Event, wsdto.EventNewPoll)
		}
		var snap poll.Snapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			t.Fatalf("bad snapshot payload: %v", err)
		}
		if snap.Title != "Lunch" || len(snap.Questions) != 1 {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	}
}

func TestGatewayCreatePollInvalidIsTargetedError(t *testing.T) {
	f := newGatewayFixture(t)
	sender := registerClient(t, f.hub)
	watcher := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventCreatePoll, wsdto.CreatePollRequest{
		Title: "", CreatedBy: "u1",
	}))

	expectError(t, sender, "Failed to create poll")
	select {
	case raw := <-watcher.Send:
		t.Errorf("error was broadcast to watcher: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGatewaySubmitResponseBroadcastsResults(t *testing.T) {
	f := newGatewayFixture(t)
	snap := f.seedPoll(t)
	sender := registerClient(t, f.hub)
	watcher := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventSubmitResponse, wsdto.SubmitResponseRequest{
		PollID:     snap.ID.String(),
		UserID:     "u1",
		QuestionID: snap.Questions[0].ID.String(),
		OptionID:   snap.Questions[0].Options[1].ID.String(),
	}))

	for _, c := range []*Client{sender, watcher} {
		env := recvFrame(t, c)
		if env.Event != wsdto.EventUpdateResults {
			t.Fatalf("event = %q, want %q", env.Event, wsdto.EventUpdateResults)
		}
		var got poll.Snapshot
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("bad snapshot payload: %v", err)
		}
		if got.Questions[0].Options[1].Count != 1 {
			t.Errorf("Blue count = %d, want 1", got.Questions[0].Options[1].Count)
		}
	}
}

func TestGatewaySubmitToClosedPoll(t *testing.T) {
	f := newGatewayFixture(t)
	snap := f.seedPoll(t)
	if _, err := f.polls.ToggleLive(context.Background(), snap.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	sender := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventSubmitResponse, wsdto.SubmitResponseRequest{
		PollID:     snap.ID.String(),
		UserID:     "u1",
		QuestionID: snap.Questions[0].ID.String(),
		OptionID:   snap.Questions[0].Options[0].ID.String(),
	}))

	expectError(t, sender, "Poll is not live")
}

func TestGatewayGetPoll(t *testing.T) {
	f := newGatewayFixture(t)
	snap := f.seedPoll(t)
	sender := registerClient(t, f.hub)

	// get-poll accepts the bare id string, matching the original protocol.
	f.gateway.Dispatch(context.Background(), sender, []byte(
		fmt.Sprintf(`{"event":"get-poll","data":%q}`, snap.ID.String())))

	env := recvFrame(t, sender)
	if env.Event != wsdto.EventPollData {
		t.Fatalf("event = %q, want %q", env.Event, wsdto.EventPollData)
	}
	var got poll.Snapshot
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("bad snapshot payload: %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("snapshot id = %s, want %s", got.ID, snap.ID)
	}
}

func TestGatewayGetPollNotFound(t *testing.T) {
	f := newGatewayFixture(t)
	sender := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventGetPoll, wsdto.PollRef{
		PollID: "5f1c0d9e-0000-4000-8000-000000000000",
	}))

	expectError(t, sender, "Poll not found")
}

func TestGatewayTogglePollBroadcasts(t *testing.T) {
	f := newGatewayFixture(t)
	snap := f.seedPoll(t)
	sender := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventTogglePoll, snap.ID.String()))

	env := recvFrame(t, sender)
	if env.Event != wsdto.EventPollData {
		t.Fatalf("event = %q, want %q", env.Event, wsdto.EventPollData)
	}
	var got poll.Snapshot
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("bad snapshot payload: %v", err)
	}
	if got.IsLive {
		t.Error("snapshot should reflect the flipped isLive")
	}
}

// Toggle failures notify the requester like every other operation.
func TestGatewayToggleUnknownPollNotifies(t *testing.T) {
	f := newGatewayFixture(t)
	sender := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventTogglePoll, "not-a-uuid"))
	expectError(t, sender, "Poll not found")

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventTogglePoll, "5f1c0d9e-0000-4000-8000-000000000000"))
	expectError(t, sender, "Poll not found")
}

func TestGatewayCheckStatus(t *testing.T) {
	f := newGatewayFixture(t)
	snap := f.seedPoll(t)
	sender := registerClient(t, f.hub)

	questionID := snap.Questions[0].ID

	// No response yet.
	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventCheckStatus, wsdto.ResponseRef{
		UserID:     "u1",
		QuestionID: questionID.String(),
	}))
	env := recvFrame(t, sender)
	if env.Event != wsdto.EventResponseNotFound {
		t.Fatalf("event = %q, want %q", env.Event, wsdto.EventResponseNotFound)
	}

	// Submit, then check again: response-exists plus a targeted error.
	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventSubmitResponse, wsdto.SubmitResponseRequest{
		PollID:     snap.ID.String(),
		UserID:     "u1",
		QuestionID: questionID.String(),
		OptionID:   snap.Questions[0].Options[0].ID.String(),
	}))
	if env := recvFrame(t, sender); env.Event != wsdto.EventUpdateResults {
		t.Fatalf("event = %q, want %q", env.Event, wsdto.EventUpdateResults)
	}

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventCheckStatus, wsdto.ResponseRef{
		UserID:     "u1",
		QuestionID: questionID.String(),
	}))
	if env := recvFrame(t, sender); env.Event != wsdto.EventResponseExists {
		t.Fatalf("event = %q, want %q", env.Event, wsdto.EventResponseExists)
	}
	expectError(t, sender, "Response already exists")
}

func TestGatewayDeleteResponse(t *testing.T) {
	f := newGatewayFixture(t)
	snap := f.seedPoll(t)
	sender := registerClient(t, f.hub)
	questionID := snap.Questions[0].ID

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventSubmitResponse, wsdto.SubmitResponseRequest{
		PollID:     snap.ID.String(),
		UserID:     "u1",
		QuestionID: questionID.String(),
		OptionID:   snap.Questions[0].Options[0].ID.String(),
	}))
	if env := recvFrame(t, sender); env.Event != wsdto.EventUpdateResults {
		t.Fatalf("event = %q, want %q", env.Event, wsdto.EventUpdateResults)
	}

	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventDeleteResponse, wsdto.ResponseRef{
		UserID:     "u1",
		QuestionID: questionID.String(),
	}))

	if n := f.store.ResponseCount(questionID); n != 0 {
		t.Errorf("ledger has %d responses after delete, want 0", n)
	}
	// Deleting again matches zero rows and is still success: no error frame.
	f.gateway.Dispatch(context.Background(), sender, frame(t, wsdto.EventDeleteResponse, wsdto.ResponseRef{
		UserID:     "u1",
		QuestionID: questionID.String(),
	}))
	select {
	case raw := <-sender.Send:
		t.Errorf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGatewayUnknownEvent(t *testing.T) {
	f := newGatewayFixture(t)
	sender := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, []byte(`{"event":"no-such-event","data":{}}`))
	expectError(t, sender, "Unknown event")
}

func TestGatewayMalformedFrame(t *testing.T) {
	f := newGatewayFixture(t)
	sender := registerClient(t, f.hub)

	f.gateway.Dispatch(context.Background(), sender, []byte(`not json`))
	expectError(t, sender, "Malformed message")
}
