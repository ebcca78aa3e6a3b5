package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"livepoll/internal/services"
	"livepoll/internal/transport/wsdto"
	livepoll_errors "livepoll/pkg/errors"
	"livepoll/pkg/logger"
)

// Gateway deserializes inbound client frames and invokes the poll and
// response services. Broadcast side effects ride the event bus into the
// hub; the gateway itself only ever answers the originating connection.
// A failed event is isolated to its request, it never tears down the
// connection or the service.
type Gateway struct {
	hub       *Hub
	polls     *services.PollService
	responses *services.ResponseService
	logger    *logger.Logger
}

func NewGateway(hub *Hub, polls *services.PollService, responses *services.ResponseService, l *logger.Logger) *Gateway {
	return &Gateway{
		hub:       hub,
		polls:     polls,
		responses: responses,
		logger:    l,
	}
}

// Dispatch routes one inbound frame.
func (g *Gateway) Dispatch(ctx context.Context, client *Client, raw []byte) {
	var env wsdto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.sendError(client, "Malformed message")
		return
	}

	switch env.Event {
	case wsdto.EventCreatePoll:
		g.handleCreatePoll(ctx, client, env.Data)
	case wsdto.EventSubmitResponse:
		g.handleSubmitResponse(ctx, client, env.Data)
	case wsdto.EventGetPoll:
		g.handleGetPoll(ctx, client, env.Data)
	case wsdto.EventTogglePoll:
		g.handleTogglePoll(ctx, client, env.Data)
	case wsdto.EventCheckStatus:
		g.handleCheckStatus(ctx, client, env.Data)
	case wsdto.EventDeleteResponse:
		g.handleDeleteResponse(ctx, client, env.Data)
	default:
		g.sendError(client, "Unknown event")
	}
}

func (g *Gateway) handleCreatePoll(ctx context.Context, client *Client, data json.RawMessage) {
	var req wsdto.CreatePollRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.sendError(client, "Failed to create poll")
		return
	}

	in := services.CreatePollInput{
		Title:     req.Title,
		CreatedBy: req.CreatedBy,
		College:   req.College,
		Gender:    req.Gender,
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, services.CreateQuestionInput{
			Text:    q.Text,
			Options: q.Options,
		})
	}

	if _, err := g.polls.Create(ctx, in); err != nil {
		g.logError(client, "create poll", err)
		g.sendError(client, "Failed to create poll")
		return
	}
	// Success broadcasts new-poll via the event bus.
}

func (g *Gateway) handleSubmitResponse(ctx context.Context, client *Client, data json.RawMessage) {
	var req wsdto.SubmitResponseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.sendError(client, "Failed to submit response")
		return
	}
	pollID, err := uuid.Parse(req.PollID)
	if err != nil {
		g.sendError(client, "Poll is not live")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		g.sendError(client, "Failed to submit response")
		return
	}
	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		g.sendError(client, "Failed to submit response")
		return
	}

	_, err = g.responses.Submit(ctx, pollID, req.UserID, questionID, optionID)
	switch {
	case err == nil:
		// Success broadcasts update-poll-results via the event bus.
	case errors.Is(err, livepoll_errors.ErrPollNotLive):
		g.sendError(client, "Poll is not live")
	case errors.Is(err, livepoll_errors.ErrDuplicateResponse):
		g.sendError(client, "Response already exists")
	default:
		g.logError(client, "submit response", err)
		g.sendError(client, "Failed to submit response")
	}
}

func (g *Gateway) handleGetPoll(ctx context.Context, client *Client, data json.RawMessage) {
	pollID, ok := parsePollID(data)
	if !ok {
		g.sendError(client, "Poll not found")
		return
	}

	snap, err := g.polls.Get(ctx, pollID)
	switch {
	case err == nil:
		g.hub.SendToOne(client.ID, wsdto.EventPollData, snap)
	case errors.Is(err, livepoll_errors.ErrNotFound):
		g.sendError(client, "Poll not found")
	default:
		g.logError(client, "get poll", err)
		g.sendError(client, "Failed to fetch poll")
	}
}

func (g *Gateway) handleTogglePoll(ctx context.Context, client *Client, data json.RawMessage) {
	pollID, ok := parsePollID(data)
	if !ok {
		g.sendError(client, "Poll not found")
		return
	}

	if _, err := g.polls.ToggleLive(ctx, pollID); err != nil {
		if errors.Is(err, livepoll_errors.ErrNotFound) {
			g.sendError(client, "Poll not found")
			return
		}
		g.logError(client, "toggle poll status", err)
		g.sendError(client, "Failed to toggle poll status")
		return
	}
	// Success broadcasts poll-data via the event bus.
}

func (g *Gateway) handleCheckStatus(ctx context.Context, client *Client, data json.RawMessage) {
	var req wsdto.ResponseRef
	if err := json.Unmarshal(data, &req); err != nil {
		g.sendError(client, "Failed to check response")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		g.sendError(client, "Failed to check response")
		return
	}

	resp, err := g.responses.CheckExisting(ctx, questionID, req.UserID)
	switch {
	case err == nil:
		g.hub.SendToOne(client.ID, wsdto.EventResponseExists, wsdto.ResponseData{
			ID:         resp.ID.String(),
			UserID:     resp.UserID,
			QuestionID: resp.QuestionID.String(),
			OptionID:   resp.OptionID.String(),
			CreatedAt:  resp.CreatedAt.Format(time.RFC3339),
		})
		g.sendError(client, "Response already exists")
	case errors.Is(err, livepoll_errors.ErrNotFound):
		g.hub.SendToOne(client.ID, wsdto.EventResponseNotFound, nil)
	default:
		g.logError(client, "check response status", err)
		g.sendError(client, "Failed to check response")
	}
}

func (g *Gateway) handleDeleteResponse(ctx context.Context, client *Client, data json.RawMessage) {
	var req wsdto.ResponseRef
	if err := json.Unmarshal(data, &req); err != nil {
		g.sendError(client, "Failed to delete response")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		g.sendError(client, "Failed to delete response")
		return
	}

	if _, err := g.responses.Delete(ctx, questionID, req.UserID); err != nil {
		g.logError(client, "delete response", err)
		g.sendError(client, "Failed to delete response")
	}
}

func (g *Gateway) sendError(client *Client, message string) {
	g.hub.SendToOne(client.ID, wsdto.EventError, message)
}

func (g *Gateway) logError(client *Client, op string, err error) {
	if g.logger != nil {
		g.logger.Errorf("%s failed for connection %s: %v", op, client.ID, err)
	}
}

// parsePollID accepts either a bare id string or a {"pollId": ...} object.
func parsePollID(data json.RawMessage) (uuid.UUID, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if id, err := uuid.Parse(s); err == nil {
			return id, true
		}
		return uuid.Nil, false
	}
	var ref wsdto.PollRef
	if err := json.Unmarshal(data, &ref); err == nil {
		if id, err := uuid.Parse(ref.PollID); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
