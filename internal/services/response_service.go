package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/response"
	"livepoll/internal/repository"
	livepoll_errors "livepoll/pkg/errors"
	"livepoll/pkg/events"
	"livepoll/pkg/logger"
)

// ResponseService is the ledger for user responses. It upholds the
// one-response-per-(user, question) invariant that the tally aggregator
// relies on: submission checks for an existing row and rejects with a typed
// duplicate error, leaving replacement to the client's
// check - delete - resubmit protocol.
//
// The live check is a point-in-time read. A response can land moments after
// a concurrent toggle closes the poll; serializing the two would put a
// poll-wide lock on every submission, so the race is accepted.
type ResponseService struct {
	polls     repository.PollRepository
	responses repository.ResponseRepository
	bus       events.Publisher
	logger    *logger.Logger
}

func NewResponseService(polls repository.PollRepository, responses repository.ResponseRepository, bus events.Publisher, l *logger.Logger) *ResponseService {
	return &ResponseService{
		polls:     polls,
		responses: responses,
		bus:       bus,
		logger:    l,
	}
}

func (s *ResponseService) Submit(ctx context.Context, pollID uuid.UUID, userID string, questionID, optionID uuid.UUID) (poll.Snapshot, error) {
	isLive, err := s.polls.GetLive(ctx, pollID)
	if err != nil {
		if errors.Is(err, livepoll_errors.ErrNotFound) {
			return poll.Snapshot{}, livepoll_errors.ErrPollNotLive
		}
		return poll.Snapshot{}, err
	}
	if !isLive {
		return poll.Snapshot{}, livepoll_errors.ErrPollNotLive
	}

	if _, err := s.responses.FindByQuestionAndUser(ctx, questionID, userID); err == nil {
		return poll.Snapshot{}, livepoll_errors.ErrDuplicateResponse
	} else if !errors.Is(err, livepoll_errors.ErrNotFound) {
		return poll.Snapshot{}, err
	}

	resp := response.Response{
		ID:         uuid.New(),
		UserID:     userID,
		QuestionID: questionID,
		OptionID:   optionID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.responses.Create(ctx, &resp); err != nil {
		return poll.Snapshot{}, err
	}

	snap, err := loadSnapshot(ctx, s.polls, s.responses, pollID)
	if err != nil {
		return poll.Snapshot{}, err
	}
	s.publish(ctx, events.EventTypeResponseSubmitted, snap)
	return snap, nil
}

// CheckExisting is a pure lookup with no side effects.
func (s *ResponseService) CheckExisting(ctx context.Context, questionID uuid.UUID, userID string) (response.Response, error) {
	return s.responses.FindByQuestionAndUser(ctx, questionID, userID)
}

// Delete removes every response matching (question, user) and reports the
// count. Removing zero rows is success. The delete is defensive against
// duplicate rows that should not exist.
func (s *ResponseService) Delete(ctx context.Context, questionID uuid.UUID, userID string) (int64, error) {
	return s.responses.DeleteByQuestionAndUser(ctx, questionID, userID)
}

func (s *ResponseService) publish(ctx context.Context, eventType string, snap poll.Snapshot) {
	if s.bus == nil {
		return
	}
	ev, err := events.NewEvent(eventType, snap)
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("failed to build %s event: %v", eventType, err)
		}
		return
	}
	if err := s.bus.Publish(ctx, events.ChannelPolls, ev); err != nil && s.logger != nil {
		s.logger.Errorf("failed to publish %s event: %v", eventType, err)
	}
}
