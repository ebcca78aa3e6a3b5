package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
	"livepoll/internal/repository"
	livepoll_errors "livepoll/pkg/errors"
	"livepoll/pkg/events"
	"livepoll/pkg/logger"
)

// CreatePollInput is the validated shape of a poll-creation request.
type CreatePollInput struct {
	Title     string
	CreatedBy string
	College   string
	Gender    string
	Questions []CreateQuestionInput
}

type CreateQuestionInput struct {
	Text    string
	Options []string
}

// PollService is the authoritative registry for poll state: creation,
// lookup, and live/closed transitions. Every successful mutation publishes
// its snapshot on the poll events channel after the storage commit.
type PollService struct {
	polls     repository.PollRepository
	responses repository.ResponseRepository
	bus       events.Publisher
	logger    *logger.Logger
}

func NewPollService(polls repository.PollRepository, responses repository.ResponseRepository, bus events.Publisher, l *logger.Logger) *PollService {
	return &PollService{
		polls:     polls,
		responses: responses,
		bus:       bus,
		logger:    l,
	}
}

func (s *PollService) Create(ctx context.Context, in CreatePollInput) (poll.Snapshot, error) {
	if err := validateCreateInput(in); err != nil {
		return poll.Snapshot{}, err
	}

	p := poll.Poll{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(in.Title),
		CreatedBy: in.CreatedBy,
		IsLive:    true,
		CreatedAt: time.Now().UTC(),
	}
	if in.College != "" {
		p.College = sql.NullString{String: in.College, Valid: true}
	}
	if in.Gender != "" {
		p.TargetGender = sql.NullString{String: in.Gender, Valid: true}
	}
	for qi, q := range in.Questions {
		question := poll.Question{
			ID:       uuid.New(),
			PollID:   p.ID,
			Text:     q.Text,
			Position: qi,
		}
		for oi, text := range q.Options {
			question.Options = append(question.Options, poll.Option{
				ID:         uuid.New(),
				QuestionID: question.ID,
				Text:       text,
				Position:   oi,
			})
		}
		p.Questions = append(p.Questions, question)
	}

	if err := s.polls.CreateTree(ctx, &p); err != nil {
		return poll.Snapshot{}, err
	}

	snap := buildSnapshot(p, nil)
	s.publish(ctx, events.EventTypePollCreated, snap)
	return snap, nil
}

func (s *PollService) Get(ctx context.Context, pollID uuid.UUID) (poll.Snapshot, error) {
	return loadSnapshot(ctx, s.polls, s.responses, pollID)
}

// ToggleLive flips the live flag. Not idempotent: each call flips. The flip
// itself is a single atomic update, so concurrent toggles never lose a flip.
func (s *PollService) ToggleLive(ctx context.Context, pollID uuid.UUID) (poll.Snapshot, error) {
	if err := s.polls.ToggleLive(ctx, pollID); err != nil {
		return poll.Snapshot{}, err
	}

	snap, err := loadSnapshot(ctx, s.polls, s.responses, pollID)
	if err != nil {
		return poll.Snapshot{}, err
	}
	s.publish(ctx, events.EventTypePollToggled, snap)
	return snap, nil
}

func (s *PollService) publish(ctx context.Context, eventType string, snap poll.Snapshot) {
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

func validateCreateInput(in CreatePollInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", livepoll_errors.ErrInvalidInput)
	}
	if len(in.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", livepoll_errors.ErrInvalidInput)
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", livepoll_errors.ErrInvalidInput, i)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", livepoll_errors.ErrInvalidInput, i)
		}
	}
	return nil
}
