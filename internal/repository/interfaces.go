package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/response"
)

type PollRepository interface {
	// CreateTree persists a poll with its questions and options as one
	// transaction; readers never observe a partial tree.
	CreateTree(ctx context.Context, p *poll.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error)
	GetLive(ctx context.Context, id uuid.UUID) (bool, error)
	// ToggleLive flips is_live in a single atomic update.
	ToggleLive(ctx context.Context, id uuid.UUID) error
}

type ResponseRepository interface {
	Create(ctx context.Context, r *response.Response) error
	FindByQuestionAndUser(ctx context.Context, questionID uuid.UUID, userID string) (response.Response, error)
	// DeleteByQuestionAndUser removes every matching row and reports the
	// count; zero matches is success.
	DeleteByQuestionAndUser(ctx context.Context, questionID uuid.UUID, userID string) (int64, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]response.Response, error)
}

type Repositories struct {
	Polls     PollRepository
	Responses ResponseRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Polls:     NewPollRepository(db),
		Responses: NewResponseRepository(db),
	}
}
