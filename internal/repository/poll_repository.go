package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"livepoll/internal/domain/poll"
	livepoll_errors "livepoll/pkg/errors"
)

type PostgresPollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &PostgresPollRepository{db: db}
}

func (r *PostgresPollRepository) CreateTree(ctx context.Context, p *poll.Poll) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pollRow := poll.Poll{
			ID:           p.ID,
			Title:        p.Title,
			CreatedBy:    p.CreatedBy,
			College:      p.College,
			TargetGender: p.TargetGender,
			IsLive:       p.IsLive,
			CreatedAt:    p.CreatedAt,
		}
		if err := tx.Create(&pollRow).Error; err != nil {
			return err
		}
		for i := range p.Questions {
			q := &p.Questions[i]
			qRow := poll.Question{
				ID:       q.ID,
				PollID:   q.PollID,
				Text:     q.Text,
				Position: q.Position,
			}
			if err := tx.Create(&qRow).Error; err != nil {
				return err
			}
			for j := range q.Options {
				if err := tx.Create(&q.Options[j]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return classifyError(err)
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("poll_questions.position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("poll_options.position ASC")
		}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, livepoll_errors.ErrNotFound
		}
		return poll.Poll{}, classifyError(err)
	}
	return p, nil
}

func (r *PostgresPollRepository) GetLive(ctx context.Context, id uuid.UUID) (bool, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).
		Select("id", "is_live").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, livepoll_errors.ErrNotFound
		}
		return false, classifyError(err)
	}
	return p.IsLive, nil
}

func (r *PostgresPollRepository) ToggleLive(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("id = ?", id).
		UpdateColumn("is_live", gorm.Expr("NOT is_live"))
	if res.Error != nil {
		return classifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return livepoll_errors.ErrNotFound
	}
	return nil
}
