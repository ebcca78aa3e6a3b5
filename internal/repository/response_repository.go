package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"livepoll/internal/domain/response"
	livepoll_errors "livepoll/pkg/errors"
)

type PostgresResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &PostgresResponseRepository{db: db}
}

func (r *PostgresResponseRepository) Create(ctx context.Context, resp *response.Response) error {
	if err := r.db.WithContext(ctx).Create(resp).Error; err != nil {
		return classifyError(err)
	}
	return nil
}

func (r *PostgresResponseRepository) FindByQuestionAndUser(ctx context.Context, questionID uuid.UUID, userID string) (response.Response, error) {
	var resp response.Response
	err := r.db.WithContext(ctx).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		Order("created_at DESC").
		First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Response{}, livepoll_errors.ErrNotFound
		}
		return response.Response{}, classifyError(err)
	}
	return resp, nil
}

func (r *PostgresResponseRepository) DeleteByQuestionAndUser(ctx context.Context, questionID uuid.UUID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		Delete(&response.Response{})
	if res.Error != nil {
		return 0, classifyError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *PostgresResponseRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]response.Response, error) {
	var rows []response.Response
	err := r.db.WithContext(ctx).
		Joins("JOIN poll_questions ON poll_questions.id = responses.question_id").
		Where("poll_questions.poll_id = ?", pollID).
		Find(&rows).Error
	if err != nil {
		return nil, classifyError(err)
	}
	return rows, nil
}
