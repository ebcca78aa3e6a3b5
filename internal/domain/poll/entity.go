package poll

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Poll represents the polls table
type Poll struct {
	ID           uuid.UUID
	Title        string
	CreatedBy    string
	College      sql.NullString
	TargetGender sql.NullString
	IsLive       bool
	CreatedAt    time.Time
	Questions    []Question `gorm:"foreignKey:PollID"`
}

// Question represents poll_questions, exclusively owned by its Poll
type Question struct {
	ID       uuid.UUID
	PollID   uuid.UUID
	Text     string
	Position int
	Options  []Option `gorm:"foreignKey:QuestionID"`
}

// Option represents poll_options, exclusively owned by its Question.
// Vote counts are never stored here; they are recomputed from responses.
type Option struct {
	ID         uuid.UUID
	QuestionID uuid.UUID
	Text       string
	Position   int
}

func (Poll) TableName() string {
	return "polls"
}

func (Question) TableName() string {
	return "poll_questions"
}

func (Option) TableName() string {
	return "poll_options"
}
