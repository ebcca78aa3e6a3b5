package response

import (
	"time"

	"github.com/google/uuid"
)

// Response represents the responses table: one user's recorded choice for
// one question. At most one row should exist per (user, question) pair;
// the response service is the enforcement point, not a storage constraint,
// because replacement is a delete-then-insert logical unit.
type Response struct {
	ID         uuid.UUID
	UserID     string
	QuestionID uuid.UUID
	OptionID   uuid.UUID
	CreatedAt  time.Time
}

func (Response) TableName() string {
	return "responses"
}
