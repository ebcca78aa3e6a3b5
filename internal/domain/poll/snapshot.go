package poll

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a read-only materialized view of a poll with live tallies.
// It is assembled fresh on every query or mutation, never cached.
type Snapshot struct {
	ID           uuid.UUID          `json:"id"`
	Title        string             `json:"title"`
	CreatedBy    string             `json:"createdBy"`
	College      string             `json:"college,omitempty"`
	TargetGender string             `json:"gender,omitempty"`
	IsLive       bool               `json:"isLive"`
	CreatedAt    time.Time          `json:"createdAt"`
	Questions    []QuestionSnapshot `json:"questions"`
}

type QuestionSnapshot struct {
	ID      uuid.UUID        `json:"id"`
	Text    string           `json:"text"`
	Options []OptionSnapshot `json:"options"`
}

type OptionSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Count int       `json:"count"`
}
