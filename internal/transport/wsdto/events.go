package wsdto

import "encoding/json"

// Inbound event names.
const (
	EventCreatePoll     = "create-poll"
	EventSubmitResponse = "submit-response"
	EventGetPoll        = "get-poll"
	EventTogglePoll     = "toggle-poll-status"
	EventCheckStatus    = "check-status"
	EventDeleteResponse = "delete-response"
)

// Outbound event names.
const (
	EventNewPoll          = "new-poll"
	EventUpdateResults    = "update-poll-results"
	EventPollData         = "poll-data"
	EventError            = "error"
	EventResponseExists   = "response-exists"
	EventResponseNotFound = "response-not-found"
)

// Envelope is the wire frame for both directions:
// {"event": <name>, "data": <payload>}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type CreatePollRequest struct {
	Title     string                  `json:"title"`
	CreatedBy string                  `json:"createdBy"`
	College   string                  `json:"college,omitempty"`
	Gender    string                  `json:"gender,omitempty"`
	Questions []CreateQuestionRequest `json:"questions"`
}

type CreateQuestionRequest struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type SubmitResponseRequest struct {
	PollID     string `json:"pollId"`
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type PollRef struct {
	PollID string `json:"pollId"`
}

type ResponseRef struct {
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
}

// ResponseData is the outbound view of a recorded response.
type ResponseData struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
	CreatedAt  string `json:"createdAt"`
}
