package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventUserLoggedIn          EventType = "user_logged_in"
	EventProblemSolvedToggled  EventType = "problem_solved_toggled"
	EventProblemStarredToggled EventType = "problem_starred_toggled"
	EventNoteSaved             EventType = "note_saved"
)

// AllEventTypes lists every type the services publish.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventUserLoggedIn,
	EventProblemSolvedToggled,
	EventProblemStarredToggled,
	EventNoteSaved,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current UTC time.
func NewEvent(eventType EventType, userID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserPayload accompanies registration and login events.
type UserPayload struct {
	Email string `json:"email"`
}

// ProblemToggledPayload carries the flag value after a toggle.
type ProblemToggledPayload struct {
	ProblemID int64 `json:"problem_id"`
	Value     bool  `json:"value"`
}

// NoteSavedPayload payload.
type NoteSavedPayload struct {
	ProblemID int64 `json:"problem_id"`
	Length    int   `json:"length"`
}
