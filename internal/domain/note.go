package domain

import "time"

// MaxNoteLength bounds the note body in characters.
const MaxNoteLength = 2000

// Note is a user's free-form note on one problem. At most one exists per (user, problem).
type Note struct {
	ID        string
	UserID    string
	ProblemID int64
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
