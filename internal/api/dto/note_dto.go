package dto

import "strconv"

// SaveNoteRequest carries the note body. Note is nil when the field is absent.
type SaveNoteRequest struct {
	Note *string `json:"note"`
}

// SaveNoteResponse acknowledges an upsert.
type SaveNoteResponse struct {
	Status string `json:"status"`
}

// NotesByProblem keys note bodies by the decimal problem id.
func NotesByProblem(notes map[int64]string) map[string]string {
	out := make(map[string]string, len(notes))
	for id, body := range notes {
		out[strconv.FormatInt(id, 10)] = body
	}
	return out
}
