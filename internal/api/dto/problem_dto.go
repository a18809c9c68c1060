package dto

import "github.com/spec-kit/coaching-service/internal/domain"

// ProblemResponse is the wire form of a catalog entry.
type ProblemResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Topic       string `json:"topic"`
	LeetcodeURL string `json:"leetcodeUrl"`
	NeetCodeURL string `json:"neetCodeUrl,omitempty"`
	Difficulty  string `json:"difficulty"`
	Solved      bool   `json:"solved"`
	Starred     bool   `json:"starred"`
}

// NewProblemResponse converts a domain problem.
func NewProblemResponse(p domain.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          p.ID,
		Title:       p.Title,
		Topic:       p.Topic,
		LeetcodeURL: p.LeetcodeURL,
		NeetCodeURL: p.NeetCodeURL,
		Difficulty:  string(p.Difficulty),
		Solved:      p.Solved,
		Starred:     p.Starred,
	}
}

// NewProblemList converts a slice of problems, never returning nil.
func NewProblemList(problems []domain.Problem) []ProblemResponse {
	out := make([]ProblemResponse, 0, len(problems))
	for _, p := range problems {
		out = append(out, NewProblemResponse(p))
	}
	return out
}
