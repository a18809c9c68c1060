package domain

import "strings"

// Difficulty grades a practice problem.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty normalizes a difficulty label.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

// Problem is an entry of the practice catalog.
type Problem struct {
	ID          int64
	Title       string
	Topic       string
	LeetcodeURL string
	NeetCodeURL string
	Difficulty  Difficulty
	Solved      bool
	Starred     bool
}
