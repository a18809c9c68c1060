// Package seed loads the demo accounts and problem catalogue into an empty store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/coaching-service/internal/auth"
	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// UserSeed is a demo account.
type UserSeed struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ProblemSeed is a catalogue entry.
type ProblemSeed struct {
	Title       string `yaml:"title"`
	Topic       string `yaml:"topic"`
	LeetcodeURL string `yaml:"leetcode_url"`
	NeetCodeURL string `yaml:"neetcode_url"`
	Difficulty  string `yaml:"difficulty"`
}

// Catalog is the seed file layout.
type Catalog struct {
	Users    []UserSeed    `yaml:"users"`
	Problems []ProblemSeed `yaml:"problems"`
}

// DefaultCatalog parses the embedded catalogue.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a catalogue document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog YAML: %w", err)
	}
	for i, u := range c.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("user %d: email and password required", i)
		}
	}
	for i, p := range c.Problems {
		if p.Title == "" || p.Topic == "" {
			return nil, fmt.Errorf("problem %d: title and topic required", i)
		}
		if _, ok := domain.ParseDifficulty(p.Difficulty); !ok {
			return nil, fmt.Errorf("problem %q: unknown difficulty %q", p.Title, p.Difficulty)
		}
	}
	return &c, nil
}

// Seeder writes a catalogue through the repositories.
type Seeder struct {
	users      repository.UserRepository
	problems   repository.ProblemRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder builds a seeder.
func NewSeeder(users repository.UserRepository, problems repository.ProblemRepository, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, problems: problems, bcryptCost: bcryptCost, logger: logger}
}

// Run seeds each table only while it is empty, so restarts never duplicate data.
func (s *Seeder) Run(ctx context.Context, c *Catalog) error {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		for _, u := range c.Users {
			hash, err := auth.HashPassword(u.Password, s.bcryptCost)
			if err != nil {
				return err
			}
			err = s.users.Create(ctx, &domain.User{Email: u.Email, PasswordHash: hash})
			if err != nil && !errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}
		s.logger.Info("seeded users", zap.Int("count", len(c.Users)))
	}

	problemCount, err := s.problems.Count(ctx)
	if err != nil {
		return fmt.Errorf("count problems: %w", err)
	}
	if problemCount == 0 {
		for _, p := range c.Problems {
			difficulty, _ := domain.ParseDifficulty(p.Difficulty)
			err := s.problems.Create(ctx, &domain.Problem{
				Title:       p.Title,
				Topic:       p.Topic,
				LeetcodeURL: p.LeetcodeURL,
				NeetCodeURL: p.NeetCodeURL,
				Difficulty:  difficulty,
			})
			if err != nil && !errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("seed problem %q: %w", p.Title, err)
			}
		}
		s.logger.Info("seeded problems", zap.Int("count", len(c.Problems)))
	}
	return nil
}
