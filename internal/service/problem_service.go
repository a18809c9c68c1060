package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/events"
	"github.com/spec-kit/coaching-service/internal/repository"
	apperrors "github.com/spec-kit/coaching-service/pkg/util/errorutil"
)

// ProblemService exposes the practice catalog.
type ProblemService struct {
	problems   repository.ProblemRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProblemService builds the service.
func NewProblemService(problems repository.ProblemRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ProblemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProblemService{problems: problems, dispatcher: dispatcher, logger: logger}
}

// List returns every problem ordered by id.
func (s *ProblemService) List(ctx context.Context) ([]domain.Problem, error) {
	problems, err := s.problems.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return problems, nil
}

// ToggleSolved flips the solved flag of a problem and returns its new state.
func (s *ProblemService) ToggleSolved(ctx context.Context, actorID string, problemID int64) (*domain.Problem, error) {
	return s.toggle(ctx, actorID, problemID, repository.FlagSolved, events.EventProblemSolvedToggled)
}

// ToggleStarred flips the starred flag of a problem and returns its new state.
func (s *ProblemService) ToggleStarred(ctx context.Context, actorID string, problemID int64) (*domain.Problem, error) {
	return s.toggle(ctx, actorID, problemID, repository.FlagStarred, events.EventProblemStarredToggled)
}

func (s *ProblemService) toggle(ctx context.Context, actorID string, problemID int64, flag repository.ProblemFlag, eventType events.EventType) (*domain.Problem, error) {
	problem, err := s.problems.Toggle(ctx, problemID, flag)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("problem", map[string]any{"problem_id": problemID})
		}
		return nil, apperrors.MapError(err)
	}

	value := problem.Solved
	if flag == repository.FlagStarred {
		value = problem.Starred
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(eventType, actorID, events.ProblemToggledPayload{
		ProblemID: problem.ID,
		Value:     value,
	}))
	return problem, nil
}
