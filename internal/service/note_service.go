package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/events"
	"github.com/spec-kit/coaching-service/internal/repository"
	apperrors "github.com/spec-kit/coaching-service/pkg/util/errorutil"
)

// NoteService manages per-user problem notes. Every operation is restricted to the
// owner of the notes, identified by the caller's email.
type NoteService struct {
	users      repository.UserRepository
	problems   repository.ProblemRepository
	notes      repository.NoteRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NoteDependencies bundles repositories for the note service.
type NoteDependencies struct {
	UserRepo    repository.UserRepository
	ProblemRepo repository.ProblemRepository
	NoteRepo    repository.NoteRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// SaveNoteInput describes a note upsert. A nil Body means the field was absent.
type SaveNoteInput struct {
	CallerEmail string
	UserID      string
	ProblemID   int64
	Body        *string
}

// NewNoteService builds the service.
func NewNoteService(deps NoteDependencies) *NoteService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		users:      deps.UserRepo,
		problems:   deps.ProblemRepo,
		notes:      deps.NoteRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListForUser returns the notes of userID keyed by problem id.
func (s *NoteService) ListForUser(ctx context.Context, callerEmail, userID string) (map[int64]string, error) {
	if _, err := s.owner(ctx, callerEmail, userID); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make(map[int64]string, len(notes))
	for _, n := range notes {
		out[n.ProblemID] = n.Body
	}
	return out, nil
}

// Save creates or replaces the caller's note on a problem.
func (s *NoteService) Save(ctx context.Context, in SaveNoteInput) (*domain.Note, error) {
	user, err := s.owner(ctx, in.CallerEmail, in.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.problems.GetByID(ctx, in.ProblemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("problem", map[string]any{"problem_id": in.ProblemID})
		}
		return nil, apperrors.MapError(err)
	}
	if in.Body == nil {
		return nil, apperrors.NewValidationError("missing 'note' field", nil)
	}
	if n := utf8.RuneCountInString(*in.Body); n > domain.MaxNoteLength {
		return nil, apperrors.NewValidationError("note too long", map[string]any{
			"max_length": domain.MaxNoteLength,
			"length":     n,
		})
	}

	note := &domain.Note{UserID: user.ID, ProblemID: in.ProblemID, Body: *in.Body}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventNoteSaved, user.ID, events.NoteSavedPayload{
		ProblemID: note.ProblemID,
		Length:    utf8.RuneCountInString(note.Body),
	}))
	return note, nil
}

// owner loads userID and checks that it belongs to the caller.
func (s *NoteService) owner(ctx context.Context, callerEmail, userID string) (*domain.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if callerEmail == "" || user.Email != callerEmail {
		return nil, apperrors.NewForbidden("notes belong to another user")
	}
	return user, nil
}
