package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/coaching-service/internal/auth"
	"github.com/spec-kit/coaching-service/internal/config"
	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/events"
	"github.com/spec-kit/coaching-service/internal/persistence"
	"github.com/spec-kit/coaching-service/internal/repository"
	"github.com/spec-kit/coaching-service/internal/repository/gormrepo"
	apperrors "github.com/spec-kit/coaching-service/pkg/util/errorutil"
)

const testSecret = "service-test-secret-0123456789abcdef"

type fixture struct {
	users      repository.UserRepository
	problems   repository.ProblemRepository
	notes      repository.NoteRepository
	tokens     *auth.TokenManager
	recorder   *activityCounter
	authSvc    *AuthService
	problemSvc *ProblemService
	noteSvc    *NoteService
}

type activityCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (a *activityCounter) RecordActivity(eventType string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.counts == nil {
		a.counts = map[string]int{}
	}
	a.counts[eventType]++
}

func (a *activityCounter) count(eventType events.EventType) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[string(eventType)]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := persistence.NewSQLite(config.StorageConfig{
		Driver:     config.StorageDriverSQLite,
		SQLitePath: ":memory:",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, gormrepo.AutoMigrate(store.DB))

	dispatcher := events.NewInMemoryDispatcher()
	recorder := &activityCounter{}
	NewActivityService(dispatcher, zap.NewNop(), recorder).RegisterHandlers()

	f := &fixture{
		users:    gormrepo.NewUserRepository(store.DB),
		problems: gormrepo.NewProblemRepository(store.DB),
		notes:    gormrepo.NewNoteRepository(store.DB),
		tokens:   auth.NewTokenManager(testSecret, time.Minute),
		recorder: recorder,
	}
	f.authSvc = NewAuthService(AuthDependencies{
		UserRepo:     f.users,
		TokenManager: f.tokens,
		BcryptCost:   bcrypt.MinCost,
		Dispatcher:   dispatcher,
	})
	f.problemSvc = NewProblemService(f.problems, dispatcher, nil)
	f.noteSvc = NewNoteService(NoteDependencies{
		UserRepo:    f.users,
		ProblemRepo: f.problems,
		NoteRepo:    f.notes,
		Dispatcher:  dispatcher,
	})
	return f
}

func (f *fixture) problem(t *testing.T, title string) *domain.Problem {
	t.Helper()
	p := &domain.Problem{Title: title, Topic: "Arrays", Difficulty: domain.DifficultyMedium}
	require.NoError(t, f.problems.Create(context.Background(), p))
	return p
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T", err)
	assert.Equal(t, status, de.HTTPStatus)
}

func strPtr(s string) *string { return &s }

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.authSvc.Register(ctx, "  Alice@Example.com ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.User.ID)

	subject, err := f.tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	loggedIn, err := f.authSvc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.True(t, loggedIn.ExpiresAt.After(time.Now()))

	assert.Equal(t, 1, f.recorder.count(events.EventUserRegistered))
	assert.Equal(t, 1, f.recorder.count(events.EventUserLoggedIn))
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.authSvc.Register(ctx, "bob@example.com", "password2")
	require.NoError(t, err)

	_, err = f.authSvc.Register(ctx, "BOB@example.com", "other")
	requireStatus(t, err, http.StatusConflict)
}

func TestAuthService_LoginFailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.authSvc.Register(ctx, "carol@example.com", "password3")
	require.NoError(t, err)

	_, wrongPassword := f.authSvc.Login(ctx, "carol@example.com", "nope")
	_, unknownEmail := f.authSvc.Login(ctx, "nobody@example.com", "password3")

	requireStatus(t, wrongPassword, http.StatusUnauthorized)
	requireStatus(t, unknownEmail, http.StatusUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = f.authSvc.Login(ctx, "", "")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestProblemService_Toggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, "Two Sum")

	solved, err := f.problemSvc.ToggleSolved(ctx, "u-1", p.ID)
	require.NoError(t, err)
	assert.True(t, solved.Solved)

	starred, err := f.problemSvc.ToggleStarred(ctx, "u-1", p.ID)
	require.NoError(t, err)
	assert.True(t, starred.Starred)

	unsolved, err := f.problemSvc.ToggleSolved(ctx, "u-1", p.ID)
	require.NoError(t, err)
	assert.False(t, unsolved.Solved)

	list, err := f.problemSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Solved)
	assert.True(t, list[0].Starred)

	_, err = f.problemSvc.ToggleStarred(ctx, "u-1", p.ID+1)
	requireStatus(t, err, http.StatusNotFound)

	assert.Equal(t, 2, f.recorder.count(events.EventProblemSolvedToggled))
	assert.Equal(t, 1, f.recorder.count(events.EventProblemStarredToggled))
}

func TestNoteService_SaveAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.authSvc.Register(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	p := f.problem(t, "Valid Anagram")

	_, err = f.noteSvc.Save(ctx, SaveNoteInput{
		CallerEmail: "alice@example.com",
		UserID:      alice.User.ID,
		ProblemID:   p.ID,
		Body:        strPtr("count letters"),
	})
	require.NoError(t, err)
	_, err = f.noteSvc.Save(ctx, SaveNoteInput{
		CallerEmail: "alice@example.com",
		UserID:      alice.User.ID,
		ProblemID:   p.ID,
		Body:        strPtr("sort and compare"),
	})
	require.NoError(t, err)

	notes, err := f.noteSvc.ListForUser(ctx, "alice@example.com", alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{p.ID: "sort and compare"}, notes)
	assert.Equal(t, 2, f.recorder.count(events.EventNoteSaved))
}

func TestNoteService_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, err := f.authSvc.Register(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	p := f.problem(t, "Group Anagrams")

	save := func(in SaveNoteInput) error {
		_, err := f.noteSvc.Save(ctx, in)
		return err
	}

	t.Run("other caller", func(t *testing.T) {
		_, err := f.noteSvc.ListForUser(ctx, "bob@example.com", alice.User.ID)
		requireStatus(t, err, http.StatusForbidden)
		requireStatus(t, save(SaveNoteInput{CallerEmail: "bob@example.com", UserID: alice.User.ID, ProblemID: p.ID, Body: strPtr("x")}), http.StatusForbidden)
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := f.noteSvc.ListForUser(ctx, "alice@example.com", "00000000-0000-0000-0000-000000000000")
		requireStatus(t, err, http.StatusNotFound)
		_, err = f.noteSvc.ListForUser(ctx, "alice@example.com", "42")
		requireStatus(t, err, http.StatusNotFound)
	})
	t.Run("unknown problem", func(t *testing.T) {
		requireStatus(t, save(SaveNoteInput{CallerEmail: "alice@example.com", UserID: alice.User.ID, ProblemID: p.ID + 9, Body: strPtr("x")}), http.StatusNotFound)
	})
	t.Run("missing body", func(t *testing.T) {
		requireStatus(t, save(SaveNoteInput{CallerEmail: "alice@example.com", UserID: alice.User.ID, ProblemID: p.ID}), http.StatusBadRequest)
	})
	t.Run("too long", func(t *testing.T) {
		long := strings.Repeat("é", domain.MaxNoteLength+1)
		requireStatus(t, save(SaveNoteInput{CallerEmail: "alice@example.com", UserID: alice.User.ID, ProblemID: p.ID, Body: &long}), http.StatusBadRequest)
	})
	t.Run("at limit", func(t *testing.T) {
		limit := strings.Repeat("é", domain.MaxNoteLength)
		assert.NoError(t, save(SaveNoteInput{CallerEmail: "alice@example.com", UserID: alice.User.ID, ProblemID: p.ID, Body: &limit}))
	})
}

func TestPublish_SubscriberErrorDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventUserRegistered, func(context.Context, events.Event) error {
		return errors.New("sink down")
	})
	svc := NewAuthService(AuthDependencies{
		UserRepo:     f.users,
		TokenManager: f.tokens,
		BcryptCost:   bcrypt.MinCost,
		Dispatcher:   dispatcher,
	})

	_, err := svc.Register(context.Background(), "dave@example.com", "password4")
	assert.NoError(t, err)
}
