package gormrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func createProblem(t *testing.T, repo repository.ProblemRepository, title string) *domain.Problem {
	t.Helper()
	p := &domain.Problem{
		Title:       title,
		Topic:       "Arrays",
		LeetcodeURL: "https://leetcode.com/problems/" + title,
		Difficulty:  domain.DifficultyEasy,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	user := &domain.User{Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Create(ctx, &domain.User{Email: "alice@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestProblemRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	repo := NewProblemRepository(setupTestDB(t))
	p := createProblem(t, repo, "two-sum")

	solved, err := repo.Toggle(ctx, p.ID, repository.FlagSolved)
	require.NoError(t, err)
	assert.True(t, solved.Solved)
	assert.False(t, solved.Starred)

	starred, err := repo.Toggle(ctx, p.ID, repository.FlagStarred)
	require.NoError(t, err)
	assert.True(t, starred.Solved)
	assert.True(t, starred.Starred)

	again, err := repo.Toggle(ctx, p.ID, repository.FlagSolved)
	require.NoError(t, err)
	assert.False(t, again.Solved)

	_, err = repo.Toggle(ctx, p.ID+100, repository.FlagSolved)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Toggle(ctx, p.ID, repository.ProblemFlag("archived"))
	assert.ErrorIs(t, err, repository.ErrUnknownFlag)
}

func TestProblemRepository_ListOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewProblemRepository(setupTestDB(t))
	first := createProblem(t, repo, "a")
	second := createProblem(t, repo, "b")

	problems, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, first.ID, problems[0].ID)
	assert.Equal(t, second.ID, problems[1].ID)
	assert.Equal(t, domain.DifficultyEasy, problems[0].Difficulty)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
}

func TestNoteRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	notes := NewNoteRepository(db)
	p := createProblem(t, NewProblemRepository(db), "move-zeroes")

	note := &domain.Note{UserID: "user-1", ProblemID: p.ID, Body: "two pointers"}
	require.NoError(t, notes.Upsert(ctx, note))
	firstID := note.ID
	assert.NotEmpty(t, firstID)

	update := &domain.Note{UserID: "user-1", ProblemID: p.ID, Body: "swap non-zero forward"}
	require.NoError(t, notes.Upsert(ctx, update))
	assert.Equal(t, firstID, update.ID, "upsert keeps one note per user and problem")
	assert.Equal(t, "swap non-zero forward", update.Body)

	list, err := notes.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "swap non-zero forward", list[0].Body)

	other, err := notes.ListByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = notes.Get(ctx, "user-2", p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
