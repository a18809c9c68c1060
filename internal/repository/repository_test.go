package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coaching-service/internal/config"
	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/persistence"
)

// Postgres-backed tests run against POSTGRES_DSN and skip when it is unset or unreachable.
// The tables are truncated before each test.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 8}, zap.NewNop())
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(pg.Close)

	pool := pg.PoolHandle()
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE notes, problems, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func newProblem(title string) *domain.Problem {
	return &domain.Problem{
		Title:       title,
		Topic:       "Arrays & Hashing",
		LeetcodeURL: "https://leetcode.com/problems/" + title,
		Difficulty:  domain.DifficultyEasy,
	}
}

func TestUserRepository_Postgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(pool)

	alice := &domain.User{Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	byEmail, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = users.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	err = users.Create(ctx, &domain.User{Email: "alice@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrConflict)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestProblemRepository_Postgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	problems := NewProblemRepository(pool)

	for _, title := range []string{"two-sum", "valid-anagram", "group-anagrams"} {
		require.NoError(t, problems.Create(ctx, newProblem(title)))
	}
	assert.ErrorIs(t, problems.Create(ctx, newProblem("two-sum")), ErrConflict)

	list, err := problems.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID, "listing is ordered by id")
	}

	first := list[0].ID
	toggled, err := problems.Toggle(ctx, first, FlagSolved)
	require.NoError(t, err)
	assert.True(t, toggled.Solved)
	assert.False(t, toggled.Starred)

	toggled, err = problems.Toggle(ctx, first, FlagStarred)
	require.NoError(t, err)
	assert.True(t, toggled.Solved)
	assert.True(t, toggled.Starred)

	toggled, err = problems.Toggle(ctx, first, FlagSolved)
	require.NoError(t, err)
	assert.False(t, toggled.Solved)

	_, err = problems.Toggle(ctx, 9999, FlagSolved)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = problems.Toggle(ctx, first, ProblemFlag("archived"))
	assert.ErrorIs(t, err, ErrUnknownFlag)
	_, err = problems.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := problems.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestProblemRepository_ConcurrentTogglesDoNotLoseUpdates(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	problems := NewProblemRepository(pool)

	p := newProblem("two-sum")
	require.NoError(t, problems.Create(ctx, p))

	const toggles = 20
	var wg sync.WaitGroup
	wg.Add(toggles)
	for i := 0; i < toggles; i++ {
		go func() {
			defer wg.Done()
			_, err := problems.Toggle(ctx, p.ID, FlagStarred)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := problems.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Starred, "an even number of toggles leaves the flag unset")
}

func TestNoteRepository_Postgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	problems := NewProblemRepository(pool)
	notes := NewNoteRepository(pool)

	alice := &domain.User{Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, alice))
	first, second := newProblem("two-sum"), newProblem("valid-anagram")
	require.NoError(t, problems.Create(ctx, first))
	require.NoError(t, problems.Create(ctx, second))

	_, err := notes.Get(ctx, alice.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	created := &domain.Note{UserID: alice.ID, ProblemID: second.ID, Body: "sort both"}
	require.NoError(t, notes.Upsert(ctx, created))
	require.NoError(t, notes.Upsert(ctx, &domain.Note{UserID: alice.ID, ProblemID: first.ID, Body: "hash map"}))

	updated := &domain.Note{UserID: alice.ID, ProblemID: second.ID, Body: "count letters"}
	require.NoError(t, notes.Upsert(ctx, updated))
	assert.Equal(t, created.ID, updated.ID, "upsert keeps one row per user and problem")
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	got, err := notes.Get(ctx, alice.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "count letters", got.Body)

	list, err := notes.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ProblemID)
	assert.Equal(t, second.ID, list[1].ProblemID)

	empty, err := notes.ListByUser(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, empty)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id=$1`, alice.ID).Scan(&count))
	assert.Equal(t, 2, count)
}
