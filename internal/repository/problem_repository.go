package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coaching-service/internal/domain"
)

// ProblemFlag names a boolean progress flag on a problem.
type ProblemFlag string

const (
	FlagSolved  ProblemFlag = "solved"
	FlagStarred ProblemFlag = "starred"
)

// ProblemRepository handles persistence for the problem catalog.
type ProblemRepository interface {
	Create(ctx context.Context, problem *domain.Problem) error
	GetByID(ctx context.Context, id int64) (*domain.Problem, error)
	List(ctx context.Context) ([]domain.Problem, error)
	Toggle(ctx context.Context, id int64, flag ProblemFlag) (*domain.Problem, error)
	Count(ctx context.Context) (int64, error)
}

type problemRepository struct {
	pool *pgxpool.Pool
}

// NewProblemRepository instantiates the repository.
func NewProblemRepository(pool *pgxpool.Pool) ProblemRepository {
	return &problemRepository{pool: pool}
}

const problemColumns = `id, title, topic, leetcode_url, neetcode_url, difficulty, is_solved, is_starred`

func (r *problemRepository) Create(ctx context.Context, problem *domain.Problem) error {
	const query = `
        INSERT INTO problems (title, topic, leetcode_url, neetcode_url, difficulty, is_solved, is_starred)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		problem.Title,
		problem.Topic,
		problem.LeetcodeURL,
		problem.NeetCodeURL,
		problem.Difficulty,
		problem.Solved,
		problem.Starred,
	).Scan(&problem.ID)
	return mapPgError(err)
}

func (r *problemRepository) GetByID(ctx context.Context, id int64) (*domain.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id=$1`
	return scanProblem(r.pool.QueryRow(ctx, query, id))
}

func (r *problemRepository) List(ctx context.Context) ([]domain.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []domain.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, *p)
	}
	return problems, rows.Err()
}

// Toggle flips the flag in a single statement so concurrent toggles never lose an update.
func (r *problemRepository) Toggle(ctx context.Context, id int64, flag ProblemFlag) (*domain.Problem, error) {
	var query string
	switch flag {
	case FlagSolved:
		query = `UPDATE problems SET is_solved = NOT is_solved WHERE id=$1 RETURNING ` + problemColumns
	case FlagStarred:
		query = `UPDATE problems SET is_starred = NOT is_starred WHERE id=$1 RETURNING ` + problemColumns
	default:
		return nil, ErrUnknownFlag
	}
	return scanProblem(r.pool.QueryRow(ctx, query, id))
}

func (r *problemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM problems`).Scan(&n)
	return n, err
}

func scanProblem(row pgx.Row) (*domain.Problem, error) {
	var p domain.Problem
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Topic,
		&p.LeetcodeURL,
		&p.NeetCodeURL,
		&p.Difficulty,
		&p.Solved,
		&p.Starred,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &p, nil
}
