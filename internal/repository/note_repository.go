package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coaching-service/internal/domain"
)

// NoteRepository manages per-user problem notes.
type NoteRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Note, error)
	Get(ctx context.Context, userID string, problemID int64) (*domain.Note, error)
	Upsert(ctx context.Context, note *domain.Note) error
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository constructs repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	const query = `
        SELECT id, user_id, problem_id, note, created_at, updated_at
        FROM notes WHERE user_id=$1 ORDER BY problem_id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.ProblemID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Get(ctx context.Context, userID string, problemID int64) (*domain.Note, error) {
	const query = `
        SELECT id, user_id, problem_id, note, created_at, updated_at
        FROM notes WHERE user_id=$1 AND problem_id=$2`
	var n domain.Note
	if err := r.pool.QueryRow(ctx, query, userID, problemID).Scan(
		&n.ID, &n.UserID, &n.ProblemID, &n.Body, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &n, nil
}

func (r *noteRepository) Upsert(ctx context.Context, note *domain.Note) error {
	const query = `
        INSERT INTO notes (user_id, problem_id, note)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, problem_id)
        DO UPDATE SET note=EXCLUDED.note, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, note.UserID, note.ProblemID, note.Body).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	return mapPgError(err)
}
