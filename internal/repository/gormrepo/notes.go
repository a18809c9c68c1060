package gormrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository returns a GORM-backed repository.NoteRepository.
func NewNoteRepository(db *gorm.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	var rows []noteRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("problem_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	notes := make([]domain.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, row.toDomain())
	}
	return notes, nil
}

func (r *noteRepository) Get(ctx context.Context, userID string, problemID int64) (*domain.Note, error) {
	var row noteRow
	err := r.db.WithContext(ctx).
		First(&row, "user_id = ? AND problem_id = ?", userID, problemID).Error
	if err != nil {
		return nil, mapError(err)
	}
	n := row.toDomain()
	return &n, nil
}

func (r *noteRepository) Upsert(ctx context.Context, note *domain.Note) error {
	now := time.Now().UTC()
	row := noteRow{
		ID:        uuid.NewString(),
		UserID:    note.UserID,
		ProblemID: note.ProblemID,
		Note:      note.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"note", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return mapError(err)
	}

	stored, err := r.Get(ctx, note.UserID, note.ProblemID)
	if err != nil {
		return err
	}
	*note = *stored
	return nil
}
