package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository returns a GORM-backed repository.ProblemRepository.
func NewProblemRepository(db *gorm.DB) repository.ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) Create(ctx context.Context, problem *domain.Problem) error {
	row := problemRow{
		Title:       problem.Title,
		Topic:       problem.Topic,
		LeetcodeURL: problem.LeetcodeURL,
		NeetCodeURL: problem.NeetCodeURL,
		Difficulty:  string(problem.Difficulty),
		IsSolved:    problem.Solved,
		IsStarred:   problem.Starred,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapError(err)
	}
	problem.ID = row.ID
	return nil
}

func (r *problemRepository) GetByID(ctx context.Context, id int64) (*domain.Problem, error) {
	var row problemRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *problemRepository) List(ctx context.Context) ([]domain.Problem, error) {
	var rows []problemRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	problems := make([]domain.Problem, 0, len(rows))
	for _, row := range rows {
		problems = append(problems, row.toDomain())
	}
	return problems, nil
}

func (r *problemRepository) Toggle(ctx context.Context, id int64, flag repository.ProblemFlag) (*domain.Problem, error) {
	var column string
	switch flag {
	case repository.FlagSolved:
		column = "is_solved"
	case repository.FlagStarred:
		column = "is_starred"
	default:
		return nil, repository.ErrUnknownFlag
	}

	var row problemRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&problemRow{}).Where("id = ?", id).
			Update(column, gorm.Expr("NOT "+column))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&row, "id = ?", id).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *problemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&problemRow{}).Count(&n).Error
	return n, err
}
