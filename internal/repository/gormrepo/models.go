// Package gormrepo implements the repositories on top of GORM for the embedded SQLite store.
package gormrepo

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

type userRow struct {
	ID           string `gorm:"primaryKey;type:text"`
	Email        string `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (u *userRow) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type problemRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"uniqueIndex;not null"`
	Topic       string `gorm:"not null"`
	LeetcodeURL string `gorm:"column:leetcode_url;not null"`
	NeetCodeURL string `gorm:"column:neetcode_url;not null;default:''"`
	Difficulty  string `gorm:"not null"`
	IsSolved    bool   `gorm:"not null;default:false"`
	IsStarred   bool   `gorm:"not null;default:false"`
}

func (problemRow) TableName() string { return "problems" }

func (p problemRow) toDomain() domain.Problem {
	return domain.Problem{
		ID:          p.ID,
		Title:       p.Title,
		Topic:       p.Topic,
		LeetcodeURL: p.LeetcodeURL,
		NeetCodeURL: p.NeetCodeURL,
		Difficulty:  domain.Difficulty(p.Difficulty),
		Solved:      p.IsSolved,
		Starred:     p.IsStarred,
	}
}

type noteRow struct {
	ID        string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"not null;uniqueIndex:idx_notes_user_problem"`
	ProblemID int64  `gorm:"not null;uniqueIndex:idx_notes_user_problem"`
	Note      string `gorm:"not null;size:2000"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (noteRow) TableName() string { return "notes" }

func (n noteRow) toDomain() domain.Note {
	return domain.Note{
		ID:        n.ID,
		UserID:    n.UserID,
		ProblemID: n.ProblemID,
		Body:      n.Note,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// AutoMigrate creates or updates the tables used by the repositories.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &problemRow{}, &noteRow{})
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrConflict
	default:
		return err
	}
}
