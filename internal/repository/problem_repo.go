package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/models"
)

// ProblemQuery filters the problem catalog.
type ProblemQuery struct {
	Difficulty string
}

// ProblemRepository exposes read access to the problem catalog.
type ProblemRepository interface {
	GetByID(ctx context.Context, id string) (models.Problem, error)
	List(ctx context.Context, query ProblemQuery) ([]models.Problem, error)
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) GetByID(ctx context.Context, id string) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&problem).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) List(ctx context.Context, query ProblemQuery) ([]models.Problem, error) {
	db := r.db.WithContext(ctx).Model(&models.Problem{})

	if query.Difficulty != "" {
		db = db.Where("LOWER(difficulty) = ?", strings.ToLower(query.Difficulty))
	}

	var problems []models.Problem
	if err := db.Order("created_at ASC").Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}
