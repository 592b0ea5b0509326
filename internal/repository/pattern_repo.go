package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/models"
)

// PatternRepository persists cheat-intent phrases.
type PatternRepository interface {
	List(ctx context.Context) ([]models.SuspiciousPattern, error)
	Create(ctx context.Context, pattern *models.SuspiciousPattern) error
	// DeleteByPattern removes the phrase regardless of letter case.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewPatternRepository constructs a pattern repository.
func NewPatternRepository(db *gorm.DB) PatternRepository {
	return &patternRepository{db: db}
}

type patternRepository struct {
	db *gorm.DB
}

func (r *patternRepository) List(ctx context.Context) ([]models.SuspiciousPattern, error) {
	var patterns []models.SuspiciousPattern
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&patterns).Error; err != nil {
		return nil, err
	}
	return patterns, nil
}

func (r *patternRepository) Create(ctx context.Context, pattern *models.SuspiciousPattern) error {
	return r.db.WithContext(ctx).Create(pattern).Error
}

func (r *patternRepository) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	result := r.db.WithContext(ctx).Where("pattern_key = ?", models.PatternKey(pattern)).Delete(&models.SuspiciousPattern{})
	return result.RowsAffected, result.Error
}

func (r *patternRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.SuspiciousPattern{}).Count(&total).Error
	return total, err
}
