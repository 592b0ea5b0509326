package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/models"
)

// SecurityLogFilter narrows security log queries.
type SecurityLogFilter struct {
	UserID    string
	EventType string
	Page      int
	PageSize  int
}

// SecurityLogRepository persists security audit events.
type SecurityLogRepository interface {
	Create(ctx context.Context, entry *models.SecurityLog) error
	List(ctx context.Context, filter SecurityLogFilter) ([]models.SecurityLog, int64, error)
}

type securityLogRepository struct {
	db *gorm.DB
}

// NewSecurityLogRepository constructs the security log repository.
func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Create(ctx context.Context, entry *models.SecurityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *securityLogRepository) List(ctx context.Context, filter SecurityLogFilter) ([]models.SecurityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SecurityLog{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.PageSize)

	var entries []models.SecurityLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
