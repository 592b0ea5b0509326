package dto

import (
	"time"

	"github.com/noah-isme/gema-code-advisor/internal/models"
)

// PaginationMeta captures pagination information for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// PatternRequest adds or removes a cheat-intent phrase.
type PatternRequest struct {
	Pattern string `json:"pattern" validate:"required,min=1,max=255"`
}

// PatternListResponse describes the active pattern set.
type PatternListResponse struct {
	Version  uint64   `json:"version"`
	Patterns []string `json:"patterns"`
}

// SecurityLogListRequest filters the security log listing.
type SecurityLogListRequest struct {
	UserID    string `validate:"omitempty,max=64"`
	EventType string `validate:"omitempty,max=64"`
	Page      int    `validate:"gte=0"`
	PageSize  int    `validate:"gte=0,lte=100"`
}

// SecurityLogResponse describes a stored security event.
type SecurityLogResponse struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	EventType string                 `json:"event_type"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

// SecurityLogListResponse is a page of security events.
type SecurityLogListResponse struct {
	Items      []SecurityLogResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewSecurityLogResponse converts a SecurityLog model into a DTO.
func NewSecurityLogResponse(entry models.SecurityLog) SecurityLogResponse {
	details := map[string]interface{}(nil)
	if entry.Details != nil {
		details = map[string]interface{}(entry.Details)
	}

	return SecurityLogResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		EventType: entry.EventType,
		Details:   details,
		CreatedAt: entry.CreatedAt,
	}
}
