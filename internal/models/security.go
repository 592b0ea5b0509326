package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityLog is an append-only audit entry for screening events.
type SecurityLog struct {
	ID           string            `gorm:"primaryKey;size:64" json:"id"`
	UserID       string            `gorm:"size:64;index" json:"user_id"`
	SubmissionID *string           `gorm:"size:64" json:"submission_id"`
	EventType    string            `gorm:"size:64;not null" json:"event_type"`
	Details      datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt    time.Time         `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply an identifier.
func (l *SecurityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// SuspiciousPattern is a persisted cheat-intent phrase. PatternKey is the case-folded
// phrase and carries the unique index, so "Foo" and "foo" cannot both be stored.
type SuspiciousPattern struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Pattern    string    `gorm:"size:255;not null" json:"pattern"`
	PatternKey string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	CreatedBy  string    `gorm:"size:64" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// PatternKey folds a phrase the same way screening compares it.
func PatternKey(pattern string) string {
	return strings.ToLower(strings.TrimSpace(pattern))
}

// BeforeSave keeps the folded key in step with the phrase.
func (p *SuspiciousPattern) BeforeSave(tx *gorm.DB) error {
	p.PatternKey = PatternKey(p.Pattern)
	return nil
}
