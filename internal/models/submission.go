package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission statuses.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusAnalyzed = "analyzed"
	SubmissionStatusError    = "error"
)

// Submission is the stored record of an analysed code submission.
type Submission struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	ProblemID string         `gorm:"size:64;not null;index" json:"problem_id"`
	UserID    string         `gorm:"size:64;not null;index" json:"user_id"`
	Code      string         `gorm:"type:text" json:"code"`
	Advice    datatypes.JSON `json:"advice"`
	Status    string         `gorm:"size:32;not null" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	Problem   Problem        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not supply an identifier.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
