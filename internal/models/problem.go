package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Problem difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Problem is an exercise in the catalog. The advisor only reads problems.
type Problem struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	Difficulty    string    `gorm:"size:32;not null;default:beginner" json:"difficulty"`
	ExampleInput  string    `gorm:"type:text" json:"example_input"`
	ExampleOutput string    `gorm:"type:text" json:"example_output"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply an identifier.
func (p *Problem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
