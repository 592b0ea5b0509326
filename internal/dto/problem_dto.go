package dto

import (
	"time"

	"github.com/noah-isme/gema-code-advisor/internal/models"
)

// ProblemListRequest filters the catalog listing.
type ProblemListRequest struct {
	Difficulty string `validate:"omitempty,oneof=beginner intermediate advanced"`
}

// ProblemResponse describes a catalog problem.
type ProblemResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Difficulty    string    `json:"difficulty"`
	ExampleInput  string    `json:"example_input"`
	ExampleOutput string    `json:"example_output"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProblemResponse converts a Problem model into a DTO.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	return ProblemResponse{
		ID:            problem.ID,
		Title:         problem.Title,
		Description:   problem.Description,
		Difficulty:    problem.Difficulty,
		ExampleInput:  problem.ExampleInput,
		ExampleOutput: problem.ExampleOutput,
		CreatedAt:     problem.CreatedAt,
	}
}
