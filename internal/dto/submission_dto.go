package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/gema-code-advisor/internal/models"
)

// SubmissionHistoryRequest selects a user's submission history.
type SubmissionHistoryRequest struct {
	UserID   string `validate:"required,max=64"`
	Page     int    `validate:"gte=0"`
	PageSize int    `validate:"gte=0,lte=100"`
}

// SubmissionProblemSummary is the problem excerpt shown alongside a submission.
type SubmissionProblemSummary struct {
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
}

// SubmissionResponse describes a stored submission.
type SubmissionResponse struct {
	ID        string                   `json:"id"`
	ProblemID string                   `json:"problem_id"`
	UserID    string                   `json:"user_id"`
	Code      string                   `json:"code"`
	Status    string                   `json:"status"`
	Advice    *AdviceResponse          `json:"advice,omitempty"`
	Problem   SubmissionProblemSummary `json:"problem"`
	CreatedAt time.Time                `json:"created_at"`
}

// SubmissionHistoryResponse is a page of submissions.
type SubmissionHistoryResponse struct {
	Items      []SubmissionResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:        submission.ID,
		ProblemID: submission.ProblemID,
		UserID:    submission.UserID,
		Code:      submission.Code,
		Status:    submission.Status,
		Problem: SubmissionProblemSummary{
			Title:      submission.Problem.Title,
			Difficulty: submission.Problem.Difficulty,
		},
		CreatedAt: submission.CreatedAt,
	}

	if len(submission.Advice) > 0 {
		var advice AdviceResponse
		if err := json.Unmarshal(submission.Advice, &advice); err == nil {
			response.Advice = &advice
		}
	}

	return response
}
