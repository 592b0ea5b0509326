package dto

import "github.com/noah-isme/gema-code-advisor/internal/review"

// AnalyzeRequest is the payload accepted by the analyze endpoint.
type AnalyzeRequest struct {
	Code      string `json:"code"`
	ProblemID string `json:"problemId" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=64"`
}

// AdviceResponse is the wire form of review.Advice.
type AdviceResponse struct {
	Type               string   `json:"type"`
	Message            string   `json:"message"`
	Hints              []string `json:"hints"`
	Encouragement      string   `json:"encouragement"`
	AdditionalPractice []string `json:"additionalPractice,omitempty"`
}

// AnalyzeResponse wraps the advice returned to the caller.
type AnalyzeResponse struct {
	Advice AdviceResponse `json:"advice"`
}

// ErrorResponse is the error body used by the analyze endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewAdviceResponse converts advice into its wire form.
func NewAdviceResponse(advice review.Advice) AdviceResponse {
	hints := advice.Hints
	if hints == nil {
		hints = []string{}
	}

	return AdviceResponse{
		Type:               advice.Severity.String(),
		Message:            advice.Message,
		Hints:              hints,
		Encouragement:      advice.Encouragement,
		AdditionalPractice: advice.AdditionalPractice,
	}
}
