package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/models"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
	"github.com/noah-isme/gema-code-advisor/internal/review"
)

const defaultRecorderTimeout = 3 * time.Second

// SubmissionRecord is an analysed submission ready to be stored.
type SubmissionRecord struct {
	ProblemID string
	UserID    string
	Code      string
	Advice    review.Advice
	Status    string
}

// Recorder persists analysis outcomes and security events.
type Recorder interface {
	Record(ctx context.Context, record SubmissionRecord) error
	RecordSecurityEvent(ctx context.Context, event review.SecurityEvent) error
}

type submissionRecorder struct {
	submissions repository.SubmissionRepository
	logs        repository.SecurityLogRepository
	publisher   SecurityEventPublisher
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewSubmissionRecorder builds a recorder backed by the submission and security log repositories.
// The publisher is optional.
func NewSubmissionRecorder(submissions repository.SubmissionRepository, logs repository.SecurityLogRepository, publisher SecurityEventPublisher, timeout time.Duration, logger zerolog.Logger) Recorder {
	if timeout <= 0 {
		timeout = defaultRecorderTimeout
	}
	return &submissionRecorder{
		submissions: submissions,
		logs:        logs,
		publisher:   publisher,
		timeout:     timeout,
		logger:      logger.With().Str("component", "submission_recorder").Logger(),
	}
}

func (r *submissionRecorder) Record(ctx context.Context, record SubmissionRecord) error {
	ctx, cancel := r.detach(ctx)
	defer cancel()

	payload, err := json.Marshal(dto.NewAdviceResponse(record.Advice))
	if err != nil {
		return fmt.Errorf("encode advice: %w", err)
	}

	status := record.Status
	if status == "" {
		status = models.SubmissionStatusAnalyzed
	}

	submission := models.Submission{
		ProblemID: record.ProblemID,
		UserID:    record.UserID,
		Code:      record.Code,
		Advice:    datatypes.JSON(payload),
		Status:    status,
	}
	if err := r.submissions.Create(ctx, &submission); err != nil {
		return fmt.Errorf("store submission: %w", err)
	}

	return nil
}

func (r *submissionRecorder) RecordSecurityEvent(ctx context.Context, event review.SecurityEvent) error {
	ctx, cancel := r.detach(ctx)
	defer cancel()

	patterns := make([]interface{}, 0, len(event.MatchedPatterns))
	for _, pattern := range event.MatchedPatterns {
		patterns = append(patterns, pattern)
	}

	entry := models.SecurityLog{
		UserID:    event.UserID,
		EventType: event.EventType,
		Details: datatypes.JSONMap{
			"code_snippet":      event.CodeSnippet,
			"detected_patterns": patterns,
		},
	}
	if err := r.logs.Create(ctx, &entry); err != nil {
		return fmt.Errorf("store security event: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Warn().Err(err).Str("user_id", event.UserID).Msg("failed to publish security event")
		}
	}

	return nil
}

// detach keeps writes alive after the caller's request context is cancelled.
func (r *submissionRecorder) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
}
