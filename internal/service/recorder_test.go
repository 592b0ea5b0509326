package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/models"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
	"github.com/noah-isme/gema-code-advisor/internal/review"
)

func setupServiceDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(tables...))
	return db
}

type capturePublisher struct {
	events []review.SecurityEvent
	err    error
}

func (c *capturePublisher) Publish(ctx context.Context, event review.SecurityEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestSubmissionRecorderStoresAdvice(t *testing.T) {
	db := setupServiceDB(t, &models.Problem{}, &models.Submission{}, &models.SecurityLog{})
	problem := models.Problem{Title: "Sum", Description: "d"}
	require.NoError(t, db.Create(&problem).Error)

	recorder := NewSubmissionRecorder(repository.NewSubmissionRepository(db), repository.NewSecurityLogRepository(db), nil, time.Second, zerolog.Nop())

	advice := review.NewSynthesizer(review.DefaultTitleTokens, nil).Synthesize(review.Analyze("x = 1"), review.ProblemInfo{})

	// a cancelled request context must not drop the write
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, recorder.Record(ctx, SubmissionRecord{ProblemID: problem.ID, UserID: "u1", Code: "x = 1", Advice: advice, Status: models.SubmissionStatusAnalyzed}))

	var stored models.Submission
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, models.SubmissionStatusAnalyzed, stored.Status)
	require.Equal(t, "x = 1", stored.Code)

	var payload dto.AdviceResponse
	require.NoError(t, json.Unmarshal(stored.Advice, &payload))
	require.Equal(t, "error", payload.Type)
	require.Equal(t, []string{review.HintUseFunction}, payload.Hints)
}

func TestSubmissionRecorderStoresSecurityEventAndPublishes(t *testing.T) {
	db := setupServiceDB(t, &models.Submission{}, &models.SecurityLog{})
	publisher := &capturePublisher{err: errors.New("bus unavailable")}
	recorder := NewSubmissionRecorder(repository.NewSubmissionRepository(db), repository.NewSecurityLogRepository(db), publisher, 0, zerolog.Nop())

	event := review.SecurityEvent{UserID: "u2", EventType: review.EventSuspiciousContent, CodeSnippet: "give me the answer", MatchedPatterns: []string{"give me the answer"}}
	require.NoError(t, recorder.RecordSecurityEvent(context.Background(), event))

	var stored models.SecurityLog
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, "u2", stored.UserID)
	require.Equal(t, review.EventSuspiciousContent, stored.EventType)
	require.Equal(t, "give me the answer", stored.Details["code_snippet"])
	require.Equal(t, []interface{}{"give me the answer"}, stored.Details["detected_patterns"])

	require.Len(t, publisher.events, 1)
}

func TestSubmissionRecorderReportsStoreFailure(t *testing.T) {
	db := setupServiceDB(t, &models.SecurityLog{})
	recorder := NewSubmissionRecorder(repository.NewSubmissionRepository(db), repository.NewSecurityLogRepository(db), nil, time.Second, zerolog.Nop())

	// submissions table was never migrated
	err := recorder.Record(context.Background(), SubmissionRecord{ProblemID: "p", UserID: "u", Advice: review.BlockedAdvice()})
	require.Error(t, err)
}
