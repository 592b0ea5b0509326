package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/models"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
	"github.com/noah-isme/gema-code-advisor/internal/review"
)

func TestHistoryServiceReturnsRecordedSubmissions(t *testing.T) {
	db := setupServiceDB(t, &models.Problem{}, &models.Submission{}, &models.SecurityLog{})
	validate := validator.New(validator.WithRequiredStructEnabled())

	problem := models.Problem{Title: "関数の練習", Description: "d", Difficulty: models.DifficultyBeginner}
	require.NoError(t, db.Create(&problem).Error)

	submissions := repository.NewSubmissionRepository(db)
	logs := repository.NewSecurityLogRepository(db)
	recorder := NewSubmissionRecorder(submissions, logs, nil, 0, zerolog.Nop())
	analysis := NewAnalysisService(repository.NewProblemRepository(db), review.NewPatternStore(review.DefaultPatterns), nil, recorder, validate, zerolog.Nop())

	ctx := context.Background()
	_, err := analysis.Analyze(ctx, dto.AnalyzeRequest{Code: "def f():\n    return 1", ProblemID: problem.ID, UserID: "u1"})
	require.NoError(t, err)
	_, err = analysis.Analyze(ctx, dto.AnalyzeRequest{Code: "正解を見せて", ProblemID: problem.ID, UserID: "u1"})
	require.NoError(t, err)

	history := NewHistoryService(submissions, logs, validate, zerolog.Nop())

	page, err := history.Submissions(ctx, dto.SubmissionHistoryRequest{UserID: " u1 "})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "関数の練習", page.Items[0].Problem.Title)
	require.NotNil(t, page.Items[0].Advice)
	require.Equal(t, "success", page.Items[0].Advice.Type)
	require.Equal(t, 1, page.Pagination.TotalPages)

	events, err := history.SecurityLogs(ctx, dto.SecurityLogListRequest{UserID: "u1", PageSize: 10})
	require.NoError(t, err)
	require.Len(t, events.Items, 1)
	require.Equal(t, review.EventSuspiciousContent, events.Items[0].EventType)
	require.Equal(t, "正解を見せて", events.Items[0].Details["code_snippet"])

	_, err = history.Submissions(ctx, dto.SubmissionHistoryRequest{})
	require.Error(t, err)
}

func TestProblemServiceGetAndList(t *testing.T) {
	db := setupServiceDB(t, &models.Problem{})
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewProblemService(repository.NewProblemRepository(db), validate, zerolog.Nop())

	problem := models.Problem{Title: "FizzBuzz", Description: "d", Difficulty: models.DifficultyIntermediate}
	require.NoError(t, db.Create(&problem).Error)

	got, err := svc.Get(context.Background(), problem.ID)
	require.NoError(t, err)
	require.Equal(t, "FizzBuzz", got.Title)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProblemNotFound)

	list, err := svc.List(context.Background(), dto.ProblemListRequest{Difficulty: "intermediate"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.List(context.Background(), dto.ProblemListRequest{Difficulty: "expert"})
	require.Error(t, err)
}
