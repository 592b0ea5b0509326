package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/models"
	"github.com/noah-isme/gema-code-advisor/internal/observability"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
	"github.com/noah-isme/gema-code-advisor/internal/review"
)

// ErrProblemNotFound indicates the requested problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// AnalysisService runs the screening and feedback pipeline for a submission.
type AnalysisService interface {
	Analyze(ctx context.Context, payload dto.AnalyzeRequest) (dto.AdviceResponse, error)
}

type analysisService struct {
	problems    repository.ProblemRepository
	patterns    PatternSource
	synthesizer *review.Synthesizer
	recorder    Recorder
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAnalysisService constructs the analysis pipeline.
func NewAnalysisService(problems repository.ProblemRepository, patterns PatternSource, synthesizer *review.Synthesizer, recorder Recorder, validate *validator.Validate, logger zerolog.Logger) AnalysisService {
	if synthesizer == nil {
		synthesizer = review.NewSynthesizer(review.DefaultTitleTokens, nil)
	}
	return &analysisService{
		problems:    problems,
		patterns:    patterns,
		synthesizer: synthesizer,
		recorder:    recorder,
		validator:   validate,
		logger:      logger.With().Str("component", "analysis_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-code-advisor/internal/service/analysis"),
	}
}

func (s *analysisService) Analyze(ctx context.Context, payload dto.AnalyzeRequest) (dto.AdviceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdviceResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "analysis.analyze", trace.WithAttributes(
		attribute.String("analysis.problem_id", payload.ProblemID),
	))
	defer span.End()

	patterns := s.patterns.Snapshot()
	screen := review.Screen(patterns, payload.Code, payload.UserID)
	if screen.Blocked {
		span.SetAttributes(attribute.Bool("analysis.blocked", true), attribute.Int64("analysis.pattern_version", int64(patterns.Version)))
		observability.SecurityBlocks().Inc()
		s.logger.Warn().
			Str("user_id", payload.UserID).
			Strs("patterns", screen.Event.MatchedPatterns).
			Msg("submission blocked by cheat-intent filter")

		if err := s.recorder.RecordSecurityEvent(spanCtx, *screen.Event); err != nil {
			observability.RecorderFailures().WithLabelValues("security_event").Inc()
			s.logger.Error().Err(err).Str("user_id", payload.UserID).Msg("failed to record security event")
		}
		return dto.NewAdviceResponse(review.BlockedAdvice()), nil
	}

	problem, err := s.problems.GetByID(spanCtx, payload.ProblemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdviceResponse{}, ErrProblemNotFound
		}
		span.RecordError(err)
		return dto.AdviceResponse{}, err
	}

	findings := review.Analyze(payload.Code)
	advice := s.synthesizer.Synthesize(findings, review.ProblemInfo{
		ID:         problem.ID,
		Title:      problem.Title,
		Difficulty: problem.Difficulty,
	})

	span.SetAttributes(attribute.String("analysis.severity", advice.Severity.String()))
	observability.Analyses().WithLabelValues(advice.Severity.String()).Inc()
	s.logger.Debug().
		Str("problem_id", problem.ID).
		Str("severity", advice.Severity.String()).
		Int("syntax_issues", len(findings.SyntaxIssues)).
		Int("indentation_issues", len(findings.IndentationIssues)).
		Msg("submission analysed")

	record := SubmissionRecord{
		ProblemID: payload.ProblemID,
		UserID:    payload.UserID,
		Code:      payload.Code,
		Advice:    advice,
		Status:    models.SubmissionStatusAnalyzed,
	}
	if err := s.recorder.Record(spanCtx, record); err != nil {
		observability.RecorderFailures().WithLabelValues("submission").Inc()
		s.logger.Error().Err(err).Str("problem_id", payload.ProblemID).Msg("failed to record submission")
	}

	return dto.NewAdviceResponse(advice), nil
}
