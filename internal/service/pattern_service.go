package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
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

// ErrPatternInvalid indicates the phrase is empty once sanitised.
var ErrPatternInvalid = errors.New("pattern is empty")

// ErrPatternExists indicates the phrase is already in the set.
var ErrPatternExists = errors.New("pattern already exists")

// ErrPatternNotFound indicates the phrase is not in the set.
var ErrPatternNotFound = errors.New("pattern not found")

// PatternSource hands out the pattern snapshot used for screening.
type PatternSource interface {
	Snapshot() review.PatternSet
}

// PatternService administers the cheat-intent phrase set.
type PatternService interface {
	PatternSource
	Load(ctx context.Context) error
	List(ctx context.Context) dto.PatternListResponse
	Add(ctx context.Context, actorID string, payload dto.PatternRequest) (dto.PatternListResponse, error)
	Remove(ctx context.Context, payload dto.PatternRequest) (dto.PatternListResponse, error)
	Start(ctx context.Context)
}

type patternReloadEvent struct {
	Source  string    `json:"source"`
	Version uint64    `json:"version"`
	SentAt  time.Time `json:"sent_at"`
}

type patternService struct {
	repo      repository.PatternRepository
	store     *review.PatternStore
	seed      []string
	redis     *redis.Client
	channel   string
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	nodeID    string
}

// NewPatternService constructs the pattern service. Seed phrases are written to storage the
// first time Load finds it empty. Redis is optional and only used to tell other nodes to reload.
func NewPatternService(repo repository.PatternRepository, seed []string, redisClient *redis.Client, channelBase string, validate *validator.Validate, logger zerolog.Logger) PatternService {
	if len(seed) == 0 {
		seed = review.DefaultPatterns
	}
	channel := ""
	if channelBase != "" {
		channel = channelBase + ":patterns"
	}

	return &patternService{
		repo:      repo,
		store:     review.NewPatternStore(seed),
		seed:      seed,
		redis:     redisClient,
		channel:   channel,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "pattern_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-code-advisor/internal/service/patterns"),
		nodeID:    uuid.NewString(),
	}
}

func (s *patternService) Snapshot() review.PatternSet {
	return s.store.Snapshot()
}

func (s *patternService) Load(ctx context.Context) error {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}

	if total == 0 {
		for _, pattern := range review.NewPatternSet(0, s.seed).Patterns() {
			if err := s.repo.Create(ctx, &models.SuspiciousPattern{Pattern: pattern, CreatedBy: "system"}); err != nil {
				return err
			}
		}
	}

	stored, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	phrases := make([]string, 0, len(stored))
	for _, item := range stored {
		phrases = append(phrases, item.Pattern)
	}

	set := s.store.Replace(phrases)
	observability.PatternSetSize().Set(float64(set.Len()))
	s.logger.Info().Uint64("version", set.Version).Int("patterns", set.Len()).Msg("pattern set loaded")
	return nil
}

func (s *patternService) List(ctx context.Context) dto.PatternListResponse {
	return newPatternListResponse(s.store.Snapshot())
}

func (s *patternService) Add(ctx context.Context, actorID string, payload dto.PatternRequest) (dto.PatternListResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PatternListResponse{}, err
	}

	pattern := s.clean(payload.Pattern)
	if pattern == "" {
		return dto.PatternListResponse{}, ErrPatternInvalid
	}

	spanCtx, span := s.tracer.Start(ctx, "patterns.add", trace.WithAttributes(attribute.String("pattern.actor", actorID)))
	defer span.End()

	if s.store.Snapshot().Contains(pattern) {
		return dto.PatternListResponse{}, ErrPatternExists
	}

	if err := s.repo.Create(spanCtx, &models.SuspiciousPattern{Pattern: pattern, CreatedBy: actorID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// stored by another node since our last reload
			if loadErr := s.Load(spanCtx); loadErr != nil {
				s.logger.Error().Err(loadErr).Msg("failed to reload pattern set")
			}
			return dto.PatternListResponse{}, ErrPatternExists
		}
		span.RecordError(err)
		return dto.PatternListResponse{}, err
	}

	set, _ := s.store.Add(pattern)
	s.afterChange(spanCtx, set)
	return newPatternListResponse(set), nil
}

func (s *patternService) Remove(ctx context.Context, payload dto.PatternRequest) (dto.PatternListResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PatternListResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "patterns.remove")
	defer span.End()

	stored, ok := s.canonical(s.clean(payload.Pattern))
	if !ok {
		return dto.PatternListResponse{}, ErrPatternNotFound
	}

	if _, err := s.repo.DeleteByPattern(spanCtx, stored); err != nil {
		span.RecordError(err)
		return dto.PatternListResponse{}, err
	}

	set, _ := s.store.Remove(stored)
	s.afterChange(spanCtx, set)
	return newPatternListResponse(set), nil
}

// Start listens for reload signals published by other nodes.
func (s *patternService) Start(ctx context.Context) {
	if s.redis == nil || s.channel == "" {
		return
	}
	go s.consumeRedis(ctx)
}

func (s *patternService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.channel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("pattern reload subscription closed")
			return
		}
		s.handleReload(ctx, []byte(msg.Payload))
	}
}

func (s *patternService) handleReload(ctx context.Context, payload []byte) {
	var event patternReloadEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid pattern reload payload")
		return
	}
	if event.Source == s.nodeID {
		return
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to reload pattern set")
	}
}

func (s *patternService) afterChange(ctx context.Context, set review.PatternSet) {
	observability.PatternSetSize().Set(float64(set.Len()))
	s.logger.Info().Uint64("version", set.Version).Int("patterns", set.Len()).Msg("pattern set updated")

	if s.redis == nil || s.channel == "" {
		return
	}
	payload, err := json.Marshal(patternReloadEvent{Source: s.nodeID, Version: set.Version, SentAt: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := s.redis.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to broadcast pattern reload")
	}
}

// clean strips markup from admin input. Entities are decoded again so phrases such as
// "what's the answer" keep matching raw submission text.
func (s *patternService) clean(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(input)))
}

func (s *patternService) canonical(pattern string) (string, bool) {
	key := strings.ToLower(pattern)
	for _, existing := range s.store.Snapshot().Patterns() {
		if strings.ToLower(existing) == key {
			return existing, true
		}
	}
	return "", false
}

func newPatternListResponse(set review.PatternSet) dto.PatternListResponse {
	return dto.PatternListResponse{Version: set.Version, Patterns: set.Patterns()}
}
