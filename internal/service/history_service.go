package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
)

// HistoryService lists stored submissions and security events.
type HistoryService interface {
	Submissions(ctx context.Context, req dto.SubmissionHistoryRequest) (dto.SubmissionHistoryResponse, error)
	SecurityLogs(ctx context.Context, req dto.SecurityLogListRequest) (dto.SecurityLogListResponse, error)
}

type historyService struct {
	submissions repository.SubmissionRepository
	logs        repository.SecurityLogRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewHistoryService constructs the history service.
func NewHistoryService(submissions repository.SubmissionRepository, logs repository.SecurityLogRepository, validate *validator.Validate, logger zerolog.Logger) HistoryService {
	return &historyService{
		submissions: submissions,
		logs:        logs,
		validator:   validate,
		logger:      logger.With().Str("component", "history_service").Logger(),
	}
}

func (s *historyService) Submissions(ctx context.Context, req dto.SubmissionHistoryRequest) (dto.SubmissionHistoryResponse, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionHistoryResponse{}, err
	}

	items, total, err := s.submissions.List(ctx, repository.SubmissionFilter{
		UserID:   req.UserID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.SubmissionHistoryResponse{}, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewSubmissionResponse(item))
	}

	return dto.SubmissionHistoryResponse{Items: responses, Pagination: paginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *historyService) SecurityLogs(ctx context.Context, req dto.SecurityLogListRequest) (dto.SecurityLogListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SecurityLogListResponse{}, err
	}

	entries, total, err := s.logs.List(ctx, repository.SecurityLogFilter{
		UserID:    strings.TrimSpace(req.UserID),
		EventType: strings.TrimSpace(req.EventType),
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return dto.SecurityLogListResponse{}, err
	}

	responses := make([]dto.SecurityLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewSecurityLogResponse(entry))
	}

	return dto.SecurityLogListResponse{Items: responses, Pagination: paginationMeta(req.Page, req.PageSize, total)}, nil
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: 1,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return meta
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
