package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-code-advisor/internal/dto"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
)

// ProblemService exposes read access to the problem catalog.
type ProblemService interface {
	List(ctx context.Context, req dto.ProblemListRequest) ([]dto.ProblemResponse, error)
	Get(ctx context.Context, id string) (dto.ProblemResponse, error)
}

type problemService struct {
	repo      repository.ProblemRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProblemService constructs a problem service.
func NewProblemService(repo repository.ProblemRepository, validate *validator.Validate, logger zerolog.Logger) ProblemService {
	return &problemService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) List(ctx context.Context, req dto.ProblemListRequest) ([]dto.ProblemResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	problems, err := s.repo.List(ctx, repository.ProblemQuery{Difficulty: req.Difficulty})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, dto.NewProblemResponse(problem))
	}
	return responses, nil
}

func (s *problemService) Get(ctx context.Context, id string) (dto.ProblemResponse, error) {
	problem, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}
	return dto.NewProblemResponse(problem), nil
}
