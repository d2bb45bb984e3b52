// Package onboarding tracks which onboarding stages each user skipped or
// completed.
package onboarding

import (
	"context"
	"errors"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// SetStageInput records one stage outcome.
type SetStageInput struct {
	Stage  string `json:"stage" validate:"required,max=100"`
	Status string `json:"status" validate:"required,oneof=skipped completed"`
	Role   string `json:"role" validate:"max=50"`
}

// DeleteStageInput identifies the stage row to remove.
type DeleteStageInput struct {
	Stage string `json:"stage" validate:"required"`
	Role  string `json:"role"`
}

// FunnelDTO is the stored state of one stage.
type FunnelDTO struct {
	ID     uuid.UUID              `json:"id"`
	UserID uuid.UUID              `json:"userId"`
	Stage  string                 `json:"stage"`
	Status enums.OnboardingStatus `json:"status"`
	Role   string                 `json:"role"`
}

// Service exposes the per-user onboarding map.
type Service interface {
	SetStage(ctx context.Context, userID uuid.UUID, input SetStageInput) (*FunnelDTO, error)
	GetAll(ctx context.Context, userID uuid.UUID) (map[string]enums.OnboardingStatus, error)
	DeleteStage(ctx context.Context, userID uuid.UUID, input DeleteStageInput) error
}

type service struct {
	repo  Repository
	users userChecker
}

// NewService builds the onboarding service.
func NewService(repo Repository, users userChecker) (Service, error) {
	if repo == nil {
		return nil, errors.New("onboarding repository required")
	}
	if users == nil {
		return nil, errors.New("user checker required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) SetStage(ctx context.Context, userID uuid.UUID, input SetStageInput) (*FunnelDTO, error) {
	stage := strings.TrimSpace(input.Stage)
	if stage == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stage is required")
	}
	status, err := enums.ParseOnboardingStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid onboarding status")
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, &models.OnBoardingFunnel{
		UserID: userID,
		Stage:  stage,
		Status: status,
		Role:   strings.TrimSpace(input.Role),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save onboarding stage")
	}
	return &FunnelDTO{
		ID:     stored.ID,
		UserID: stored.UserID,
		Stage:  stored.Stage,
		Status: stored.Status,
		Role:   stored.Role,
	}, nil
}

// GetAll returns stage -> status. Stages never recorded are absent.
func (s *service) GetAll(ctx context.Context, userID uuid.UUID) (map[string]enums.OnboardingStatus, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list onboarding stages")
	}
	out := make(map[string]enums.OnboardingStatus, len(rows))
	for _, row := range rows {
		out[row.Stage] = row.Status
	}
	return out, nil
}

func (s *service) DeleteStage(ctx context.Context, userID uuid.UUID, input DeleteStageInput) error {
	err := s.repo.DeleteStage(ctx, userID, strings.TrimSpace(input.Stage), strings.TrimSpace(input.Role))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("onboarding stage")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete onboarding stage")
	}
	return nil
}

func (s *service) ensureUser(ctx context.Context, id uuid.UUID) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !exists {
		return pkgerrors.NotFound("user")
	}
	return nil
}
