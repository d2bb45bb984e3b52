// Package followers manages learner -> creator follows.
package followers

import (
	"context"
	"errors"

	"github.com/HarshArya1405/typescriptDemo/internal/users"
	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
)

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ToggleInput names both sides of a follow.
type ToggleInput struct {
	LearnerID uuid.UUID `json:"learnerId" validate:"required"`
	CreatorID uuid.UUID `json:"creatorId" validate:"required"`
}

// ToggleResult reports the follow state after a toggle.
type ToggleResult struct {
	LearnerID uuid.UUID `json:"learnerId"`
	CreatorID uuid.UUID `json:"creatorId"`
	Followed  bool      `json:"followed"`
}

// Service exposes follow toggling and both listing directions.
type Service interface {
	Toggle(ctx context.Context, input ToggleInput) (*ToggleResult, error)
	ListFollowedCreators(ctx context.Context, learnerID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[users.UserDTO], error)
	ListLearners(ctx context.Context, creatorID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[users.UserDTO], error)
}

type service struct {
	repo  Repository
	users userChecker
}

// NewService builds the followers service.
func NewService(repo Repository, users userChecker) (Service, error) {
	if repo == nil {
		return nil, errors.New("followers repository required")
	}
	if users == nil {
		return nil, errors.New("user checker required")
	}
	return &service{repo: repo, users: users}, nil
}

// Toggle follows when no follow exists and unfollows otherwise.
func (s *service) Toggle(ctx context.Context, input ToggleInput) (*ToggleResult, error) {
	if input.LearnerID == uuid.Nil || input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "learnerId and creatorId are required")
	}
	if input.LearnerID == input.CreatorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users cannot follow themselves")
	}
	for _, id := range []uuid.UUID{input.LearnerID, input.CreatorID} {
		exists, err := s.users.Exists(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if !exists {
			return nil, pkgerrors.NotFound("user")
		}
	}

	result := &ToggleResult{LearnerID: input.LearnerID, CreatorID: input.CreatorID}
	removed, err := s.repo.Delete(ctx, input.LearnerID, input.CreatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unfollow creator")
	}
	if removed > 0 {
		return result, nil
	}

	err = s.repo.Create(ctx, &models.CreatorFollower{LearnerID: input.LearnerID, CreatorID: input.CreatorID})
	if err != nil && !db.IsUniqueViolation(err, "idx_creator_followers_pair") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "follow creator")
	}
	result.Followed = true
	return result, nil
}

func (s *service) ListFollowedCreators(ctx context.Context, learnerID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[users.UserDTO], error) {
	page, err := s.repo.ListCreators(ctx, learnerID, fullName, params)
	if err != nil {
		return pagination.Page[users.UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list followed creators")
	}
	return toUserPage(page), nil
}

func (s *service) ListLearners(ctx context.Context, creatorID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[users.UserDTO], error) {
	page, err := s.repo.ListLearners(ctx, creatorID, fullName, params)
	if err != nil {
		return pagination.Page[users.UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list learners")
	}
	return toUserPage(page), nil
}

func toUserPage(page pagination.Page[models.User]) pagination.Page[users.UserDTO] {
	return pagination.Map(page, func(u models.User) users.UserDTO { return *users.FromModel(&u) })
}
