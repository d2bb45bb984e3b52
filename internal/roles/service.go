package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes role administration.
type Service interface {
	Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error)
	Bootstrap(ctx context.Context) ([]RoleDTO, error)
	GetByName(ctx context.Context, name string) (*RoleDTO, error)
	Update(ctx context.Context, id uint, input UpdateRoleInput) (*RoleDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds a role service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("roles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role name is required")
	}
	role := &models.Role{Name: name, Description: input.Description, Enabled: true}
	if input.Enabled != nil {
		role.Enabled = *input.Enabled
	}
	if err := s.repo.Create(ctx, role); err != nil {
		if db.IsUniqueViolation(err, "idx_roles_name") {
			return nil, pkgerrors.Conflict(err, "role")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create role")
	}
	return FromModel(role), nil
}

// Bootstrap seeds the default roles. Existing rows are left untouched.
func (s *service) Bootstrap(ctx context.Context) ([]RoleDTO, error) {
	defaults := enums.DefaultRoles()
	names := make([]string, 0, len(defaults))
	for _, r := range defaults {
		names = append(names, r.String())
	}
	if err := s.repo.EnsureNames(ctx, names); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed roles")
	}
	rows, err := s.repo.FindByNames(ctx, names)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roles")
	}
	return FromModels(rows), nil
}

func (s *service) GetByName(ctx context.Context, name string) (*RoleDTO, error) {
	role, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("role")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
	}
	return FromModel(role), nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateRoleInput) (*RoleDTO, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("role")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role name cannot be empty")
		}
		role.Name = name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.Enabled != nil {
		role.Enabled = *input.Enabled
	}

	if err := s.repo.Update(ctx, role); err != nil {
		if db.IsUniqueViolation(err, "idx_roles_name") {
			return nil, pkgerrors.Conflict(err, "role")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	return FromModel(role), nil
}
