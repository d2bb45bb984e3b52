package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/internal/analytics"
	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/roles"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	emailConstraint    = "idx_users_email"
	userNameConstraint = "idx_users_user_name"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type tagStore interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter tags.Filter, params pagination.Params) (pagination.Page[models.Tag], error)
}

type protocolStore interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Protocol, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter protocols.Filter, params pagination.Params) (pagination.Page[models.Protocol], error)
}

type roleStore interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

type pictureSigner interface {
	SignedReadURL(ctx context.Context, objectPath string) (string, error)
}

// Service manages users and their relationship graph.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDetailDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[UserDTO], error)

	ReplaceTags(ctx context.Context, id uuid.UUID, tagIDs []uint) ([]tags.TagDTO, error)
	ListTags(ctx context.Context, id uuid.UUID, filter tags.Filter, params pagination.Params) (pagination.Page[tags.TagDTO], error)
	ReplaceProtocols(ctx context.Context, id uuid.UUID, protocolIDs []uint) ([]protocols.ProtocolDTO, error)
	ListProtocols(ctx context.Context, id uuid.UUID, filter protocols.Filter, params pagination.Params) (pagination.Page[protocols.ProtocolDTO], error)
	UpdateRoles(ctx context.Context, id uuid.UUID, roleIDs []uint) ([]roles.RoleDTO, error)

	SaveSocialHandle(ctx context.Context, id uuid.UUID, input SaveSocialHandleInput) (*SocialHandleDTO, error)
	ListSocialHandles(ctx context.Context, id uuid.UUID) ([]SocialHandleDTO, error)
	ListCreators(ctx context.Context, viewerID uuid.UUID, filter Filter, params pagination.Params) (pagination.Page[CreatorDTO], error)
}

// ServiceParams bundles the dependencies of the users service. Signer and
// Analytics are optional.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Tags      tagStore
	Protocols protocolStore
	Roles     roleStore
	Signer    pictureSigner
	Analytics analytics.Service
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	tags      tagStore
	protocols protocolStore
	roles     roleStore
	signer    pictureSigner
	analytics analytics.Service
	logg      *logger.Logger
}

// NewService constructs the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Tags == nil {
		return nil, fmt.Errorf("tag store is required")
	}
	if params.Protocols == nil {
		return nil, fmt.Errorf("protocol store is required")
	}
	if params.Roles == nil {
		return nil, fmt.Errorf("role store is required")
	}
	tracker := params.Analytics
	if tracker == nil {
		tracker = analytics.NewService(nil, nil, nil)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		tags:      params.Tags,
		protocols: params.Protocols,
		roles:     params.Roles,
		signer:    params.Signer,
		analytics: tracker,
		logg:      logg,
	}, nil
}

// Create inserts a user and grants the named role when it exists. A taken
// email or user name fails with Conflict.
func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	user := input.ToModel()

	var role *models.Role
	if name := strings.TrimSpace(input.Role); name != "" {
		found, err := s.roles.FindByName(ctx, name)
		switch {
		case err == nil:
			role = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		if role != nil {
			user.Roles = []models.Role{*role}
			return repo.AppendRoles(ctx, user.ID, user.Roles)
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err, "create user")
	}

	s.analytics.UserCreated(ctx, *user)
	return FromModel(user), nil
}

// Get returns the full profile and records a profile visit.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDetailDTO, error) {
	user, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, mapReadError(err, "load user")
	}

	out := detailFromModel(user, s.profilePicture(ctx, user))
	s.analytics.ProfileVisited(ctx, id.String())
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapReadError(err, "load user")
	}

	applyUpdate(user, input)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapWriteError(err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapReadError(err, "delete user")
	}
	return nil
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[UserDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return pagination.Map(page, func(u models.User) UserDTO { return *FromModel(&u) }), nil
}

// ReplaceTags sets the user's tags to the known subset of tagIDs.
func (s *service) ReplaceTags(ctx context.Context, id uuid.UUID, tagIDs []uint) ([]tags.TagDTO, error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.tags.FindByIDs(ctx, dedupe(tagIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tags")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceTags(ctx, id, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace user tags")
	}
	return tags.FromModels(rows), nil
}

func (s *service) ListTags(ctx context.Context, id uuid.UUID, filter tags.Filter, params pagination.Params) (pagination.Page[tags.TagDTO], error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return pagination.Page[tags.TagDTO]{}, err
	}
	page, err := s.tags.ListForUser(ctx, id, filter, params)
	if err != nil {
		return pagination.Page[tags.TagDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user tags")
	}
	return pagination.Map(page, func(t models.Tag) tags.TagDTO { return *tags.FromModel(&t) }), nil
}

// ReplaceProtocols sets the user's protocols to the known subset of
// protocolIDs.
func (s *service) ReplaceProtocols(ctx context.Context, id uuid.UUID, protocolIDs []uint) ([]protocols.ProtocolDTO, error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.protocols.FindByIDs(ctx, dedupe(protocolIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load protocols")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceProtocols(ctx, id, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace user protocols")
	}
	return protocols.FromModels(rows), nil
}

func (s *service) ListProtocols(ctx context.Context, id uuid.UUID, filter protocols.Filter, params pagination.Params) (pagination.Page[protocols.ProtocolDTO], error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return pagination.Page[protocols.ProtocolDTO]{}, err
	}
	page, err := s.protocols.ListForUser(ctx, id, filter, params)
	if err != nil {
		return pagination.Page[protocols.ProtocolDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user protocols")
	}
	return pagination.Map(page, func(p models.Protocol) protocols.ProtocolDTO { return *protocols.FromModel(&p) }), nil
}

// UpdateRoles grants every known role in roleIDs the user does not hold yet.
// Roles are never removed. The user's full role set is returned.
func (s *service) UpdateRoles(ctx context.Context, id uuid.UUID, roleIDs []uint) ([]roles.RoleDTO, error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}

	current, err := s.repo.RoleIDs(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user roles")
	}
	have := make(map[uint]struct{}, len(current))
	for _, rid := range current {
		have[rid] = struct{}{}
	}
	missing := make([]uint, 0, len(roleIDs))
	for _, rid := range dedupe(roleIDs) {
		if _, ok := have[rid]; !ok {
			missing = append(missing, rid)
		}
	}

	fetched, err := s.roles.FindByIDs(ctx, missing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roles")
	}
	if err := s.repo.AppendRoles(ctx, id, fetched); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append user roles")
	}
	held, err := s.repo.ListRoles(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user roles")
	}
	return roles.FromModels(held), nil
}

// SaveSocialHandle upserts the handle for input.Platform.
func (s *service) SaveSocialHandle(ctx context.Context, id uuid.UUID, input SaveSocialHandleInput) (*SocialHandleDTO, error) {
	platform := strings.TrimSpace(input.Platform)
	if platform == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform is required")
	}
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}
	stored, err := s.repo.UpsertSocialHandle(ctx, &models.SocialHandle{
		UserID:   id,
		Platform: platform,
		URL:      strings.TrimSpace(input.URL),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save social handle")
	}
	out := socialHandleFromModel(stored)
	return &out, nil
}

func (s *service) ListSocialHandles(ctx context.Context, id uuid.UUID) ([]SocialHandleDTO, error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSocialHandles(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list social handles")
	}
	out := make([]SocialHandleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, socialHandleFromModel(&rows[i]))
	}
	return out, nil
}

// ListCreators pages through users holding the creator role and flags the
// ones viewerID follows.
func (s *service) ListCreators(ctx context.Context, viewerID uuid.UUID, filter Filter, params pagination.Params) (pagination.Page[CreatorDTO], error) {
	filter.Role = enums.RoleCreator.String()
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[CreatorDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list creators")
	}

	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, u := range page.Items {
		ids = append(ids, u.ID)
	}
	followed, err := s.repo.FollowedAmong(ctx, viewerID, ids)
	if err != nil {
		return pagination.Page[CreatorDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load follows")
	}
	return pagination.Map(page, func(u models.User) CreatorDTO {
		return CreatorDTO{UserDTO: *FromModel(&u), Followed: followed[u.ID]}
	}), nil
}

func (s *service) ensureUser(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !exists {
		return pkgerrors.NotFound("user")
	}
	return nil
}

func (s *service) profilePicture(ctx context.Context, user *models.User) ProfilePicture {
	if user.ProfilePicturePath == "" || s.signer == nil {
		return ProfilePicture{URL: user.ProfilePicture}
	}
	url, err := s.signer.SignedReadURL(ctx, user.ProfilePicturePath)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "profile picture signing failed")
		return ProfilePicture{URL: user.ProfilePicture, Path: user.ProfilePicturePath}
	}
	return ProfilePicture{URL: url, Path: user.ProfilePicturePath}
}

func applyUpdate(user *models.User, input UpdateUserInput) {
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.UserName != nil {
		user.UserName = normalizeOptional(input.UserName, false)
	}
	if input.Email != nil {
		user.Email = normalizeOptional(input.Email, true)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = *input.ProfilePicture
	}
	if input.ProfilePicturePath != nil {
		user.ProfilePicturePath = *input.ProfilePicturePath
	}
	if input.Title != nil {
		user.Title = *input.Title
	}
	if input.Biography != nil {
		user.Biography = *input.Biography
	}
}

func mapReadError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound("user")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func mapWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, emailConstraint) || db.IsUniqueViolation(err, userNameConstraint) {
		return pkgerrors.Conflict(err, "user")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
