// Package identity maps identity-provider logins onto internal users and keeps
// the mirrored external identities in sync.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/internal/analytics"
	"github.com/HarshArya1405/typescriptDemo/internal/dispatch"
	"github.com/HarshArya1405/typescriptDemo/internal/users"
	"github.com/HarshArya1405/typescriptDemo/internal/wallets"
	"github.com/HarshArya1405/typescriptDemo/pkg/auth0"
	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	pkgredis "github.com/HarshArya1405/typescriptDemo/pkg/redis"
	"github.com/HarshArya1405/typescriptDemo/pkg/wallet"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	lockScope          = "reconcile"
	defaultWaitTimeout = 10 * time.Second
	waitPollInterval   = 100 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

type roleFinder interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

type profileReader interface {
	Get(ctx context.Context, id uuid.UUID) (*users.UserDetailDTO, error)
}

// Service reconciles logins and manages mirrored identities.
type Service interface {
	Reconcile(ctx context.Context, input ReconcileInput) (*users.UserDetailDTO, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[IdentityDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*IdentityDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateIdentityInput) (*IdentityDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[IdentityDTO], error)
	Link(ctx context.Context, input LinkInput) error
	Unlink(ctx context.Context, input UnlinkInput) error
}

// ServiceParams bundles the reconciliation dependencies. Locker, Linker,
// Dispatcher and Analytics are optional.
type ServiceParams struct {
	Repo        Repository
	Users       users.Repository
	Wallets     wallets.Repository
	Roles       roleFinder
	Profiles    profileReader
	Tx          txRunner
	Locker      locker
	LockKey     func(scope, id string) string
	WaitTimeout time.Duration
	Linker      auth0.Linker
	Dispatcher  dispatch.Enqueuer
	Analytics   analytics.Service
	Logger      *logger.Logger
}

type service struct {
	repo        Repository
	users       users.Repository
	wallets     wallets.Repository
	roles       roleFinder
	profiles    profileReader
	tx          txRunner
	locker      locker
	lockKey     func(scope, id string) string
	waitTimeout time.Duration
	linker      auth0.Linker
	dispatch    dispatch.Enqueuer
	analytics   analytics.Service
	logg        *logger.Logger
}

// NewService constructs the identity service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("identity repository is required")
	case params.Users == nil:
		return nil, fmt.Errorf("users repository is required")
	case params.Wallets == nil:
		return nil, fmt.Errorf("wallets repository is required")
	case params.Roles == nil:
		return nil, fmt.Errorf("role finder is required")
	case params.Profiles == nil:
		return nil, fmt.Errorf("profile reader is required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner is required")
	}

	s := &service{
		repo:        params.Repo,
		users:       params.Users,
		wallets:     params.Wallets,
		roles:       params.Roles,
		profiles:    params.Profiles,
		tx:          params.Tx,
		locker:      params.Locker,
		lockKey:     params.LockKey,
		waitTimeout: params.WaitTimeout,
		linker:      params.Linker,
		dispatch:    params.Dispatcher,
		analytics:   params.Analytics,
		logg:        params.Logger,
	}
	if s.lockKey == nil {
		s.lockKey = func(scope, id string) string { return scope + ":" + id }
	}
	if s.waitTimeout <= 0 {
		s.waitTimeout = defaultWaitTimeout
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.dispatch == nil {
		s.dispatch = dispatch.Inline{Logger: s.logg}
	}
	if s.analytics == nil {
		s.analytics = analytics.NewService(nil, nil, nil)
	}
	return s, nil
}

// Reconcile resolves the login to exactly one user: first by sub, then by
// email, otherwise by creating one. The full profile is returned.
func (s *service) Reconcile(ctx context.Context, input ReconcileInput) (*users.UserDetailDTO, error) {
	in := input.normalized()
	if in.Sub == "" && in.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub or email is required")
	}
	key := in.Sub
	if key == "" {
		key = in.Email
	}
	ctx = s.logg.WithSubject(ctx, key)

	release, err := s.acquire(ctx, key)
	switch {
	case errors.Is(err, pkgredis.ErrLockHeld):
		winner, waitErr := s.awaitWinner(ctx, in)
		if waitErr != nil {
			return nil, waitErr
		}
		if winner != nil {
			return s.profiles.Get(ctx, winner.ID)
		}
	case err != nil:
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reconcile lock unavailable")
	default:
		defer func() {
			if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", relErr.Error()), "reconcile lock release failed")
			}
		}()
	}

	user, created, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	if created {
		s.analytics.UserCreated(ctx, *user)
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user created from login")
	}
	return s.profiles.Get(ctx, user.ID)
}

func (s *service) acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if s.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	return s.locker.Acquire(ctx, s.lockKey(lockScope, key))
}

// awaitWinner polls for the user a concurrent reconcile is creating. A nil
// user means the wait ran out and the caller should resolve on its own.
func (s *service) awaitWinner(ctx context.Context, in ReconcileInput) (*models.User, error) {
	deadline := time.NewTimer(s.waitTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(waitPollInterval)
	defer tick.Stop()

	for {
		user, err := s.lookup(ctx, in)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ctx.Err(), "identity reconciliation in progress")
		case <-deadline.C:
			return nil, nil
		case <-tick.C:
		}
	}
}

func (s *service) resolve(ctx context.Context, in ReconcileInput) (*models.User, bool, error) {
	user, err := s.lookup(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		if err := s.attach(ctx, user, in); err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	user, err = s.create(ctx, in)
	if err == nil {
		return user, true, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	// Another request won the insert. Re-read and treat it as a match.
	winner, lookupErr := s.lookup(ctx, in)
	if lookupErr != nil {
		return nil, false, lookupErr
	}
	if winner == nil {
		return nil, false, pkgerrors.Conflict(err, "user")
	}
	if err := s.attach(ctx, winner, in); err != nil {
		return nil, false, err
	}
	return winner, false, nil
}

// lookup matches by sub first and by email second.
func (s *service) lookup(ctx context.Context, in ReconcileInput) (*models.User, error) {
	if in.Sub != "" {
		user, err := s.users.FindBySub(ctx, in.Sub)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user by sub")
		}
	}
	if in.Email != "" {
		user, err := s.users.FindByEmail(ctx, in.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user by email")
		}
	}
	return nil, nil
}

// attach records the login's identity against a matched user and schedules
// an Auth0 link when the user's primary sub differs.
func (s *service) attach(ctx context.Context, user *models.User, in ReconcileInput) error {
	if in.Sub == "" {
		return nil
	}
	if user.Sub == nil {
		if err := s.users.SetSub(ctx, user.ID, in.Sub); err != nil && !db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store user sub")
		}
		sub := in.Sub
		user.Sub = &sub
	}
	if err := s.repo.Upsert(ctx, in.identity(user.ID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store external identity")
	}
	s.scheduleLink(ctx, *user.Sub, in.Sub)
	return nil
}

func (s *service) create(ctx context.Context, in ReconcileInput) (*models.User, error) {
	var role *models.Role
	if in.Role != "" && !selfAssignable(in.Role) {
		s.logg.Warn(s.logg.WithField(ctx, "role", in.Role), "login requested a role it cannot self-assign")
	} else if in.Role != "" {
		found, err := s.roles.FindByName(ctx, in.Role)
		switch {
		case err == nil:
			role = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	user := in.user()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		if role != nil {
			user.Roles = []models.Role{*role}
			if err := userRepo.AppendRoles(ctx, user.ID, user.Roles); err != nil {
				return err
			}
		}
		if in.Sub == "" {
			return nil
		}
		if err := s.repo.WithTx(tx).Upsert(ctx, in.identity(user.ID)); err != nil {
			return err
		}
		address, err := wallet.FromSubject(in.Sub)
		if err != nil {
			return nil
		}
		if err := wallet.Validate(address); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "address", address), "login subject carries an invalid wallet address")
			return nil
		}
		return s.wallets.WithTx(tx).Create(ctx, &models.Wallet{
			UserID:  user.ID,
			Name:    wallet.DerivedName,
			Address: address,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// selfAssignable reports whether a login payload may grant role on signup.
// Privileged roles are only granted through the admin role endpoints.
func selfAssignable(role string) bool {
	switch enums.RoleName(strings.ToLower(role)) {
	case enums.RoleLearner, enums.RoleCreator:
		return true
	}
	return false
}

func (s *service) scheduleLink(ctx context.Context, primarySub, secondarySub string) {
	if s.linker == nil || primarySub == "" || primarySub == secondarySub {
		return
	}
	s.dispatch.Enqueue(ctx, "auth0.link_identity", func(ctx context.Context) error {
		return s.linker.LinkIdentity(ctx, primarySub, secondarySub)
	})
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[IdentityDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[IdentityDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list identities")
	}
	return toDTOPage(page), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*IdentityDTO, error) {
	identity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(identity), nil
}

// Update changes the mirrored fields. When the email belongs to a user, the
// identity is relinked to that user and the user's profile is refreshed.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateIdentityInput) (*IdentityDTO, error) {
	identity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyIdentityUpdate(identity, input)

	var owner *models.User
	if identity.Email != nil {
		found, err := s.users.FindByEmail(ctx, *identity.Email)
		switch {
		case err == nil:
			owner = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user by email")
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if owner != nil {
			identity.UserID = &owner.ID
			applyOwnerUpdate(owner, input)
			if err := s.users.WithTx(tx).Update(ctx, owner); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).Update(ctx, identity)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Conflict(err, "user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update identity")
	}
	return FromModel(identity), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[IdentityDTO], error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return pagination.Page[IdentityDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !exists {
		return pagination.Page[IdentityDTO]{}, pkgerrors.NotFound("user")
	}
	return s.List(ctx, Filter{UserID: &userID}, params)
}

// Link attaches secondary onto primary synchronously.
func (s *service) Link(ctx context.Context, input LinkInput) error {
	if s.linker == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "identity linking not configured")
	}
	primary, secondary := strings.TrimSpace(input.PrimaryUserID), strings.TrimSpace(input.SecondaryUserID)
	if primary == "" || secondary == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "primaryUserId and secondaryUserId are required")
	}
	if err := s.linker.LinkIdentity(ctx, primary, secondary); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link identity")
	}
	return nil
}

func (s *service) Unlink(ctx context.Context, input UnlinkInput) error {
	if s.linker == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "identity linking not configured")
	}
	primary := strings.TrimSpace(input.PrimaryUserID)
	provider := strings.TrimSpace(input.Provider)
	secondary := strings.TrimSpace(input.SecondaryUserID)
	if primary == "" || provider == "" || secondary == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "primaryUserId, provider and secondaryUserId are required")
	}
	if err := s.linker.UnlinkIdentity(ctx, primary, provider, secondary); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink identity")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ExternalIdentity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("external identity")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}
	return identity, nil
}

func applyIdentityUpdate(identity *models.ExternalIdentity, input UpdateIdentityInput) {
	if input.FullName != nil {
		identity.FullName = *input.FullName
	}
	if input.UserName != nil {
		identity.UserName = *input.UserName
	}
	if input.Email != nil {
		identity.Email = optional(strings.ToLower(strings.TrimSpace(*input.Email)))
	}
	if input.Phone != nil {
		identity.Phone = *input.Phone
	}
	if input.Gender != nil {
		identity.Gender = *input.Gender
	}
	if input.ProfilePicture != nil {
		identity.ProfilePicture = *input.ProfilePicture
	}
	if input.Title != nil {
		identity.Title = *input.Title
	}
	if input.Biography != nil {
		identity.Biography = *input.Biography
	}
}

func applyOwnerUpdate(user *models.User, input UpdateIdentityInput) {
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = *input.ProfilePicture
	}
	if input.Title != nil {
		user.Title = *input.Title
	}
	if input.Biography != nil {
		user.Biography = *input.Biography
	}
}

func toDTOPage(page pagination.Page[models.ExternalIdentity]) pagination.Page[IdentityDTO] {
	return pagination.Map(page, func(e models.ExternalIdentity) IdentityDTO { return *FromModel(&e) })
}
