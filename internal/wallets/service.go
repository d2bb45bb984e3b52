package wallets

import (
	"context"
	"errors"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/HarshArya1405/typescriptDemo/pkg/wallet"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const nameConstraint = "idx_wallets_user_name"

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service manages user wallets.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateWalletInput) (*WalletDTO, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*WalletDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateWalletInput) (*WalletDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[WalletDTO], error)
}

type service struct {
	repo  Repository
	users userChecker
}

// NewService builds a wallet service.
func NewService(repo Repository, users userChecker) (Service, error) {
	if repo == nil {
		return nil, errors.New("wallets repository required")
	}
	if users == nil {
		return nil, errors.New("user checker required")
	}
	return &service{repo: repo, users: users}, nil
}

// Create registers a wallet. The name defaults to "wallet" and must be unique
// per user.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateWalletInput) (*WalletDTO, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !exists {
		return nil, pkgerrors.NotFound("user")
	}

	address := strings.TrimSpace(input.Address)
	if err := wallet.Validate(address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}

	row := &models.Wallet{
		UserID:  userID,
		Name:    strings.TrimSpace(input.Name),
		Address: address,
	}
	if row.Name == "" {
		row.Name = wallet.DefaultName
	}
	if input.Balance != nil {
		row.Balance = *input.Balance
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, nameConstraint) {
			return nil, pkgerrors.Conflict(err, "wallet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet")
	}
	return FromModel(row), nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*WalletDTO, error) {
	row, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(row), nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateWalletInput) (*WalletDTO, error) {
	row, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet name cannot be empty")
		}
		row.Name = name
	}
	if input.Address != nil {
		address := strings.TrimSpace(*input.Address)
		if err := wallet.Validate(address); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
		}
		row.Address = address
	}
	if input.Balance != nil {
		row.Balance = *input.Balance
	}

	if err := s.repo.Update(ctx, row); err != nil {
		if db.IsUniqueViolation(err, nameConstraint) {
			return nil, pkgerrors.Conflict(err, "wallet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet")
	}
	return FromModel(row), nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("wallet")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wallet")
	}
	return nil
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[WalletDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[WalletDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallets")
	}
	return pagination.Map(page, func(w models.Wallet) WalletDTO { return *FromModel(&w) }), nil
}

func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*models.Wallet, error) {
	row, err := s.repo.FindForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("wallet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	return row, nil
}
