package wallets

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows wallet listings.
type Filter struct {
	UserID *uuid.UUID
	Name   string
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.Equals(q, "user_id", f.UserID)
	return repo.Contains(q, "name", f.Name)
}

// Repository persists wallets. Every single-row lookup is scoped by owner.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.Wallet) error
	FindForUser(ctx context.Context, userID, id uuid.UUID) (*models.Wallet, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Wallet], error)
	Update(ctx context.Context, wallet *models.Wallet) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a wallets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.DB(ctx).Create(wallet).Error
}

func (r *repository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.DB(ctx).Where("id = ? AND user_id = ?", id, userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Wallet], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.Wallet{}))
	return repo.Paginate[models.Wallet](q, params, "created_at ASC, id ASC")
}

func (r *repository) Update(ctx context.Context, wallet *models.Wallet) error {
	return r.DB(ctx).Model(wallet).
		Select("name", "address", "balance", "updated_at").
		Updates(wallet).Error
}

// Delete removes the wallet. gorm.ErrRecordNotFound reports a missing row.
func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Wallet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
