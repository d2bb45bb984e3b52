package identity

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var mirroredColumns = []string{
	"email", "full_name", "user_name", "profile_picture", "phone",
	"title", "biography", "gender", "user_id", "updated_at",
}

// Filter narrows external identity listings.
type Filter struct {
	UserName string
	Email    string
	Phone    string
	UserID   *uuid.UUID
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.Contains(q, "user_name", f.UserName)
	q = repo.Contains(q, "email", f.Email)
	q = repo.Contains(q, "phone", f.Phone)
	return repo.Equals(q, "user_id", f.UserID)
}

// Repository persists external identities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExternalIdentity, error)
	FindBySub(ctx context.Context, sub string) (*models.ExternalIdentity, error)
	Upsert(ctx context.Context, identity *models.ExternalIdentity) error
	Update(ctx context.Context, identity *models.ExternalIdentity) error
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.ExternalIdentity], error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an external identity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ExternalIdentity, error) {
	var identity models.ExternalIdentity
	if err := r.DB(ctx).First(&identity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *repository) FindBySub(ctx context.Context, sub string) (*models.ExternalIdentity, error) {
	var identity models.ExternalIdentity
	if err := r.DB(ctx).Where("sub = ?", sub).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

// Upsert inserts the identity or refreshes the mirrored profile of the row
// with the same sub.
func (r *repository) Upsert(ctx context.Context, identity *models.ExternalIdentity) error {
	return r.DB(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sub"}},
		DoUpdates: clause.AssignmentColumns(mirroredColumns),
	}).Create(identity).Error
}

func (r *repository) Update(ctx context.Context, identity *models.ExternalIdentity) error {
	return r.DB(ctx).Model(identity).Omit("User").Select(mirroredColumns).Updates(identity).Error
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.ExternalIdentity], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.ExternalIdentity{}))
	return repo.Paginate[models.ExternalIdentity](q, params, "created_at ASC, id ASC")
}
