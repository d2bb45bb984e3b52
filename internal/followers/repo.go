package followers

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists creator follows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, learnerID, creatorID uuid.UUID) (*models.CreatorFollower, error)
	Create(ctx context.Context, follow *models.CreatorFollower) error
	Delete(ctx context.Context, learnerID, creatorID uuid.UUID) (int64, error)
	ListCreators(ctx context.Context, learnerID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[models.User], error)
	ListLearners(ctx context.Context, creatorID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[models.User], error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a followers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Find(ctx context.Context, learnerID, creatorID uuid.UUID) (*models.CreatorFollower, error) {
	var follow models.CreatorFollower
	err := r.DB(ctx).Where("learner_id = ? AND creator_id = ?", learnerID, creatorID).First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *repository) Create(ctx context.Context, follow *models.CreatorFollower) error {
	return r.DB(ctx).Omit("Learner", "Creator").Create(follow).Error
}

func (r *repository) Delete(ctx context.Context, learnerID, creatorID uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("learner_id = ? AND creator_id = ?", learnerID, creatorID).Delete(&models.CreatorFollower{})
	return res.RowsAffected, res.Error
}

// ListCreators pages through the creators a learner follows.
func (r *repository) ListCreators(ctx context.Context, learnerID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[models.User], error) {
	return r.listUsers(ctx, "creator_id", "learner_id", learnerID, fullName, params)
}

// ListLearners pages through the learners following a creator.
func (r *repository) ListLearners(ctx context.Context, creatorID uuid.UUID, fullName string, params pagination.Params) (pagination.Page[models.User], error) {
	return r.listUsers(ctx, "learner_id", "creator_id", creatorID, fullName, params)
}

func (r *repository) listUsers(ctx context.Context, pick, match string, id uuid.UUID, fullName string, params pagination.Params) (pagination.Page[models.User], error) {
	db := r.DB(ctx)
	ids := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.CreatorFollower{}).
		Select(pick).
		Where(match+" = ?", id)
	q := db.Model(&models.User{}).Where("id IN (?)", ids)
	q = repo.Contains(q, "full_name", fullName)
	return repo.Paginate[models.User](q, params, "full_name ASC, id ASC")
}
