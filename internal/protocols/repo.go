package protocols

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows protocol listings. Both fields match case-insensitive
// substrings and combine with AND.
type Filter struct {
	Name     string
	Category string
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.Contains(q, "name", f.Name)
	return repo.Contains(q, "category", f.Category)
}

// Repository persists protocols.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMissing(ctx context.Context, rows []models.Protocol) (int64, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Protocol, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Protocol], error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter Filter, params pagination.Params) (pagination.Page[models.Protocol], error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a protocols repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// CreateMissing inserts protocols whose external id is not yet stored.
func (r *repository) CreateMissing(ctx context.Context, rows []models.Protocol) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id_lama"}}, DoNothing: true}).
		CreateInBatches(&rows, 200)
	return res.RowsAffected, res.Error
}

// FindByIDs loads the protocols whose ids exist. Unknown ids are skipped.
func (r *repository) FindByIDs(ctx context.Context, ids []uint) ([]models.Protocol, error) {
	out := []models.Protocol{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Protocol], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.Protocol{}))
	return repo.Paginate[models.Protocol](q, params, "id ASC")
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, filter Filter, params pagination.Params) (pagination.Page[models.Protocol], error) {
	db := r.DB(ctx)
	q := db.Model(&models.Protocol{}).
		Where("id IN (?)", db.Table("user_protocols").Select("protocol_id").Where("user_id = ?", userID))
	return repo.Paginate[models.Protocol](filter.Apply(q), params, "id ASC")
}
