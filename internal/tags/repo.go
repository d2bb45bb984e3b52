package tags

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows tag listings.
type Filter struct {
	Name string
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	return repo.Contains(q, "name", f.Name)
}

// Repository persists tags.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tag *models.Tag) error
	CreateMissing(ctx context.Context, tags []models.Tag) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Tag, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Tag], error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter Filter, params pagination.Params) (pagination.Page[models.Tag], error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a tags repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, tag *models.Tag) error {
	return r.DB(ctx).Create(tag).Error
}

// CreateMissing inserts tags whose slug is not yet taken and reports how many
// rows were added.
func (r *repository) CreateMissing(ctx context.Context, tags []models.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tag_id"}}, DoNothing: true}).
		CreateInBatches(&tags, 200)
	return res.RowsAffected, res.Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.DB(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByIDs loads the tags whose ids exist. Unknown ids are skipped.
func (r *repository) FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	out := []models.Tag{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Tag], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.Tag{}))
	return repo.Paginate[models.Tag](q, params, "id ASC")
}

// ListForUser pages through the tags associated with userID.
func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, filter Filter, params pagination.Params) (pagination.Page[models.Tag], error) {
	db := r.DB(ctx)
	q := db.Model(&models.Tag{}).
		Where("id IN (?)", db.Table("user_tags").Select("tag_id").Where("user_id = ?", userID))
	return repo.Paginate[models.Tag](filter.Apply(q), params, "id ASC")
}

func (r *repository) Update(ctx context.Context, tag *models.Tag) error {
	return r.DB(ctx).
		Model(tag).
		Select("tag_id", "name", "updated_at").
		Updates(tag).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM video_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Tag{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
