package content

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TextFilter narrows text listings.
type TextFilter struct {
	UserID  *uuid.UUID
	Content string
}

func (f TextFilter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.Equals(q, "user_id", f.UserID)
	return repo.Contains(q, "content", f.Content)
}

// TextRepository persists text posts.
type TextRepository interface {
	Create(ctx context.Context, text *models.Text) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Text, error)
	List(ctx context.Context, filter TextFilter, params pagination.Params) (pagination.Page[models.Text], error)
	Update(ctx context.Context, text *models.Text) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type textRepository struct {
	repo.Base
}

func NewTextRepository(db *gorm.DB) TextRepository {
	return &textRepository{Base: repo.NewBase(db)}
}

func (r *textRepository) Create(ctx context.Context, text *models.Text) error {
	return r.DB(ctx).Create(text).Error
}

func (r *textRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Text, error) {
	var text models.Text
	if err := r.DB(ctx).First(&text, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &text, nil
}

func (r *textRepository) List(ctx context.Context, filter TextFilter, params pagination.Params) (pagination.Page[models.Text], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.Text{}))
	return repo.Paginate[models.Text](q, params, "created_at DESC, id ASC")
}

func (r *textRepository) Update(ctx context.Context, text *models.Text) error {
	return r.DB(ctx).
		Model(text).
		Select("content", "url", "caption", "description", "updated_at").
		Updates(text).Error
}

func (r *textRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.Text{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
