package content

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentFilter narrows video listings.
type ContentFilter struct {
	CreatorIDs []uuid.UUID
	Title      string
}

func (f ContentFilter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.In(q, "user_id", f.CreatorIDs)
	return repo.Contains(q, "title", f.Title)
}

// VideoRepository persists videos and their tag/protocol associations.
type VideoRepository interface {
	WithTx(tx *gorm.DB) VideoRepository
	Create(ctx context.Context, video *models.VideoContent) error
	FindForCreator(ctx context.Context, creatorID, id uuid.UUID) (*models.VideoContent, error)
	List(ctx context.Context, filter ContentFilter, params pagination.Params) (pagination.Page[models.VideoContent], error)
	Update(ctx context.Context, video *models.VideoContent) error
	ReplaceTags(ctx context.Context, video *models.VideoContent, tags []models.Tag) error
	ReplaceProtocols(ctx context.Context, video *models.VideoContent, protocols []models.Protocol) error
	Delete(ctx context.Context, creatorID, id uuid.UUID) error
}

type videoRepository struct {
	repo.Base
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{Base: repo.NewBase(db)}
}

func (r *videoRepository) WithTx(tx *gorm.DB) VideoRepository {
	if tx == nil {
		return r
	}
	return &videoRepository{Base: repo.NewBase(tx)}
}

func (r *videoRepository) Create(ctx context.Context, video *models.VideoContent) error {
	return r.DB(ctx).Omit("Creator", "Tags", "Protocols").Create(video).Error
}

func (r *videoRepository) FindForCreator(ctx context.Context, creatorID, id uuid.UUID) (*models.VideoContent, error) {
	var video models.VideoContent
	err := r.DB(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Protocols", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ? AND user_id = ?", id, creatorID).
		First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// List pages through videos and loads tags and protocols for the page only.
func (r *videoRepository) List(ctx context.Context, filter ContentFilter, params pagination.Params) (pagination.Page[models.VideoContent], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.VideoContent{}))
	page, err := repo.Paginate[models.VideoContent](q, params, "created_at DESC, id ASC")
	if err != nil || len(page.Items) == 0 {
		return page, err
	}

	ids := make([]uuid.UUID, len(page.Items))
	for i, v := range page.Items {
		ids[i] = v.ID
	}
	var loaded []models.VideoContent
	err = r.DB(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Protocols", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id IN ?", ids).
		Find(&loaded).Error
	if err != nil {
		return page, err
	}
	byID := make(map[uuid.UUID]models.VideoContent, len(loaded))
	for _, v := range loaded {
		byID[v.ID] = v
	}
	for i, v := range page.Items {
		if full, ok := byID[v.ID]; ok {
			page.Items[i].Tags = full.Tags
			page.Items[i].Protocols = full.Protocols
		}
	}
	return page, nil
}

func (r *videoRepository) Update(ctx context.Context, video *models.VideoContent) error {
	return r.DB(ctx).
		Model(video).
		Select("title", "url", "description", "thumbnail", "personal_note", "updated_at").
		Updates(video).Error
}

func (r *videoRepository) ReplaceTags(ctx context.Context, video *models.VideoContent, tags []models.Tag) error {
	assoc := r.DB(ctx).Model(video).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

func (r *videoRepository) ReplaceProtocols(ctx context.Context, video *models.VideoContent, protocols []models.Protocol) error {
	assoc := r.DB(ctx).Model(video).Association("Protocols")
	if len(protocols) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(protocols)
}

// Delete removes the creator's video with its associations and votes.
func (r *videoRepository) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM video_tags WHERE video_content_id = ?",
			"DELETE FROM video_protocols WHERE video_content_id = ?",
			"DELETE FROM votes WHERE content_id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ? AND user_id = ?", id, creatorID).Delete(&models.VideoContent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
