package votes

import (
	"context"
	"time"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows vote listings.
type Filter struct {
	ContentID *uuid.UUID
	UserID    *uuid.UUID
	VoteType  *enums.VoteType
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.Equals(q, "content_id", f.ContentID)
	q = repo.Equals(q, "user_id", f.UserID)
	return repo.Equals(q, "vote_type", f.VoteType)
}

// Counts is the tally of a video's votes.
type Counts struct {
	Up   int
	Down int
}

// Repository persists votes and keeps the video counters in step.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ContentExists(ctx context.Context, contentID uuid.UUID) (bool, error)
	Upsert(ctx context.Context, vote *models.Vote) (*models.Vote, error)
	RecountVideo(ctx context.Context, contentID uuid.UUID) (Counts, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Vote], error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) ContentExists(ctx context.Context, contentID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.VideoContent{}).Where("id = ?", contentID).Count(&n).Error
	return n > 0, err
}

// Upsert stores the user's vote on the content, replacing an earlier one.
func (r *repository) Upsert(ctx context.Context, vote *models.Vote) (*models.Vote, error) {
	db := r.DB(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
	}).Create(vote).Error
	if err != nil {
		return nil, err
	}

	var stored models.Vote
	if err := db.Where("user_id = ? AND content_id = ?", vote.UserID, vote.ContentID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// RecountVideo recomputes the up and down counters from the vote rows.
func (r *repository) RecountVideo(ctx context.Context, contentID uuid.UUID) (Counts, error) {
	var rows []struct {
		VoteType enums.VoteType
		Total    int
	}
	err := r.DB(ctx).Model(&models.Vote{}).
		Select("vote_type, COUNT(*) AS total").
		Where("content_id = ?", contentID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return Counts{}, err
	}

	var counts Counts
	for _, row := range rows {
		switch row.VoteType {
		case enums.VoteTypeUp:
			counts.Up = row.Total
		case enums.VoteTypeDown:
			counts.Down = row.Total
		}
	}
	err = r.DB(ctx).Model(&models.VideoContent{}).
		Where("id = ?", contentID).
		Updates(map[string]any{
			"up_vote":    counts.Up,
			"down_vote":  counts.Down,
			"updated_at": time.Now().UTC(),
		}).Error
	return counts, err
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.Vote], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.Vote{}))
	return repo.Paginate[models.Vote](q, params, "created_at ASC, id ASC")
}
