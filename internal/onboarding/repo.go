package onboarding

import (
	"context"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists onboarding funnel stages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, funnel *models.OnBoardingFunnel) (*models.OnBoardingFunnel, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OnBoardingFunnel, error)
	DeleteStage(ctx context.Context, userID uuid.UUID, stage, role string) error
}

type repository struct {
	repo.Base
}

// NewRepository builds an onboarding repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Upsert writes the status for (user, stage). The role is only recorded when
// the row is first created.
func (r *repository) Upsert(ctx context.Context, funnel *models.OnBoardingFunnel) (*models.OnBoardingFunnel, error) {
	db := r.DB(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "stage"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(funnel).Error
	if err != nil {
		return nil, err
	}

	var stored models.OnBoardingFunnel
	if err := db.Where("user_id = ? AND stage = ?", funnel.UserID, funnel.Stage).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OnBoardingFunnel, error) {
	rows := []models.OnBoardingFunnel{}
	err := r.DB(ctx).Where("user_id = ?", userID).Order("created_at, stage").Find(&rows).Error
	return rows, err
}

// DeleteStage removes the matching row. gorm.ErrRecordNotFound reports that
// nothing matched.
func (r *repository) DeleteStage(ctx context.Context, userID uuid.UUID, stage, role string) error {
	res := r.DB(ctx).
		Where("user_id = ? AND stage = ? AND role = ?", userID, stage, role).
		Delete(&models.OnBoardingFunnel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
