package roles

import (
	"context"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists roles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, role *models.Role) error
	EnsureNames(ctx context.Context, names []string) error
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	FindByNames(ctx context.Context, names []string) ([]models.Role, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Role, error)
	Update(ctx context.Context, role *models.Role) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a roles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, role *models.Role) error {
	return r.DB(ctx).Create(role).Error
}

// EnsureNames inserts enabled roles for any names not yet present.
func (r *repository) EnsureNames(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]models.Role, 0, len(names))
	for _, name := range names {
		rows = append(rows, models.Role{Name: name, Enabled: true})
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.DB(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.DB(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindByNames(ctx context.Context, names []string) ([]models.Role, error) {
	out := []models.Role{}
	if len(names) == 0 {
		return out, nil
	}
	err := r.DB(ctx).Where("name IN ?", names).Order("id").Find(&out).Error
	return out, err
}

// FindByIDs loads the roles whose ids exist. Unknown ids are skipped.
func (r *repository) FindByIDs(ctx context.Context, ids []uint) ([]models.Role, error) {
	out := []models.Role{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.DB(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) Update(ctx context.Context, role *models.Role) error {
	return r.DB(ctx).
		Model(role).
		Select("name", "description", "enabled", "updated_at").
		Updates(role).Error
}
