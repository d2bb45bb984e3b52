package users

import (
	"context"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/internal/repo"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows user listings. Text fields match case-insensitive
// substrings; Role restricts to holders of the named role.
type Filter struct {
	UserName string
	Email    string
	Phone    string
	FullName string
	Role     string
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	q = repo.Contains(q, "user_name", f.UserName)
	q = repo.Contains(q, "email", f.Email)
	q = repo.Contains(q, "phone", f.Phone)
	q = repo.Contains(q, "full_name", f.FullName)
	if role := strings.TrimSpace(f.Role); role != "" {
		holders := q.Session(&gorm.Session{NewDB: true}).
			Table("user_roles").
			Select("user_roles.user_id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("LOWER(roles.name) = ?", strings.ToLower(role))
		q = q.Where("users.id IN (?)", holders)
	}
	return q
}

// Repository persists users and their owned rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindBySub(ctx context.Context, sub string) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, user *models.User) error
	SetSub(ctx context.Context, id uuid.UUID, sub string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.User], error)

	ReplaceTags(ctx context.Context, id uuid.UUID, tags []models.Tag) error
	ReplaceProtocols(ctx context.Context, id uuid.UUID, protocols []models.Protocol) error
	RoleIDs(ctx context.Context, id uuid.UUID) ([]uint, error)
	AppendRoles(ctx context.Context, id uuid.UUID, roles []models.Role) error
	ListRoles(ctx context.Context, id uuid.UUID) ([]models.Role, error)

	UpsertSocialHandle(ctx context.Context, handle *models.SocialHandle) (*models.SocialHandle, error)
	ListSocialHandles(ctx context.Context, id uuid.UUID) ([]models.SocialHandle, error)
	FollowedAmong(ctx context.Context, learnerID uuid.UUID, creatorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindDetail loads the user with roles, social handles, wallets and
// onboarding funnels.
func (r *repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("roles.id") }).
		Preload("SocialHandles", func(db *gorm.DB) *gorm.DB { return db.Order("platform") }).
		Preload("Wallets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("OnBoardingFunnels").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindBySub matches the user's own sub or any external identity linked to it.
func (r *repository) FindBySub(ctx context.Context, sub string) (*models.User, error) {
	db := r.DB(ctx)
	linked := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.ExternalIdentity{}).
		Select("user_id").
		Where("sub = ? AND user_id IS NOT NULL", sub)

	var user models.User
	err := db.Where("sub = ?", sub).Or("id IN (?)", linked).Order("created_at").First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Model(user).
		Select("full_name", "user_name", "email", "phone", "gender", "profile_picture",
			"profile_picture_path", "title", "biography", "updated_at").
		Updates(user).Error
}

func (r *repository) SetSub(ctx context.Context, id uuid.UUID, sub string) error {
	return r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Update("sub", sub).Error
}

// Delete removes the user and every row it owns. gorm.ErrRecordNotFound
// reports a missing user.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		videos := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.VideoContent{}).Select("id").Where("user_id = ?", id)
		stmts := []struct {
			sql  string
			args []any
		}{
			{"DELETE FROM video_tags WHERE video_content_id IN (?)", []any{videos}},
			{"DELETE FROM video_protocols WHERE video_content_id IN (?)", []any{videos}},
			{"DELETE FROM votes WHERE user_id = ? OR content_id IN (?)", []any{id, videos}},
			{"DELETE FROM video_contents WHERE user_id = ?", []any{id}},
			{"DELETE FROM texts WHERE user_id = ?", []any{id}},
			{"DELETE FROM user_tags WHERE user_id = ?", []any{id}},
			{"DELETE FROM user_protocols WHERE user_id = ?", []any{id}},
			{"DELETE FROM user_roles WHERE user_id = ?", []any{id}},
			{"DELETE FROM wallets WHERE user_id = ?", []any{id}},
			{"DELETE FROM social_handles WHERE user_id = ?", []any{id}},
			{"DELETE FROM onboarding_funnels WHERE user_id = ?", []any{id}},
			{"DELETE FROM creator_followers WHERE learner_id = ? OR creator_id = ?", []any{id, id}},
			{"DELETE FROM external_identities WHERE user_id = ?", []any{id}},
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt.sql, stmt.args...).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[models.User], error) {
	q := filter.Apply(r.DB(ctx).Model(&models.User{}))
	return repo.Paginate[models.User](q, params, "users.created_at ASC, users.id ASC")
}

// ReplaceTags makes tags the user's exact tag set.
func (r *repository) ReplaceTags(ctx context.Context, id uuid.UUID, tags []models.Tag) error {
	assoc := r.DB(ctx).Model(&models.User{ID: id}).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

// ReplaceProtocols makes protocols the user's exact protocol set.
func (r *repository) ReplaceProtocols(ctx context.Context, id uuid.UUID, protocols []models.Protocol) error {
	assoc := r.DB(ctx).Model(&models.User{ID: id}).Association("Protocols")
	if len(protocols) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(protocols)
}

func (r *repository) RoleIDs(ctx context.Context, id uuid.UUID) ([]uint, error) {
	var ids []uint
	err := r.DB(ctx).Table("user_roles").Where("user_id = ?", id).Pluck("role_id", &ids).Error
	return ids, err
}

func (r *repository) AppendRoles(ctx context.Context, id uuid.UUID, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.User{ID: id}).Association("Roles").Append(roles)
}

func (r *repository) ListRoles(ctx context.Context, id uuid.UUID) ([]models.Role, error) {
	var roles []models.Role
	err := r.DB(ctx).Model(&models.User{ID: id}).Order("roles.id").Association("Roles").Find(&roles)
	return roles, err
}

// UpsertSocialHandle inserts or overwrites the handle for (user, platform)
// and returns the stored row.
func (r *repository) UpsertSocialHandle(ctx context.Context, handle *models.SocialHandle) (*models.SocialHandle, error) {
	db := r.DB(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "updated_at"}),
	}).Create(handle).Error
	if err != nil {
		return nil, err
	}

	var stored models.SocialHandle
	if err := db.Where("user_id = ? AND platform = ?", handle.UserID, handle.Platform).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *repository) ListSocialHandles(ctx context.Context, id uuid.UUID) ([]models.SocialHandle, error) {
	handles := []models.SocialHandle{}
	err := r.DB(ctx).Where("user_id = ?", id).Order("platform").Find(&handles).Error
	return handles, err
}

// FollowedAmong reports which of creatorIDs the learner follows.
func (r *repository) FollowedAmong(ctx context.Context, learnerID uuid.UUID, creatorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(creatorIDs))
	if len(creatorIDs) == 0 || learnerID == uuid.Nil {
		return out, nil
	}
	var followed []uuid.UUID
	err := r.DB(ctx).Model(&models.CreatorFollower{}).
		Where("learner_id = ? AND creator_id IN ?", learnerID, creatorIDs).
		Pluck("creator_id", &followed).Error
	if err != nil {
		return nil, err
	}
	for _, id := range followed {
		out[id] = true
	}
	return out, nil
}
