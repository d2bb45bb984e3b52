package models

import (
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet is a chain address owned by a user. Names are unique per user.
type Wallet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_user_name,priority:1"`
	Name      string          `gorm:"column:name;not null;uniqueIndex:idx_wallets_user_name,priority:2"`
	Address   string          `gorm:"column:address;not null"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(38,18);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Wallet) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}

// SocialHandle is a user's profile link on one platform.
type SocialHandle struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_social_handles_user_platform,priority:1"`
	Platform  string    `gorm:"column:platform;not null;uniqueIndex:idx_social_handles_user_platform,priority:2"`
	URL       string    `gorm:"column:url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SocialHandle) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// OnBoardingFunnel records the status of one onboarding stage for a user.
type OnBoardingFunnel struct {
	ID        uuid.UUID              `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_onboarding_user_stage,priority:1"`
	Stage     string                 `gorm:"column:stage;not null;uniqueIndex:idx_onboarding_user_stage,priority:2"`
	Status    enums.OnboardingStatus `gorm:"column:status;type:text;not null;default:'skipped'"`
	Role      string                 `gorm:"column:role;not null;default:''"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (OnBoardingFunnel) TableName() string {
	return "onboarding_funnels"
}

func (f *OnBoardingFunnel) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// ExternalIdentity mirrors an identity-provider profile. UserID stays nil until
// reconciliation links it.
type ExternalIdentity struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         *uuid.UUID `gorm:"type:uuid;index:idx_external_identities_user"`
	Sub            string     `gorm:"column:sub;not null;uniqueIndex:idx_external_identities_sub"`
	Email          *string    `gorm:"column:email;index:idx_external_identities_email"`
	FullName       string     `gorm:"column:full_name;not null;default:''"`
	UserName       string     `gorm:"column:user_name;not null;default:''"`
	ProfilePicture string     `gorm:"column:profile_picture;not null;default:''"`
	Phone          string     `gorm:"column:phone;not null;default:''"`
	Title          string     `gorm:"column:title;not null;default:''"`
	Biography      string     `gorm:"column:biography;not null;default:''"`
	Gender         string     `gorm:"column:gender;not null;default:''"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (e *ExternalIdentity) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// CreatorFollower is a learner following a creator. One row per pair.
type CreatorFollower struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creator_followers_pair,priority:1"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creator_followers_pair,priority:2;index:idx_creator_followers_creator"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Learner *User `gorm:"foreignKey:LearnerID;constraint:OnDelete:CASCADE"`
	Creator *User `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
}

func (c *CreatorFollower) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
