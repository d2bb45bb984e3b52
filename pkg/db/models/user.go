package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the aggregate root for wallets, social handles, onboarding funnels and
// linked external identities.
type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName           string    `gorm:"column:full_name;not null;default:''"`
	UserName           *string   `gorm:"column:user_name;uniqueIndex:idx_users_user_name"`
	Email              *string   `gorm:"column:email;uniqueIndex:idx_users_email"`
	Phone              string    `gorm:"column:phone;not null;default:''"`
	Gender             string    `gorm:"column:gender;not null;default:''"`
	ProfilePicture     string    `gorm:"column:profile_picture;not null;default:''"`
	ProfilePicturePath string    `gorm:"column:profile_picture_path;not null;default:''"`
	Title              string    `gorm:"column:title;not null;default:''"`
	Biography          string    `gorm:"column:biography;not null;default:''"`
	Sub                *string   `gorm:"column:sub;uniqueIndex:idx_users_sub"`

	Roles             []Role             `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE"`
	Tags              []Tag              `gorm:"many2many:user_tags;constraint:OnDelete:CASCADE"`
	Protocols         []Protocol         `gorm:"many2many:user_protocols;constraint:OnDelete:CASCADE"`
	Wallets           []Wallet           `gorm:"constraint:OnDelete:CASCADE"`
	SocialHandles     []SocialHandle     `gorm:"constraint:OnDelete:CASCADE"`
	OnBoardingFunnels []OnBoardingFunnel `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// HasRole reports whether the user currently holds a role by name.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
