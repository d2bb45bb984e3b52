package users

import (
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/internal/roles"
	"github.com/HarshArya1405/typescriptDemo/internal/wallets"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the flat API projection of a user.
type UserDTO struct {
	ID                 uuid.UUID `json:"id"`
	FullName           string    `json:"fullName"`
	UserName           *string   `json:"userName"`
	Email              *string   `json:"email"`
	Phone              string    `json:"phone"`
	Gender             string    `json:"gender"`
	ProfilePicture     string    `json:"profilePicture"`
	ProfilePicturePath string    `json:"profilePicturePath"`
	Title              string    `json:"title"`
	Biography          string    `json:"biography"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ProfilePicture is a readable picture URL plus the storage path it was
// signed from, if any.
type ProfilePicture struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UserDetailDTO is the full profile returned by Get.
type UserDetailDTO struct {
	ID                uuid.UUID                         `json:"id"`
	FullName          string                            `json:"fullName"`
	UserName          *string                           `json:"userName"`
	Email             *string                           `json:"email"`
	Phone             string                            `json:"phone"`
	Gender            string                            `json:"gender"`
	ProfilePicture    ProfilePicture                    `json:"profilePicture"`
	Title             string                            `json:"title"`
	Biography         string                            `json:"biography"`
	Sub               *string                           `json:"sub,omitempty"`
	Roles             []roles.RoleDTO                   `json:"roles"`
	SocialHandles     []SocialHandleDTO                 `json:"socialHandles"`
	Wallets           []wallets.WalletDTO               `json:"wallets"`
	OnBoardingFunnels map[string]enums.OnboardingStatus `json:"onBoardingFunnels"`
	CreatedAt         time.Time                         `json:"createdAt"`
	UpdatedAt         time.Time                         `json:"updatedAt"`
}

// CreatorDTO is a creator listing entry for one viewer.
type CreatorDTO struct {
	UserDTO
	Followed bool `json:"followed"`
}

// CreateUserInput is the payload for creating a user. Role names a role to
// grant; unknown names grant nothing.
type CreateUserInput struct {
	FullName           string  `json:"fullName" validate:"max=200"`
	UserName           *string `json:"userName" validate:"omitempty,max=100"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Phone              string  `json:"phone" validate:"max=40"`
	Gender             string  `json:"gender" validate:"max=40"`
	ProfilePicture     string  `json:"profilePicture"`
	ProfilePicturePath string  `json:"profilePicturePath"`
	Title              string  `json:"title" validate:"max=200"`
	Biography          string  `json:"biography"`
	Role               string  `json:"role"`
	Sub                *string `json:"-"`
}

// UpdateUserInput carries optional profile changes. Nil fields are left as is.
type UpdateUserInput struct {
	FullName           *string `json:"fullName" validate:"omitempty,max=200"`
	UserName           *string `json:"userName" validate:"omitempty,max=100"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Phone              *string `json:"phone" validate:"omitempty,max=40"`
	Gender             *string `json:"gender" validate:"omitempty,max=40"`
	ProfilePicture     *string `json:"profilePicture"`
	ProfilePicturePath *string `json:"profilePicturePath"`
	Title              *string `json:"title" validate:"omitempty,max=200"`
	Biography          *string `json:"biography"`
}

// SocialHandleDTO is the API projection of a social handle.
type SocialHandleDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveSocialHandleInput upserts the handle for one platform.
type SaveSocialHandleInput struct {
	Platform string `json:"platform" validate:"required,max=50"`
	URL      string `json:"url" validate:"required,url"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                 u.ID,
		FullName:           u.FullName,
		UserName:           u.UserName,
		Email:              u.Email,
		Phone:              u.Phone,
		Gender:             u.Gender,
		ProfilePicture:     u.ProfilePicture,
		ProfilePicturePath: u.ProfilePicturePath,
		Title:              u.Title,
		Biography:          u.Biography,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func detailFromModel(u *models.User, picture ProfilePicture) *UserDetailDTO {
	funnels := make(map[string]enums.OnboardingStatus, len(u.OnBoardingFunnels))
	for _, f := range u.OnBoardingFunnels {
		funnels[f.Stage] = f.Status
	}
	handles := make([]SocialHandleDTO, 0, len(u.SocialHandles))
	for i := range u.SocialHandles {
		handles = append(handles, socialHandleFromModel(&u.SocialHandles[i]))
	}
	return &UserDetailDTO{
		ID:                u.ID,
		FullName:          u.FullName,
		UserName:          u.UserName,
		Email:             u.Email,
		Phone:             u.Phone,
		Gender:            u.Gender,
		ProfilePicture:    picture,
		Title:             u.Title,
		Biography:         u.Biography,
		Sub:               u.Sub,
		Roles:             roles.FromModels(u.Roles),
		SocialHandles:     handles,
		Wallets:           wallets.FromModels(u.Wallets),
		OnBoardingFunnels: funnels,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func socialHandleFromModel(h *models.SocialHandle) SocialHandleDTO {
	return SocialHandleDTO{
		ID:        h.ID,
		UserID:    h.UserID,
		Platform:  h.Platform,
		URL:       h.URL,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

// ToModel builds the user row. Blank unique fields are stored as NULL so they
// never collide.
func (c CreateUserInput) ToModel() *models.User {
	return &models.User{
		FullName:           strings.TrimSpace(c.FullName),
		UserName:           normalizeOptional(c.UserName, false),
		Email:              normalizeOptional(c.Email, true),
		Phone:              strings.TrimSpace(c.Phone),
		Gender:             c.Gender,
		ProfilePicture:     c.ProfilePicture,
		ProfilePicturePath: c.ProfilePicturePath,
		Title:              c.Title,
		Biography:          c.Biography,
		Sub:                normalizeOptional(c.Sub, false),
	}
}

func normalizeOptional(value *string, lower bool) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	if lower {
		v = strings.ToLower(v)
	}
	return &v
}
