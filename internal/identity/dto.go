package identity

import (
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/google/uuid"
)

// ReconcileInput is an identity-provider login payload.
type ReconcileInput struct {
	Sub            string `json:"sub" validate:"max=255"`
	Email          string `json:"email" validate:"omitempty,email"`
	FullName       string `json:"fullName"`
	UserName       string `json:"userName"`
	Phone          string `json:"phone"`
	Gender         string `json:"gender"`
	ProfilePicture string `json:"profilePicture"`
	Title          string `json:"title"`
	Biography      string `json:"biography"`
	Role           string `json:"role"`
}

// UpdateIdentityInput carries optional changes to a mirrored identity.
type UpdateIdentityInput struct {
	FullName       *string `json:"fullName"`
	UserName       *string `json:"userName"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone"`
	Gender         *string `json:"gender"`
	ProfilePicture *string `json:"profilePicture"`
	Title          *string `json:"title"`
	Biography      *string `json:"biography"`
}

// LinkInput names the primary account and the identity to link onto it.
type LinkInput struct {
	PrimaryUserID   string `json:"primaryUserId" validate:"required"`
	SecondaryUserID string `json:"secondaryUserId" validate:"required"`
}

// UnlinkInput names the identity to detach from the primary account.
type UnlinkInput struct {
	PrimaryUserID   string `json:"primaryUserId" validate:"required"`
	Provider        string `json:"provider" validate:"required"`
	SecondaryUserID string `json:"secondaryUserId" validate:"required"`
}

// IdentityDTO is the API projection of an external identity.
type IdentityDTO struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"userId"`
	Sub            string     `json:"sub"`
	Email          *string    `json:"email"`
	FullName       string     `json:"fullName"`
	UserName       string     `json:"userName"`
	ProfilePicture string     `json:"profilePicture"`
	Phone          string     `json:"phone"`
	Title          string     `json:"title"`
	Biography      string     `json:"biography"`
	Gender         string     `json:"gender"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func FromModel(e *models.ExternalIdentity) *IdentityDTO {
	if e == nil {
		return nil
	}
	return &IdentityDTO{
		ID:             e.ID,
		UserID:         e.UserID,
		Sub:            e.Sub,
		Email:          e.Email,
		FullName:       e.FullName,
		UserName:       e.UserName,
		ProfilePicture: e.ProfilePicture,
		Phone:          e.Phone,
		Title:          e.Title,
		Biography:      e.Biography,
		Gender:         e.Gender,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (in ReconcileInput) normalized() ReconcileInput {
	in.Sub = strings.TrimSpace(in.Sub)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.UserName = strings.TrimSpace(in.UserName)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Role = strings.TrimSpace(in.Role)
	return in
}

func (in ReconcileInput) identity(userID uuid.UUID) *models.ExternalIdentity {
	return &models.ExternalIdentity{
		UserID:         &userID,
		Sub:            in.Sub,
		Email:          optional(in.Email),
		FullName:       in.FullName,
		UserName:       in.UserName,
		ProfilePicture: in.ProfilePicture,
		Phone:          in.Phone,
		Title:          in.Title,
		Biography:      in.Biography,
		Gender:         in.Gender,
	}
}

func (in ReconcileInput) user() *models.User {
	return &models.User{
		FullName:       in.FullName,
		UserName:       optional(in.UserName),
		Email:          optional(in.Email),
		Phone:          in.Phone,
		Gender:         in.Gender,
		ProfilePicture: in.ProfilePicture,
		Title:          in.Title,
		Biography:      in.Biography,
		Sub:            optional(in.Sub),
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
