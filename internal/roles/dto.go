package roles

import (
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
)

// RoleDTO is the API projection of a role.
type RoleDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRoleInput carries the fields for a new role.
type CreateRoleInput struct {
	Name        string
	Description string
	Enabled     *bool
}

// UpdateRoleInput carries optional role changes.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Enabled     *bool
}

func FromModel(r *models.Role) *RoleDTO {
	if r == nil {
		return nil
	}
	return &RoleDTO{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Enabled:     r.Enabled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromModels projects a slice of roles, never returning nil.
func FromModels(rows []models.Role) []RoleDTO {
	out := make([]RoleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
