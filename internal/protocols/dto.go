package protocols

import (
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
)

// ProtocolDTO is the API projection of a protocol.
type ProtocolDTO struct {
	ID             uint      `json:"id"`
	ExternalIDLama *string   `json:"externalIdLama,omitempty"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Logo           *string   `json:"logo"`
	Category       string    `json:"category"`
	URL            string    `json:"url"`
	Symbol         string    `json:"symbol"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func FromModel(p *models.Protocol) *ProtocolDTO {
	if p == nil {
		return nil
	}
	return &ProtocolDTO{
		ID:             p.ID,
		ExternalIDLama: p.ExternalIDLama,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Logo:           p.Logo,
		Category:       p.Category,
		URL:            p.URL,
		Symbol:         p.Symbol,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromModels(rows []models.Protocol) []ProtocolDTO {
	out := make([]ProtocolDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
