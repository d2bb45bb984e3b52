package tags

import (
	"regexp"
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
)

var whitespace = regexp.MustCompile(`\s`)

// TagDTO is the API projection of a tag. TagID is the slug.
type TagDTO struct {
	ID        uint      `json:"id"`
	TagID     string    `json:"tagId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateTagInput carries optional tag changes.
type UpdateTagInput struct {
	Name *string
}

// Slug derives a tag identifier: lowercase with each whitespace rune
// replaced by "-".
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func FromModel(t *models.Tag) *TagDTO {
	if t == nil {
		return nil
	}
	return &TagDTO{
		ID:        t.ID,
		TagID:     t.Slug,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromModels(rows []models.Tag) []TagDTO {
	out := make([]TagDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
