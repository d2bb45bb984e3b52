package content

import (
	"time"

	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/google/uuid"
)

// VideoDTO is the API projection of a video with its catalog links.
type VideoDTO struct {
	ID           uuid.UUID               `json:"id"`
	UserID       uuid.UUID               `json:"userId"`
	Title        string                  `json:"title"`
	URL          string                  `json:"url"`
	Description  string                  `json:"description"`
	Thumbnail    string                  `json:"thumbnail"`
	PersonalNote string                  `json:"personalNote"`
	UpVote       int                     `json:"upVote"`
	DownVote     int                     `json:"downVote"`
	Tags         []tags.TagDTO           `json:"tags"`
	Protocols    []protocols.ProtocolDTO `json:"protocols"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// VideoInput creates a video. Tag and protocol ids are resolved against the
// catalog; unknown ids are dropped.
type VideoInput struct {
	Title        string `json:"title" validate:"required,max=255"`
	URL          string `json:"url" validate:"required,url"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	PersonalNote string `json:"personalNote"`
	TagIDs       []uint `json:"tagIds"`
	ProtocolIDs  []uint `json:"protocolIds"`
}

// UpdateVideoInput carries optional changes. Nil id slices leave the links as
// they are; an empty slice clears them.
type UpdateVideoInput struct {
	Title        *string `json:"title" validate:"omitempty,max=255"`
	URL          *string `json:"url" validate:"omitempty,url"`
	Description  *string `json:"description"`
	Thumbnail    *string `json:"thumbnail"`
	PersonalNote *string `json:"personalNote"`
	TagIDs       []uint  `json:"tagIds"`
	ProtocolIDs  []uint  `json:"protocolIds"`
}

// ImportResult reports how many videos an import created.
type ImportResult struct {
	Imported int `json:"imported"`
}

// TextDTO is the API projection of a text post.
type TextDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Caption     string    `json:"caption"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TextInput struct {
	Content     string `json:"content" validate:"required"`
	URL         string `json:"url" validate:"omitempty,url"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
}

type UpdateTextInput struct {
	Content     *string `json:"content" validate:"omitempty,min=1"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Caption     *string `json:"caption"`
	Description *string `json:"description"`
}

func VideoFromModel(v *models.VideoContent) *VideoDTO {
	if v == nil {
		return nil
	}
	return &VideoDTO{
		ID:           v.ID,
		UserID:       v.UserID,
		Title:        v.Title,
		URL:          v.URL,
		Description:  v.Description,
		Thumbnail:    v.Thumbnail,
		PersonalNote: v.PersonalNote,
		UpVote:       v.UpVote,
		DownVote:     v.DownVote,
		Tags:         tags.FromModels(v.Tags),
		Protocols:    protocols.FromModels(v.Protocols),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func TextFromModel(t *models.Text) *TextDTO {
	if t == nil {
		return nil
	}
	return &TextDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		Content:     t.Content,
		URL:         t.URL,
		Caption:     t.Caption,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (in VideoInput) toModel(creatorID uuid.UUID) *models.VideoContent {
	return &models.VideoContent{
		UserID:       creatorID,
		Title:        in.Title,
		URL:          in.URL,
		Description:  in.Description,
		Thumbnail:    in.Thumbnail,
		PersonalNote: in.PersonalNote,
	}
}

func (in UpdateVideoInput) apply(v *models.VideoContent) {
	if in.Title != nil {
		v.Title = *in.Title
	}
	if in.URL != nil {
		v.URL = *in.URL
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.Thumbnail != nil {
		v.Thumbnail = *in.Thumbnail
	}
	if in.PersonalNote != nil {
		v.PersonalNote = *in.PersonalNote
	}
}

func (in UpdateTextInput) apply(t *models.Text) {
	if in.Content != nil {
		t.Content = *in.Content
	}
	if in.URL != nil {
		t.URL = *in.URL
	}
	if in.Caption != nil {
		t.Caption = *in.Caption
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
}
