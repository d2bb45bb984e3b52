// Package content manages creator videos, text posts and their catalog links.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const titleConstraint = "idx_video_contents_user_title"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type tagFinder interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
}

type protocolFinder interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Protocol, error)
}

// Service exposes video and text content operations.
type Service interface {
	CreateVideo(ctx context.Context, creatorID uuid.UUID, input VideoInput) (*VideoDTO, error)
	ImportVideos(ctx context.Context, creatorID uuid.UUID, inputs []VideoInput) (ImportResult, error)
	GetVideo(ctx context.Context, creatorID, id uuid.UUID) (*VideoDTO, error)
	ListVideos(ctx context.Context, filter ContentFilter, params pagination.Params) (pagination.Page[VideoDTO], error)
	UpdateVideo(ctx context.Context, creatorID, id uuid.UUID, input UpdateVideoInput) (*VideoDTO, error)
	DeleteVideo(ctx context.Context, creatorID, id uuid.UUID) error

	CreateText(ctx context.Context, userID uuid.UUID, input TextInput) (*TextDTO, error)
	GetText(ctx context.Context, id uuid.UUID) (*TextDTO, error)
	ListTexts(ctx context.Context, filter TextFilter, params pagination.Params) (pagination.Page[TextDTO], error)
	UpdateText(ctx context.Context, ownerID, id uuid.UUID, input UpdateTextInput) (*TextDTO, error)
	DeleteText(ctx context.Context, ownerID, id uuid.UUID) error
}

// ServiceParams bundles the content dependencies.
type ServiceParams struct {
	Videos    VideoRepository
	Texts     TextRepository
	Users     userChecker
	Tags      tagFinder
	Protocols protocolFinder
	Tx        txRunner
	Logger    *logger.Logger
}

type service struct {
	videos    VideoRepository
	texts     TextRepository
	users     userChecker
	tags      tagFinder
	protocols protocolFinder
	tx        txRunner
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Videos == nil:
		return nil, fmt.Errorf("video repository is required")
	case params.Texts == nil:
		return nil, fmt.Errorf("text repository is required")
	case params.Users == nil:
		return nil, fmt.Errorf("user checker is required")
	case params.Tags == nil:
		return nil, fmt.Errorf("tag finder is required")
	case params.Protocols == nil:
		return nil, fmt.Errorf("protocol finder is required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		videos:    params.Videos,
		texts:     params.Texts,
		users:     params.Users,
		tags:      params.Tags,
		protocols: params.Protocols,
		tx:        params.Tx,
		logg:      logg,
	}, nil
}

// links holds catalog rows resolved ahead of a write. A nil slice means the
// association is left untouched.
type links struct {
	tags      []models.Tag
	protocols []models.Protocol
}

func (s *service) resolveLinks(ctx context.Context, tagIDs, protocolIDs []uint) (links, error) {
	var out links
	if tagIDs != nil {
		found, err := s.tags.FindByIDs(ctx, dedupe(tagIDs))
		if err != nil {
			return out, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tags")
		}
		out.tags = found
	}
	if protocolIDs != nil {
		found, err := s.protocols.FindByIDs(ctx, dedupe(protocolIDs))
		if err != nil {
			return out, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load protocols")
		}
		out.protocols = found
	}
	return out, nil
}

func (s *service) writeLinks(ctx context.Context, videos VideoRepository, video *models.VideoContent, l links) error {
	if l.tags != nil {
		if err := videos.ReplaceTags(ctx, video, l.tags); err != nil {
			return err
		}
	}
	if l.protocols != nil {
		if err := videos.ReplaceProtocols(ctx, video, l.protocols); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ensureUser(ctx context.Context, id uuid.UUID) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !exists {
		return pkgerrors.NotFound("user")
	}
	return nil
}

// CreateVideo publishes a video for the creator. Titles are unique per creator.
func (s *service) CreateVideo(ctx context.Context, creatorID uuid.UUID, input VideoInput) (*VideoDTO, error) {
	result, err := s.importVideos(ctx, creatorID, []VideoInput{input})
	if err != nil {
		return nil, err
	}
	if len(result.videos) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "video not created")
	}
	return s.GetVideo(ctx, creatorID, result.videos[0])
}

type importOutcome struct {
	ImportResult
	videos []uuid.UUID
}

// ImportVideos creates every video in one transaction. The first failure
// aborts the import and nothing is kept.
func (s *service) ImportVideos(ctx context.Context, creatorID uuid.UUID, inputs []VideoInput) (ImportResult, error) {
	out, err := s.importVideos(ctx, creatorID, inputs)
	return out.ImportResult, err
}

func (s *service) importVideos(ctx context.Context, creatorID uuid.UUID, inputs []VideoInput) (importOutcome, error) {
	var out importOutcome
	if err := s.ensureUser(ctx, creatorID); err != nil {
		return out, err
	}
	if len(inputs) == 0 {
		return out, nil
	}

	resolved := make([]links, len(inputs))
	for i, in := range inputs {
		l, err := s.resolveLinks(ctx, nonNil(in.TagIDs), nonNil(in.ProtocolIDs))
		if err != nil {
			return out, err
		}
		resolved[i] = l
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		videos := s.videos.WithTx(tx)
		for i, in := range inputs {
			video := in.toModel(creatorID)
			if err := videos.Create(ctx, video); err != nil {
				return err
			}
			if err := s.writeLinks(ctx, videos, video, resolved[i]); err != nil {
				return err
			}
			out.videos = append(out.videos, video.ID)
		}
		return nil
	})
	if err != nil {
		return importOutcome{}, mapVideoWriteError(err, "create video")
	}
	out.Imported = len(out.videos)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"creator_id": creatorID.String(),
		"imported":   out.Imported,
	}), "videos created")
	return out, nil
}

func (s *service) GetVideo(ctx context.Context, creatorID, id uuid.UUID) (*VideoDTO, error) {
	video, err := s.loadVideo(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}
	return VideoFromModel(video), nil
}

func (s *service) ListVideos(ctx context.Context, filter ContentFilter, params pagination.Params) (pagination.Page[VideoDTO], error) {
	page, err := s.videos.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[VideoDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list videos")
	}
	return pagination.Map(page, func(v models.VideoContent) VideoDTO { return *VideoFromModel(&v) }), nil
}

func (s *service) UpdateVideo(ctx context.Context, creatorID, id uuid.UUID, input UpdateVideoInput) (*VideoDTO, error) {
	video, err := s.loadVideo(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}
	l, err := s.resolveLinks(ctx, input.TagIDs, input.ProtocolIDs)
	if err != nil {
		return nil, err
	}
	input.apply(video)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		videos := s.videos.WithTx(tx)
		if err := videos.Update(ctx, video); err != nil {
			return err
		}
		return s.writeLinks(ctx, videos, video, l)
	})
	if err != nil {
		return nil, mapVideoWriteError(err, "update video")
	}
	return s.GetVideo(ctx, creatorID, id)
}

func (s *service) DeleteVideo(ctx context.Context, creatorID, id uuid.UUID) error {
	if err := s.videos.Delete(ctx, creatorID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("video")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete video")
	}
	return nil
}

func (s *service) loadVideo(ctx context.Context, creatorID, id uuid.UUID) (*models.VideoContent, error) {
	video, err := s.videos.FindForCreator(ctx, creatorID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("video")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load video")
	}
	return video, nil
}

func (s *service) CreateText(ctx context.Context, userID uuid.UUID, input TextInput) (*TextDTO, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	text := &models.Text{
		UserID:      userID,
		Content:     input.Content,
		URL:         input.URL,
		Caption:     input.Caption,
		Description: input.Description,
	}
	if err := s.texts.Create(ctx, text); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create text")
	}
	return TextFromModel(text), nil
}

func (s *service) GetText(ctx context.Context, id uuid.UUID) (*TextDTO, error) {
	text, err := s.loadText(ctx, id)
	if err != nil {
		return nil, err
	}
	return TextFromModel(text), nil
}

func (s *service) ListTexts(ctx context.Context, filter TextFilter, params pagination.Params) (pagination.Page[TextDTO], error) {
	page, err := s.texts.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[TextDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list texts")
	}
	return pagination.Map(page, func(t models.Text) TextDTO { return *TextFromModel(&t) }), nil
}

// UpdateText edits a text owned by ownerID. uuid.Nil skips the owner check.
func (s *service) UpdateText(ctx context.Context, ownerID, id uuid.UUID, input UpdateTextInput) (*TextDTO, error) {
	text, err := s.loadOwnedText(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	input.apply(text)
	if err := s.texts.Update(ctx, text); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update text")
	}
	return TextFromModel(text), nil
}

func (s *service) DeleteText(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.loadOwnedText(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.texts.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("text")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete text")
	}
	return nil
}

func (s *service) loadText(ctx context.Context, id uuid.UUID) (*models.Text, error) {
	text, err := s.texts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("text")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load text")
	}
	return text, nil
}

func (s *service) loadOwnedText(ctx context.Context, ownerID, id uuid.UUID) (*models.Text, error) {
	text, err := s.loadText(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != uuid.Nil && text.UserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "text belongs to another user")
	}
	return text, nil
}

func mapVideoWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, titleConstraint) {
		return pkgerrors.Conflict(err, "video title")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

// nonNil returns nil for empty id lists so new videos skip association writes.
func nonNil(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
