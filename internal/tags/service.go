package tags

import (
	"context"
	"errors"
	"strings"

	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/feeds"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"gorm.io/gorm"
)

const slugConstraint = "idx_tags_slug"

type categoryFeed interface {
	Categories(ctx context.Context) ([]feeds.Category, error)
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Fetched  int   `json:"fetched"`
	Inserted int64 `json:"inserted"`
}

// Service exposes tag catalog operations.
type Service interface {
	Create(ctx context.Context, name string) (*TagDTO, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[TagDTO], error)
	Update(ctx context.Context, id uint, input UpdateTagInput) (*TagDTO, error)
	Delete(ctx context.Context, id uint) error
	FetchAndDump(ctx context.Context) (*ImportResult, error)
}

type service struct {
	repo Repository
	feed categoryFeed
	logg *logger.Logger
}

// NewService builds a tag service. feed may be nil, in which case imports fail
// with a dependency error.
func NewService(repo Repository, feed categoryFeed, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("tags repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, feed: feed, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, name string) (*TagDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag name is required")
	}
	tag := &models.Tag{Slug: Slug(name), Name: name}
	if err := s.repo.Create(ctx, tag); err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.Conflict(err, "tag")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tag")
	}
	return FromModel(tag), nil
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[TagDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[TagDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	return toDTOPage(page), nil
}

// Update renames a tag. The slug follows the new name.
func (s *service) Update(ctx context.Context, id uint, input UpdateTagInput) (*TagDTO, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("tag")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tag")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag name cannot be empty")
		}
		tag.Name = name
		tag.Slug = Slug(name)
	}
	if err := s.repo.Update(ctx, tag); err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.Conflict(err, "tag")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tag")
	}
	return FromModel(tag), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("tag")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tag")
	}
	return nil
}

// FetchAndDump imports categories from the upstream feed. The feed id becomes
// the slug and existing slugs are skipped.
func (s *service) FetchAndDump(ctx context.Context) (*ImportResult, error) {
	if s.feed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tag feed not configured")
	}
	categories, err := s.feed.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch tag feed")
	}

	rows := make([]models.Tag, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		rows = append(rows, models.Tag{Slug: c.ID, Name: c.Name})
	}

	inserted, err := s.repo.CreateMissing(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store tags")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"fetched": len(categories), "inserted": inserted}), "tag feed imported")
	return &ImportResult{Fetched: len(categories), Inserted: inserted}, nil
}

func toDTOPage(page pagination.Page[models.Tag]) pagination.Page[TagDTO] {
	return pagination.Map(page, func(t models.Tag) TagDTO { return *FromModel(&t) })
}
