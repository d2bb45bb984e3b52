package protocols

import (
	"context"
	"errors"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/feeds"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
)

type protocolFeed interface {
	Protocols(ctx context.Context) ([]feeds.Protocol, error)
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Fetched  int   `json:"fetched"`
	Inserted int64 `json:"inserted"`
}

// Service exposes the protocol catalog.
type Service interface {
	List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[ProtocolDTO], error)
	FetchAndDump(ctx context.Context) (*ImportResult, error)
}

type service struct {
	repo Repository
	feed protocolFeed
	logg *logger.Logger
}

// NewService builds a protocol service. feed may be nil.
func NewService(repo Repository, feed protocolFeed, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("protocols repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, feed: feed, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (pagination.Page[ProtocolDTO], error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[ProtocolDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list protocols")
	}
	return pagination.Map(page, func(p models.Protocol) ProtocolDTO { return *FromModel(&p) }), nil
}

// FetchAndDump imports the upstream protocol list, skipping protocols whose
// external id is already stored.
func (s *service) FetchAndDump(ctx context.Context) (*ImportResult, error) {
	if s.feed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "protocol feed not configured")
	}
	items, err := s.feed.Protocols(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch protocol feed")
	}

	rows := make([]models.Protocol, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		rows = append(rows, fromFeed(item))
	}

	inserted, err := s.repo.CreateMissing(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store protocols")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"fetched": len(items), "inserted": inserted}), "protocol feed imported")
	return &ImportResult{Fetched: len(items), Inserted: inserted}, nil
}

func fromFeed(p feeds.Protocol) models.Protocol {
	id := p.ID
	return models.Protocol{
		ExternalIDLama: &id,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    valueOrEmpty(p.Description),
		Logo:           p.Logo,
		Category:       valueOrEmpty(p.Category),
		URL:            valueOrEmpty(p.URL),
		Symbol:         valueOrEmpty(p.Symbol),
	}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
