package cron

import (
	"context"
	"errors"

	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

// Job is a scheduled task run by the cron service.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type tagImporter interface {
	FetchAndDump(ctx context.Context) (*tags.ImportResult, error)
}

type protocolImporter interface {
	FetchAndDump(ctx context.Context) (*protocols.ImportResult, error)
}

// NewTagSyncJob refreshes the tag catalog from the category feed.
func NewTagSyncJob(svc tagImporter, logg *logger.Logger) (Job, error) {
	if svc == nil {
		return nil, errors.New("tags importer required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &catalogJob{
		name: "tags.sync",
		logg: logg,
		run: func(ctx context.Context) (int, int64, error) {
			res, err := svc.FetchAndDump(ctx)
			if err != nil {
				return 0, 0, err
			}
			return res.Fetched, res.Inserted, nil
		},
	}, nil
}

// NewProtocolSyncJob refreshes the protocol catalog from the protocol feed.
func NewProtocolSyncJob(svc protocolImporter, logg *logger.Logger) (Job, error) {
	if svc == nil {
		return nil, errors.New("protocols importer required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &catalogJob{
		name: "protocols.sync",
		logg: logg,
		run: func(ctx context.Context) (int, int64, error) {
			res, err := svc.FetchAndDump(ctx)
			if err != nil {
				return 0, 0, err
			}
			return res.Fetched, res.Inserted, nil
		},
	}, nil
}

type catalogJob struct {
	name string
	logg *logger.Logger
	run  func(ctx context.Context) (fetched int, inserted int64, err error)
}

func (j *catalogJob) Name() string { return j.name }

func (j *catalogJob) Run(ctx context.Context) error {
	fetched, inserted, err := j.run(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"fetched":  fetched,
		"inserted": inserted,
	}), "catalog refreshed")
	return nil
}
