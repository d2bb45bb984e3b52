package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

type stubTagImporter struct {
	calls int
	err   error
}

func (s *stubTagImporter) FetchAndDump(context.Context) (*tags.ImportResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &tags.ImportResult{Fetched: 3, Inserted: 2}, nil
}

type stubProtocolImporter struct {
	calls int
}

func (s *stubProtocolImporter) FetchAndDump(context.Context) (*protocols.ImportResult, error) {
	s.calls++
	return &protocols.ImportResult{Fetched: 10, Inserted: 0}, nil
}

func TestCatalogJobsCallImporters(t *testing.T) {
	tagSvc := &stubTagImporter{}
	protocolSvc := &stubProtocolImporter{}

	tagJob, err := NewTagSyncJob(tagSvc, logger.Nop())
	require.NoError(t, err)
	protocolJob, err := NewProtocolSyncJob(protocolSvc, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "tags.sync", tagJob.Name())
	assert.Equal(t, "protocols.sync", protocolJob.Name())
	require.NoError(t, tagJob.Run(context.Background()))
	require.NoError(t, protocolJob.Run(context.Background()))
	assert.Equal(t, 1, tagSvc.calls)
	assert.Equal(t, 1, protocolSvc.calls)
}

func TestCatalogJobPropagatesImportError(t *testing.T) {
	job, err := NewTagSyncJob(&stubTagImporter{err: errors.New("feed unavailable")}, logger.Nop())
	require.NoError(t, err)
	assert.EqualError(t, job.Run(context.Background()), "feed unavailable")
}

func TestCatalogJobsRequireDependencies(t *testing.T) {
	_, err := NewTagSyncJob(nil, logger.Nop())
	assert.Error(t, err)
	_, err = NewProtocolSyncJob(&stubProtocolImporter{}, nil)
	assert.Error(t, err)
}
