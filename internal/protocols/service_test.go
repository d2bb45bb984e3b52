package protocols

import (
	"context"
	"testing"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/dbtest"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/feeds"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeed struct {
	items []feeds.Protocol
}

func (s stubFeed) Protocols(context.Context) ([]feeds.Protocol, error) {
	return s.items, nil
}

func strPtr(s string) *string { return &s }

func TestFetchAndDumpThenFilter(t *testing.T) {
	conn := dbtest.Open(t)
	feed := stubFeed{items: []feeds.Protocol{
		{ID: "1", Slug: "uniswap", Name: "Uniswap", Category: strPtr("Dexes"), Symbol: strPtr("UNI")},
		{ID: "2", Slug: "aave", Name: "Aave", Category: strPtr("Lending")},
		{ID: "3", Slug: "curve", Name: "Curve DEX", Category: strPtr("Dexes")},
		{ID: "4", Slug: "compound", Name: "Compound", Category: nil},
	}}
	svc, err := NewService(NewRepository(conn), feed, logger.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	res, err := svc.FetchAndDump(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Inserted)

	again, err := svc.FetchAndDump(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Inserted)

	dexes, err := svc.List(ctx, Filter{Category: "dex"}, pagination.Params{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, dexes.Count)
	require.Len(t, dexes.Items, 1)
	assert.Equal(t, "Uniswap", dexes.Items[0].Name)

	both, err := svc.List(ctx, Filter{Name: "curve", Category: "dexes"}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, both.Count)

	var compound models.Protocol
	require.NoError(t, conn.Where("slug = ?", "compound").First(&compound).Error)
	assert.Equal(t, "", compound.Category)
}

func TestFetchAndDumpWithoutFeed(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), nil, nil)
	require.NoError(t, err)
	_, err = svc.FetchAndDump(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
