package content

import (
	"context"
	"testing"

	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/internal/users"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/dbtest"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc  Service
	conn *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()
	svc, err := NewService(ServiceParams{
		Videos:    NewVideoRepository(conn),
		Texts:     NewTextRepository(conn),
		Users:     users.NewRepository(conn),
		Tags:      tags.NewRepository(conn),
		Protocols: protocols.NewRepository(conn),
		Tx:        client,
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn}
}

func (f fixture) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := models.User{FullName: name}
	require.NoError(t, f.conn.Create(&u).Error)
	return u.ID
}

func (f fixture) tag(t *testing.T, name string) uint {
	t.Helper()
	tag := models.Tag{Name: name, Slug: tags.Slug(name)}
	require.NoError(t, f.conn.Create(&tag).Error)
	return tag.ID
}

func (f fixture) protocol(t *testing.T, name string) uint {
	t.Helper()
	p := models.Protocol{Name: name}
	require.NoError(t, f.conn.Create(&p).Error)
	return p.ID
}

func tagIDs(dtos []tags.TagDTO) []uint {
	out := make([]uint, len(dtos))
	for i, d := range dtos {
		out[i] = d.ID
	}
	return out
}

func TestCreateVideoResolvesCatalogLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, "Creator")
	defi, nft := f.tag(t, "DeFi"), f.tag(t, "NFT")
	aave := f.protocol(t, "Aave")

	video, err := f.svc.CreateVideo(ctx, creator, VideoInput{
		Title:       "Intro to lending",
		URL:         "https://videos.example.com/1",
		TagIDs:      []uint{defi, nft, defi, 999},
		ProtocolIDs: []uint{aave},
	})
	require.NoError(t, err)
	assert.Equal(t, creator, video.UserID)
	assert.ElementsMatch(t, []uint{defi, nft}, tagIDs(video.Tags))
	require.Len(t, video.Protocols, 1)
	assert.Equal(t, "Aave", video.Protocols[0].Name)
	assert.Zero(t, video.UpVote)
}

func TestCreateVideoTitleUniquePerCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, second := f.user(t, "First"), f.user(t, "Second")
	input := VideoInput{Title: "Same", URL: "https://videos.example.com/same"}

	_, err := f.svc.CreateVideo(ctx, first, input)
	require.NoError(t, err)
	_, err = f.svc.CreateVideo(ctx, first, input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.svc.CreateVideo(ctx, second, input)
	assert.NoError(t, err)
}

func TestCreateVideoUnknownCreator(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateVideo(context.Background(), uuid.New(), VideoInput{Title: "x", URL: "https://x.io"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestImportVideosAbortsOnFirstFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, "Creator")

	_, err := f.svc.ImportVideos(ctx, creator, []VideoInput{
		{Title: "One", URL: "https://v.io/1"},
		{Title: "One", URL: "https://v.io/2"},
		{Title: "Three", URL: "https://v.io/3"},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var n int64
	require.NoError(t, f.conn.Model(&models.VideoContent{}).Count(&n).Error)
	assert.Zero(t, n)

	result, err := f.svc.ImportVideos(ctx, creator, []VideoInput{
		{Title: "One", URL: "https://v.io/1"},
		{Title: "Two", URL: "https://v.io/2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
}

func TestListVideosFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob, carol := f.user(t, "Alice"), f.user(t, "Bob"), f.user(t, "Carol")
	tag := f.tag(t, "Staking")
	for _, c := range []struct {
		creator uuid.UUID
		title   string
	}{
		{alice, "Staking basics"},
		{alice, "Bridges"},
		{bob, "Advanced staking"},
		{carol, "Staking for carol"},
	} {
		_, err := f.svc.CreateVideo(ctx, c.creator, VideoInput{Title: c.title, URL: "https://v.io/x", TagIDs: []uint{tag}})
		require.NoError(t, err)
	}

	page, err := f.svc.ListVideos(ctx, ContentFilter{CreatorIDs: []uuid.UUID{alice, bob}, Title: "staking"}, pagination.Params{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	require.Len(t, page.Items, 1)
	assert.Len(t, page.Items[0].Tags, 1)

	all, err := f.svc.ListVideos(ctx, ContentFilter{}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Count)
}

func TestUpdateVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.user(t, "Creator")
	defi, nft := f.tag(t, "DeFi"), f.tag(t, "NFT")
	video, err := f.svc.CreateVideo(ctx, creator, VideoInput{Title: "A", URL: "https://v.io/a", TagIDs: []uint{defi}})
	require.NoError(t, err)
	_, err = f.svc.CreateVideo(ctx, creator, VideoInput{Title: "B", URL: "https://v.io/b"})
	require.NoError(t, err)

	note := "pinned"
	updated, err := f.svc.UpdateVideo(ctx, creator, video.ID, UpdateVideoInput{PersonalNote: &note})
	require.NoError(t, err)
	assert.Equal(t, "pinned", updated.PersonalNote)
	assert.Equal(t, []uint{defi}, tagIDs(updated.Tags), "nil ids keep links")

	updated, err = f.svc.UpdateVideo(ctx, creator, video.ID, UpdateVideoInput{TagIDs: []uint{nft}})
	require.NoError(t, err)
	assert.Equal(t, []uint{nft}, tagIDs(updated.Tags))

	updated, err = f.svc.UpdateVideo(ctx, creator, video.ID, UpdateVideoInput{TagIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	taken := "B"
	_, err = f.svc.UpdateVideo(ctx, creator, video.ID, UpdateVideoInput{Title: &taken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.svc.UpdateVideo(ctx, uuid.New(), video.ID, UpdateVideoInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteVideoScopedToCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator, viewer := f.user(t, "Creator"), f.user(t, "Viewer")
	tag := f.tag(t, "DeFi")
	video, err := f.svc.CreateVideo(ctx, creator, VideoInput{Title: "A", URL: "https://v.io/a", TagIDs: []uint{tag}})
	require.NoError(t, err)
	require.NoError(t, f.conn.Create(&models.Vote{UserID: viewer, ContentID: video.ID, VoteType: enums.VoteTypeUp}).Error)

	err = f.svc.DeleteVideo(ctx, viewer, video.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.GetVideo(ctx, creator, video.ID)
	require.NoError(t, err, "failed delete rolls back")

	require.NoError(t, f.svc.DeleteVideo(ctx, creator, video.ID))
	_, err = f.svc.GetVideo(ctx, creator, video.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var votes, links int64
	require.NoError(t, f.conn.Model(&models.Vote{}).Count(&votes).Error)
	require.NoError(t, f.conn.Table("video_tags").Count(&links).Error)
	assert.Zero(t, votes)
	assert.Zero(t, links)
}

func TestTextLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "Author")

	first, err := f.svc.CreateText(ctx, author, TextInput{Content: "Gas fees explained"})
	require.NoError(t, err)
	_, err = f.svc.CreateText(ctx, author, TextInput{Content: "Wallet hygiene"})
	require.NoError(t, err)

	page, err := f.svc.ListTexts(ctx, TextFilter{Content: "GAS"}, pagination.Params{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, first.ID, page.Items[0].ID)

	caption := "updated"
	updated, err := f.svc.UpdateText(ctx, author, first.ID, UpdateTextInput{Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Caption)
	assert.Equal(t, "Gas fees explained", updated.Content)

	require.NoError(t, f.svc.DeleteText(ctx, author, first.ID))
	_, err = f.svc.GetText(ctx, first.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(f.svc.DeleteText(ctx, author, first.ID), pkgerrors.CodeNotFound))

	_, err = f.svc.CreateText(ctx, uuid.New(), TextInput{Content: "orphan"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTextWritesAreOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "Author")
	other := f.user(t, "Other")

	text, err := f.svc.CreateText(ctx, author, TextInput{Content: "Bridging basics"})
	require.NoError(t, err)

	caption := "hijacked"
	_, err = f.svc.UpdateText(ctx, other, text.ID, UpdateTextInput{Caption: &caption})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.True(t, pkgerrors.IsCode(f.svc.DeleteText(ctx, other, text.ID), pkgerrors.CodeForbidden))

	kept, err := f.svc.GetText(ctx, text.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.Caption)

	caption = "moderated"
	updated, err := f.svc.UpdateText(ctx, uuid.Nil, text.ID, UpdateTextInput{Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Caption)
	require.NoError(t, f.svc.DeleteText(ctx, uuid.Nil, text.ID))
}
