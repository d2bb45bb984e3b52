package users

import (
	"context"
	"errors"
	"testing"

	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/roles"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/dbtest"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingAnalytics struct {
	created []uuid.UUID
	visited []string
}

func (r *recordingAnalytics) UserCreated(_ context.Context, user models.User) {
	r.created = append(r.created, user.ID)
}

func (r *recordingAnalytics) ProfileVisited(_ context.Context, userID string) {
	r.visited = append(r.visited, userID)
}

type stubSigner struct {
	err error
}

func (s stubSigner) SignedReadURL(_ context.Context, objectPath string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example/" + objectPath + "?sig=1", nil
}

type fixture struct {
	svc       Service
	conn      *gorm.DB
	analytics *recordingAnalytics
}

func newFixture(t *testing.T, signer pictureSigner) fixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()
	rec := &recordingAnalytics{}

	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Tx:        client,
		Tags:      tags.NewRepository(conn),
		Protocols: protocols.NewRepository(conn),
		Roles:     roles.NewRepository(conn),
		Signer:    signer,
		Analytics: rec,
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, analytics: rec}
}

func strPtr(s string) *string { return &s }

func (f fixture) createUser(t *testing.T, email string) *UserDTO {
	t.Helper()
	user, err := f.svc.Create(context.Background(), CreateUserInput{FullName: "Test " + email, Email: strPtr(email)})
	require.NoError(t, err)
	return user
}

func (f fixture) seedTags(t *testing.T, names ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Slug: tags.Slug(name), Name: name}
		require.NoError(t, f.conn.Create(&tag).Error)
		ids = append(ids, tag.ID)
	}
	return ids
}

func (f fixture) seedRoles(t *testing.T, names ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		role := models.Role{Name: name, Enabled: true}
		require.NoError(t, f.conn.Create(&role).Error)
		ids = append(ids, role.ID)
	}
	return ids
}

func tagSlugs(items []tags.TagDTO) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.TagID)
	}
	return out
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := f.createUser(t, "ada@example.com")
	assert.Equal(t, []uuid.UUID{first.ID}, f.analytics.created)

	_, err := f.svc.Create(ctx, CreateUserInput{FullName: "Other", Email: strPtr("ADA@example.com ")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Len(t, f.analytics.created, 1)

	var count int64
	require.NoError(t, f.conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateUserGrantsNamedRole(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedRoles(t, "creator")

	created, err := f.svc.Create(ctx, CreateUserInput{Email: strPtr("c@example.com"), Role: "Creator"})
	require.NoError(t, err)
	detail, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Roles, 1)
	assert.Equal(t, "creator", detail.Roles[0].Name)

	plain, err := f.svc.Create(ctx, CreateUserInput{Email: strPtr("p@example.com"), Role: "wizard"})
	require.NoError(t, err)
	detail, err = f.svc.Get(ctx, plain.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Roles)
}

func TestReplaceTagsLeavesExactSet(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.createUser(t, "tags@example.com")
	ids := f.seedTags(t, "one", "two", "three", "four")

	_, err := f.svc.ReplaceTags(ctx, user.ID, ids[:3])
	require.NoError(t, err)
	got, err := f.svc.ReplaceTags(ctx, user.ID, []uint{ids[2], ids[3], 9999})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"three", "four"}, tagSlugs(got))

	page, err := f.svc.ListTags(ctx, user.ID, tags.Filter{}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	assert.ElementsMatch(t, []string{"three", "four"}, tagSlugs(page.Items))

	_, err = f.svc.ReplaceTags(ctx, user.ID, nil)
	require.NoError(t, err)
	page, err = f.svc.ListTags(ctx, user.ID, tags.Filter{}, pagination.Params{})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestListTagsCountIgnoresPagination(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.createUser(t, "count@example.com")
	ids := f.seedTags(t, "defi", "defi lending", "gaming", "defi options", "nft")

	_, err := f.svc.ReplaceTags(ctx, user.ID, ids)
	require.NoError(t, err)

	page, err := f.svc.ListTags(ctx, user.ID, tags.Filter{Name: "defi"}, pagination.Params{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	assert.Len(t, page.Items, 1)

	beyond, err := f.svc.ListTags(ctx, user.ID, tags.Filter{Name: "defi"}, pagination.Params{Offset: 10, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 3, beyond.Count)
	assert.Empty(t, beyond.Items)
}

func TestReplaceProtocols(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.createUser(t, "proto@example.com")

	rows := []models.Protocol{{Name: "Aave", Category: "Lending"}, {Name: "Uniswap", Category: "Dexes"}}
	require.NoError(t, f.conn.Create(&rows).Error)

	got, err := f.svc.ReplaceProtocols(ctx, user.ID, []uint{rows[0].ID, rows[1].ID, rows[1].ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	page, err := f.svc.ListProtocols(ctx, user.ID, protocols.Filter{Category: "dex"}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)
	assert.Equal(t, "Uniswap", page.Items[0].Name)
}

func TestUpdateRolesIsAdditive(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.createUser(t, "roles@example.com")
	ids := f.seedRoles(t, "learner", "creator")

	got, err := f.svc.UpdateRoles(ctx, user.ID, []uint{ids[0]})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = f.svc.UpdateRoles(ctx, user.ID, []uint{ids[1], 4242})
	require.NoError(t, err)
	names := []string{}
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"learner", "creator"}, names)

	got, err = f.svc.UpdateRoles(ctx, user.ID, []uint{ids[0]})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSaveSocialHandleIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.createUser(t, "social@example.com")

	first, err := f.svc.SaveSocialHandle(ctx, user.ID, SaveSocialHandleInput{Platform: "x", URL: "https://x.com/a"})
	require.NoError(t, err)
	second, err := f.svc.SaveSocialHandle(ctx, user.ID, SaveSocialHandleInput{Platform: "x", URL: "https://x.com/b"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "https://x.com/b", second.URL)

	handles, err := f.svc.ListSocialHandles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, "https://x.com/b", handles[0].URL)
}

func TestUnknownUserFailsWithoutWrites(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tagIDs := f.seedTags(t, "defi")
	roleIDs := f.seedRoles(t, "learner")
	missing := uuid.New()

	_, err := f.svc.ReplaceTags(ctx, missing, tagIDs)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.ReplaceProtocols(ctx, missing, []uint{1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.UpdateRoles(ctx, missing, roleIDs)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.ListTags(ctx, missing, tags.Filter{}, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.SaveSocialHandle(ctx, missing, SaveSocialHandleInput{Platform: "x", URL: "https://x.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Get(ctx, missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.Update(ctx, missing, UpdateUserInput{FullName: strPtr("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	for _, table := range []string{"user_tags", "user_protocols", "user_roles", "social_handles"} {
		var count int64
		require.NoError(t, f.conn.Table(table).Count(&count).Error)
		assert.Zero(t, count, table)
	}
	assert.Empty(t, f.analytics.visited)
}

func TestUpdateUserConflictsOnTakenUserName(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := f.createUser(t, "a@example.com")
	b := f.createUser(t, "b@example.com")

	_, err := f.svc.Update(ctx, a.ID, UpdateUserInput{UserName: strPtr("satoshi"), Title: strPtr("Founder")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, b.ID, UpdateUserInput{UserName: strPtr("satoshi")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	_, err = f.svc.Update(ctx, b.ID, UpdateUserInput{Email: strPtr("A@example.com")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	updated, err := f.svc.Update(ctx, b.ID, UpdateUserInput{FullName: strPtr("Bea")})
	require.NoError(t, err)
	assert.Equal(t, "Bea", updated.FullName)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "b@example.com", *updated.Email)
}

func TestGetBuildsProfile(t *testing.T) {
	f := newFixture(t, stubSigner{})
	ctx := context.Background()
	user, err := f.svc.Create(ctx, CreateUserInput{
		Email:              strPtr("get@example.com"),
		ProfilePicture:     "https://cdn.example/old.png",
		ProfilePicturePath: "valu/pic.png",
	})
	require.NoError(t, err)

	require.NoError(t, f.conn.Create(&models.OnBoardingFunnel{UserID: user.ID, Stage: "profile", Status: enums.OnboardingStatusCompleted}).Error)
	require.NoError(t, f.conn.Create(&models.Wallet{UserID: user.ID, Name: "siwe", Address: "0xabc"}).Error)

	detail, err := f.svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/valu/pic.png?sig=1", detail.ProfilePicture.URL)
	assert.Equal(t, "valu/pic.png", detail.ProfilePicture.Path)
	assert.Equal(t, map[string]enums.OnboardingStatus{"profile": enums.OnboardingStatusCompleted}, detail.OnBoardingFunnels)
	require.Len(t, detail.Wallets, 1)
	assert.Equal(t, "0xabc", detail.Wallets[0].Address)
	assert.Equal(t, []string{user.ID.String()}, f.analytics.visited)
}

func TestGetFallsBackToStoredPicture(t *testing.T) {
	f := newFixture(t, stubSigner{err: errors.New("no credentials")})
	ctx := context.Background()
	user, err := f.svc.Create(ctx, CreateUserInput{ProfilePicture: "https://cdn.example/a.png", ProfilePicturePath: "valu/a.png"})
	require.NoError(t, err)
	plain, err := f.svc.Create(ctx, CreateUserInput{ProfilePicture: "https://cdn.example/b.png"})
	require.NoError(t, err)

	detail, err := f.svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, ProfilePicture{URL: "https://cdn.example/a.png", Path: "valu/a.png"}, detail.ProfilePicture)

	detail, err = f.svc.Get(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, ProfilePicture{URL: "https://cdn.example/b.png"}, detail.ProfilePicture)
}

func TestListUsersFilters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, email := range []string{"anna@valu.io", "ben@valu.io", "cara@other.io"} {
		f.createUser(t, email)
	}

	page, err := f.svc.List(ctx, Filter{Email: "valu.io"}, pagination.Params{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	assert.Len(t, page.Items, 1)
}

func TestListCreatorsFlagsFollowed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedRoles(t, "creator")

	learner := f.createUser(t, "learner@example.com")
	followed, err := f.svc.Create(ctx, CreateUserInput{Email: strPtr("c1@example.com"), Role: "creator"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateUserInput{Email: strPtr("c2@example.com"), Role: "creator"})
	require.NoError(t, err)
	require.NoError(t, f.conn.Create(&models.CreatorFollower{LearnerID: learner.ID, CreatorID: followed.ID}).Error)

	page, err := f.svc.ListCreators(ctx, learner.ID, Filter{}, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	flags := map[uuid.UUID]bool{}
	for _, c := range page.Items {
		flags[c.ID] = c.Followed
	}
	assert.True(t, flags[followed.ID])
	assert.Len(t, flags, 2)
	assert.NotContains(t, flags, learner.ID)
}

func TestDeleteUserRemovesOwnedRows(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	user := f.createUser(t, "gone@example.com")
	other := f.createUser(t, "stay@example.com")

	_, err := f.svc.ReplaceTags(ctx, user.ID, f.seedTags(t, "defi"))
	require.NoError(t, err)
	_, err = f.svc.SaveSocialHandle(ctx, user.ID, SaveSocialHandleInput{Platform: "x", URL: "https://x.com/gone"})
	require.NoError(t, err)
	require.NoError(t, f.conn.Create(&models.CreatorFollower{LearnerID: other.ID, CreatorID: user.ID}).Error)

	require.NoError(t, f.svc.Delete(ctx, user.ID))
	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, user.ID), pkgerrors.CodeNotFound))

	for _, table := range []string{"user_tags", "social_handles", "creator_followers"} {
		var count int64
		require.NoError(t, f.conn.Table(table).Count(&count).Error)
		assert.Zero(t, count, table)
	}
	var tagCount int64
	require.NoError(t, f.conn.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.EqualValues(t, 1, tagCount)
}
