package onboarding

import (
	"context"
	"testing"

	"github.com/HarshArya1405/typescriptDemo/internal/users"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/dbtest"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), users.NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func seedUser(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{FullName: "Funnel"}
	require.NoError(t, conn.Create(&user).Error)
	return user.ID
}

func TestSetStageUpsertsByUserAndStage(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, conn)

	first, err := svc.SetStage(ctx, userID, SetStageInput{Stage: "profile", Status: "skipped", Role: "learner"})
	require.NoError(t, err)
	second, err := svc.SetStage(ctx, userID, SetStageInput{Stage: "profile", Status: "completed", Role: "creator"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, enums.OnboardingStatusCompleted, second.Status)
	assert.Equal(t, "learner", second.Role, "role is kept from creation")

	var count int64
	require.NoError(t, conn.Model(&models.OnBoardingFunnel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	all, err := svc.GetAll(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, map[string]enums.OnboardingStatus{"profile": enums.OnboardingStatusCompleted}, all)
}

func TestSetStageRejectsUnknownStatus(t *testing.T) {
	svc, conn := newTestService(t)
	userID := seedUser(t, conn)

	_, err := svc.SetStage(context.Background(), userID, SetStageInput{Stage: "profile", Status: "done"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUnknownUserIsNotFoundWithoutWrites(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := svc.SetStage(ctx, missing, SetStageInput{Stage: "profile", Status: "completed"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.GetAll(ctx, missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, conn.Model(&models.OnBoardingFunnel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteStageMatchesRole(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, conn)

	_, err := svc.SetStage(ctx, userID, SetStageInput{Stage: "interests", Status: "completed", Role: "learner"})
	require.NoError(t, err)

	err = svc.DeleteStage(ctx, userID, DeleteStageInput{Stage: "interests", Role: "creator"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.DeleteStage(ctx, userID, DeleteStageInput{Stage: "interests", Role: "learner"}))
	all, err := svc.GetAll(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, all)
}
