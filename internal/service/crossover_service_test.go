package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codex/internal/models"
	"codex/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type crossoverFixture struct {
	db        *gorm.DB
	svc       *CrossoverService
	requester models.User
	target    models.User
	outsider  models.User
	// requester owns greek, target owns norse
	greek models.Mythology
	norse models.Mythology
}

func setupCrossoverFixture(t *testing.T) *crossoverFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Mythology{},
		&models.Figure{},
		&models.CrossoverRequest{},
		&models.MythologyAlliance{},
		&models.CrossoverStory{},
	))

	f := &crossoverFixture{db: db}
	f.svc = NewCrossoverService(db,
		repository.NewCrossoverRepository(db),
		repository.NewAllianceRepository(db),
		repository.NewStoryRepository(db),
		repository.NewMythologyRepository(db),
	)

	f.requester = models.User{Username: "althea", Email: "althea@example.com", Password: "pw"}
	f.target = models.User{Username: "bram", Email: "bram@example.com", Password: "pw"}
	f.outsider = models.User{Username: "cass", Email: "cass@example.com", Password: "pw"}
	require.NoError(t, db.Create(&f.requester).Error)
	require.NoError(t, db.Create(&f.target).Error)
	require.NoError(t, db.Create(&f.outsider).Error)

	f.greek = models.Mythology{UserID: f.requester.ID, Name: "Olympus Reborn", Slug: "olympus-reborn", IsPublic: true}
	f.norse = models.Mythology{UserID: f.target.ID, Name: "Nine Realms", Slug: "nine-realms", IsPublic: true}
	require.NoError(t, db.Create(&f.greek).Error)
	require.NoError(t, db.Create(&f.norse).Error)

	return f
}

func (f *crossoverFixture) pendingRequest(t *testing.T, requestType models.CrossoverRequestType) *models.CrossoverRequest {
	t.Helper()
	request := &models.CrossoverRequest{
		RequesterID:          f.requester.ID,
		TargetUserID:         f.target.ID,
		RequesterMythologyID: f.greek.ID,
		TargetMythologyID:    f.norse.ID,
		RequestType:          requestType,
		Status:               models.CrossoverRequestStatusPending,
		Message:              "shall our worlds meet?",
	}
	require.NoError(t, f.db.Create(request).Error)
	return request
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestCrossoverService_Create(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()

	t.Run("creates pending request", func(t *testing.T) {
		request, err := f.svc.Create(ctx, f.requester.ID, CreateCrossoverRequestInput{
			RequesterMythologyID: f.greek.ID,
			TargetMythologyID:    f.norse.ID,
			RequestType:          models.CrossoverRequestTypeAlliance,
			Message:              "join forces",
		})
		require.NoError(t, err)
		assert.Equal(t, models.CrossoverRequestStatusPending, request.Status)
		assert.Equal(t, f.target.ID, request.TargetUserID)
		assert.NotNil(t, request.RequesterMythology)
	})

	t.Run("rejects duplicate pending pair", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.requester.ID, CreateCrossoverRequestInput{
			RequesterMythologyID: f.greek.ID,
			TargetMythologyID:    f.norse.ID,
			RequestType:          models.CrossoverRequestTypeStory,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})

	t.Run("rejects unknown request type", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.requester.ID, CreateCrossoverRequestInput{
			RequesterMythologyID: f.greek.ID,
			TargetMythologyID:    f.norse.ID,
			RequestType:          "duel",
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})

	t.Run("rejects self-crossover", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.requester.ID, CreateCrossoverRequestInput{
			RequesterMythologyID: f.greek.ID,
			TargetMythologyID:    f.greek.ID,
			RequestType:          models.CrossoverRequestTypeAlliance,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})

	t.Run("rejects sending from someone else's mythology", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.outsider.ID, CreateCrossoverRequestInput{
			RequesterMythologyID: f.greek.ID,
			TargetMythologyID:    f.norse.ID,
			RequestType:          models.CrossoverRequestTypeAlliance,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appErrCode(t, err))
	})

	t.Run("rejects targeting your own other mythology", func(t *testing.T) {
		second := models.Mythology{UserID: f.requester.ID, Name: "Second World", Slug: "second-world"}
		require.NoError(t, f.db.Create(&second).Error)

		_, err := f.svc.Create(ctx, f.requester.ID, CreateCrossoverRequestInput{
			RequesterMythologyID: f.greek.ID,
			TargetMythologyID:    second.ID,
			RequestType:          models.CrossoverRequestTypeTrade,
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})
}

func TestCrossoverService_Respond_ValidationOrder(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)

	t.Run("invalid action wins over everything", func(t *testing.T) {
		// Even with an unknown request ID the action check fires first.
		_, err := f.svc.Respond(ctx, 99999, f.outsider.ID, "approve", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidAction, appErrCode(t, err))
	})

	t.Run("unknown request is not found", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, 99999, f.target.ID, "accept", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
	})

	t.Run("non-party is forbidden", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, request.ID, f.outsider.ID, "accept", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appErrCode(t, err))
	})

	t.Run("target cannot cancel", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, request.ID, f.target.ID, "cancel", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appErrCode(t, err))
	})

	t.Run("requester cannot accept", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, request.ID, f.requester.ID, "accept", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appErrCode(t, err))
	})

	t.Run("requester cannot decline", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, request.ID, f.requester.ID, "decline", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appErrCode(t, err))
	})
}

func TestCrossoverService_Respond_AcceptAlliance(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)

	resolved, err := f.svc.Respond(ctx, request.ID, f.target.ID, "accept", "gladly")
	require.NoError(t, err)

	assert.Equal(t, models.CrossoverRequestStatusAccepted, resolved.Status)
	assert.Equal(t, "gladly", resolved.ResponseMessage)
	require.NotNil(t, resolved.RespondedAt)
	require.NotNil(t, resolved.CompletedAt)

	var alliance models.MythologyAlliance
	require.NoError(t, f.db.First(&alliance).Error)
	assert.Equal(t, models.AllianceRelationshipAlliance, alliance.RelationshipType)
	assert.True(t, alliance.IsActive)
	assert.Equal(t, request.ID, alliance.FormedFromRequestID)

	// Pair stored in canonical order regardless of request direction.
	m1, m2 := models.CanonicalPair(f.greek.ID, f.norse.ID)
	assert.Equal(t, m1, alliance.Mythology1ID)
	assert.Equal(t, m2, alliance.Mythology2ID)
}

func TestCrossoverService_Respond_AcceptRetypesExistingAlliance(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()

	first := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
	_, err := f.svc.Respond(ctx, first.ID, f.target.ID, "accept", "")
	require.NoError(t, err)

	// Deactivate, then accept a conflict request for the same pair in the
	// reverse direction: the single row is retyped and reactivated.
	require.NoError(t, f.db.Model(&models.MythologyAlliance{}).
		Where("formed_from_request_id = ?", first.ID).
		Update("is_active", false).Error)

	reverse := &models.CrossoverRequest{
		RequesterID:          f.target.ID,
		TargetUserID:         f.requester.ID,
		RequesterMythologyID: f.norse.ID,
		TargetMythologyID:    f.greek.ID,
		RequestType:          models.CrossoverRequestTypeConflict,
		Status:               models.CrossoverRequestStatusPending,
	}
	require.NoError(t, f.db.Create(reverse).Error)

	_, err = f.svc.Respond(ctx, reverse.ID, f.requester.ID, "accept", "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.MythologyAlliance{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one relationship row per mythology pair")

	var alliance models.MythologyAlliance
	require.NoError(t, f.db.First(&alliance).Error)
	assert.Equal(t, models.AllianceRelationshipConflict, alliance.RelationshipType)
	assert.True(t, alliance.IsActive)
	assert.Equal(t, first.ID, alliance.FormedFromRequestID, "originating request is preserved on retype")
}

func TestCrossoverService_Respond_AcceptTradeMapsToTradeRelationship(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	request := f.pendingRequest(t, models.CrossoverRequestTypeTrade)

	_, err := f.svc.Respond(ctx, request.ID, f.target.ID, "accept", "")
	require.NoError(t, err)

	var alliance models.MythologyAlliance
	require.NoError(t, f.db.First(&alliance).Error)
	assert.Equal(t, models.AllianceRelationshipTradePartners, alliance.RelationshipType)
}

func TestCrossoverService_Respond_AcceptStory(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	request := f.pendingRequest(t, models.CrossoverRequestTypeStory)

	resolved, err := f.svc.Respond(ctx, request.ID, f.target.ID, "accept", "")
	require.NoError(t, err)
	assert.Equal(t, models.CrossoverRequestStatusAccepted, resolved.Status)

	var story models.CrossoverStory
	require.NoError(t, f.db.First(&story).Error)
	assert.Equal(t, models.DefaultCrossoverStoryTitle, story.Title)
	assert.Equal(t, "crossover", story.StoryType)
	assert.Equal(t, models.CrossoverStoryStatusDraft, story.Status)
	assert.Equal(t, f.requester.ID, story.Author1ID)
	assert.Equal(t, f.target.ID, story.Author2ID)

	var allianceCount int64
	require.NoError(t, f.db.Model(&models.MythologyAlliance{}).Count(&allianceCount).Error)
	assert.Zero(t, allianceCount, "story acceptance does not form an alliance")
}

func TestCrossoverService_Respond_DeclineAndCancel(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()

	t.Run("target declines", func(t *testing.T) {
		request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
		resolved, err := f.svc.Respond(ctx, request.ID, f.target.ID, "decline", "not this time")
		require.NoError(t, err)
		assert.Equal(t, models.CrossoverRequestStatusDeclined, resolved.Status)
		assert.Equal(t, "not this time", resolved.ResponseMessage)
		require.NotNil(t, resolved.RespondedAt)
		assert.Nil(t, resolved.CompletedAt, "decline has no completion side effect")

		var allianceCount int64
		require.NoError(t, f.db.Model(&models.MythologyAlliance{}).Count(&allianceCount).Error)
		assert.Zero(t, allianceCount)
		require.NoError(t, f.db.Delete(&models.CrossoverRequest{}, request.ID).Error)
	})

	t.Run("requester cancels", func(t *testing.T) {
		request := f.pendingRequest(t, models.CrossoverRequestTypeStory)
		resolved, err := f.svc.Respond(ctx, request.ID, f.requester.ID, "cancel", "")
		require.NoError(t, err)
		assert.Equal(t, models.CrossoverRequestStatusCancelled, resolved.Status)

		var storyCount int64
		require.NoError(t, f.db.Model(&models.CrossoverStory{}).Count(&storyCount).Error)
		assert.Zero(t, storyCount)
	})
}

func TestCrossoverService_Respond_TerminalStatesAreImmutable(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()

	for _, status := range []models.CrossoverRequestStatus{
		models.CrossoverRequestStatusAccepted,
		models.CrossoverRequestStatusDeclined,
		models.CrossoverRequestStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
			require.NoError(t, f.db.Model(&models.CrossoverRequest{}).
				Where("id = ?", request.ID).
				Update("status", status).Error)

			_, err := f.svc.Respond(ctx, request.ID, f.target.ID, "accept", "")
			require.Error(t, err)
			assert.Equal(t, models.CodeInvalidState, appErrCode(t, err))
			assert.Contains(t, err.Error(), string(status), "error names the current status")

			require.NoError(t, f.db.Unscoped().Delete(&models.CrossoverRequest{}, request.ID).Error)
		})
	}
}

func TestCrossoverService_Respond_AcceptFailureRollsBack(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	request := f.pendingRequest(t, models.CrossoverRequestTypeStory)

	svc := NewCrossoverService(f.db,
		repository.NewCrossoverRepository(f.db),
		repository.NewAllianceRepository(f.db),
		failingStoryRepo{},
		repository.NewMythologyRepository(f.db),
	)

	_, err := svc.Respond(ctx, request.ID, f.target.ID, "accept", "")
	require.Error(t, err)

	// The status transition must roll back with the failed side effect.
	var reloaded models.CrossoverRequest
	require.NoError(t, f.db.First(&reloaded, request.ID).Error)
	assert.Equal(t, models.CrossoverRequestStatusPending, reloaded.Status)
	assert.Nil(t, reloaded.CompletedAt)
}

// failingStoryRepo simulates a persistence failure inside the accept transaction.
type failingStoryRepo struct{}

func (failingStoryRepo) Create(context.Context, *models.CrossoverStory) error {
	return errors.New("disk full")
}
func (failingStoryRepo) GetByID(context.Context, uint) (*models.CrossoverStory, error) {
	return nil, errors.New("not implemented")
}
func (failingStoryRepo) GetForUser(context.Context, uint) ([]models.CrossoverStory, error) {
	return nil, errors.New("not implemented")
}
func (failingStoryRepo) GetForMythology(context.Context, uint) ([]models.CrossoverStory, error) {
	return nil, errors.New("not implemented")
}
func (failingStoryRepo) Update(context.Context, *models.CrossoverStory) error {
	return errors.New("not implemented")
}
func (r failingStoryRepo) WithTx(*gorm.DB) repository.StoryRepository { return r }

func TestCrossoverService_Delete(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()

	t.Run("pending request cannot be deleted", func(t *testing.T) {
		request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
		err := f.svc.Delete(ctx, request.ID, f.requester.ID)
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidState, appErrCode(t, err))
	})

	t.Run("non-party cannot delete", func(t *testing.T) {
		var request models.CrossoverRequest
		require.NoError(t, f.db.First(&request).Error)
		require.NoError(t, f.db.Model(&request).Update("status", models.CrossoverRequestStatusDeclined).Error)

		err := f.svc.Delete(ctx, request.ID, f.outsider.ID)
		require.Error(t, err)
		assert.Equal(t, models.CodeForbidden, appErrCode(t, err))
	})

	t.Run("party deletes resolved request", func(t *testing.T) {
		var request models.CrossoverRequest
		require.NoError(t, f.db.First(&request).Error)

		require.NoError(t, f.svc.Delete(ctx, request.ID, f.target.ID))

		var count int64
		require.NoError(t, f.db.Model(&models.CrossoverRequest{}).Where("id = ?", request.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestCrossoverService_Listings(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)

	incoming, err := f.svc.GetIncoming(ctx, f.target.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, request.ID, incoming[0].ID)

	// Incoming lists pending only.
	incomingForRequester, err := f.svc.GetIncoming(ctx, f.requester.ID)
	require.NoError(t, err)
	assert.Empty(t, incomingForRequester)

	sent, err := f.svc.GetSent(ctx, f.requester.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)

	_, err = f.svc.Respond(ctx, request.ID, f.target.ID, "accept", "")
	require.NoError(t, err)

	// Resolved requests leave the incoming listing but stay in sent.
	incoming, err = f.svc.GetIncoming(ctx, f.target.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	alliances, err := f.svc.GetAlliances(ctx, f.requester.ID, 0)
	require.NoError(t, err)
	assert.Len(t, alliances, 1)

	byMythology, err := f.svc.GetAlliances(ctx, f.outsider.ID, f.greek.ID)
	require.NoError(t, err)
	assert.Len(t, byMythology, 1)
}

func TestCrossoverService_ListByStatus(t *testing.T) {
	f := setupCrossoverFixture(t)
	ctx := context.Background()
	f.pendingRequest(t, models.CrossoverRequestTypeAlliance)

	pending, err := f.svc.ListByStatus(ctx, models.CrossoverRequestStatusPending, 50, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := f.svc.ListByStatus(ctx, "", 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.ListByStatus(ctx, "archived", 50, 0)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, appErrCode(t, err))
}

func TestParseCrossoverAction(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"accept", "decline", "cancel"} {
		action, ok := ParseCrossoverAction(valid)
		assert.True(t, ok)
		assert.Equal(t, CrossoverAction(valid), action)
	}

	for _, invalid := range []string{"", "Accept", "ACCEPT", "approve", "reject", " accept"} {
		_, ok := ParseCrossoverAction(invalid)
		assert.False(t, ok, fmt.Sprintf("%q should not parse", invalid))
	}
}
