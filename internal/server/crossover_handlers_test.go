package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"codex/internal/models"
	"codex/internal/repository"
	"codex/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type handlerFixture struct {
	db        *gorm.DB
	s         *Server
	requester models.User
	target    models.User
	outsider  models.User
	greek     models.Mythology
	norse     models.Mythology
}

func setupHandlerFixture(t *testing.T) *handlerFixture {
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

	crossoverRepo := repository.NewCrossoverRepository(db)
	allianceRepo := repository.NewAllianceRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	mythologyRepo := repository.NewMythologyRepository(db)

	s := &Server{
		db:            db,
		userRepo:      repository.NewUserRepository(db),
		mythologyRepo: mythologyRepo,
		figureRepo:    repository.NewFigureRepository(db),
		crossoverRepo: crossoverRepo,
		allianceRepo:  allianceRepo,
		storyRepo:     storyRepo,
	}
	s.crossoverService = service.NewCrossoverService(db, crossoverRepo, allianceRepo, storyRepo, mythologyRepo)
	s.mythologyService = service.NewMythologyService(mythologyRepo)

	f := &handlerFixture{db: db, s: s}

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

// appAs builds a fiber app with the crossover routes, authenticated as userID.
func (f *handlerFixture) appAs(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/crossovers/requests", f.s.CreateCrossoverRequest)
	app.Get("/crossovers/requests", f.s.GetIncomingCrossoverRequests)
	app.Get("/crossovers/requests/sent", f.s.GetSentCrossoverRequests)
	app.Patch("/crossovers/requests/:id", f.s.RespondToCrossoverRequest)
	app.Delete("/crossovers/requests/:id", f.s.DeleteCrossoverRequest)
	app.Get("/crossovers/alliances", f.s.GetAlliances)
	app.Get("/crossovers/stories", f.s.GetCrossoverStories)
	return app
}

func (f *handlerFixture) pendingRequest(t *testing.T, requestType models.CrossoverRequestType) *models.CrossoverRequest {
	t.Helper()
	request := &models.CrossoverRequest{
		RequesterID:          f.requester.ID,
		TargetUserID:         f.target.ID,
		RequesterMythologyID: f.greek.ID,
		TargetMythologyID:    f.norse.ID,
		RequestType:          requestType,
		Status:               models.CrossoverRequestStatusPending,
	}
	require.NoError(t, f.db.Create(request).Error)
	return request
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	_ = resp.Body.Close()
	return resp, body
}

func TestCreateCrossoverRequestHandler(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)
	app := f.appAs(f.requester.ID)

	t.Run("201 on success", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/crossovers/requests", map[string]any{
			"requester_mythology_id": f.greek.ID,
			"target_mythology_id":    f.norse.ID,
			"request_type":           "alliance",
			"message":                "join us",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "alliance", body["request_type"])
	})

	t.Run("400 on duplicate pending pair", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/crossovers/requests", map[string]any{
			"requester_mythology_id": f.greek.ID,
			"target_mythology_id":    f.norse.ID,
			"request_type":           "story",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body["code"])
	})

	t.Run("400 on missing mythology ids", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/crossovers/requests", map[string]any{
			"request_type": "alliance",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("403 when sending from another user's mythology", func(t *testing.T) {
		outsiderApp := f.appAs(f.outsider.ID)
		resp, body := doJSON(t, outsiderApp, http.MethodPost, "/crossovers/requests", map[string]any{
			"requester_mythology_id": f.greek.ID,
			"target_mythology_id":    f.norse.ID,
			"request_type":           "alliance",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeForbidden, body["code"])
	})
}

func TestRespondToCrossoverRequestHandler_StatusMapping(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)
	request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
	path := fmt.Sprintf("/crossovers/requests/%d", request.ID)

	t.Run("400 invalid action", func(t *testing.T) {
		resp, body := doJSON(t, f.appAs(f.target.ID), http.MethodPatch, path, map[string]any{"action": "approve"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidAction, body["code"])
	})

	t.Run("404 unknown request", func(t *testing.T) {
		resp, body := doJSON(t, f.appAs(f.target.ID), http.MethodPatch, "/crossovers/requests/99999", map[string]any{"action": "accept"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, models.CodeNotFound, body["code"])
	})

	t.Run("400 malformed id", func(t *testing.T) {
		resp, _ := doJSON(t, f.appAs(f.target.ID), http.MethodPatch, "/crossovers/requests/abc", map[string]any{"action": "accept"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("403 non-party", func(t *testing.T) {
		resp, body := doJSON(t, f.appAs(f.outsider.ID), http.MethodPatch, path, map[string]any{"action": "accept"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeForbidden, body["code"])
	})

	t.Run("403 requester cannot accept", func(t *testing.T) {
		resp, _ := doJSON(t, f.appAs(f.requester.ID), http.MethodPatch, path, map[string]any{"action": "accept"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("200 accept returns resolved request", func(t *testing.T) {
		resp, body := doJSON(t, f.appAs(f.target.ID), http.MethodPatch, path, map[string]any{
			"action":           "accept",
			"response_message": "with pleasure",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		wrapped, ok := body["request"].(map[string]interface{})
		require.True(t, ok, "response wraps the request object")
		assert.Equal(t, "accepted", wrapped["status"])
		assert.Equal(t, "with pleasure", wrapped["response_message"])
		assert.NotNil(t, wrapped["responded_at"])
		assert.NotNil(t, wrapped["completed_at"])
	})

	t.Run("400 second resolution of same request", func(t *testing.T) {
		resp, body := doJSON(t, f.appAs(f.target.ID), http.MethodPatch, path, map[string]any{"action": "decline"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidState, body["code"])
		assert.Contains(t, body["error"], "accepted")
	})
}

func TestRespondToCrossoverRequestHandler_CancelAndDecline(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)

	t.Run("requester cancels", func(t *testing.T) {
		request := f.pendingRequest(t, models.CrossoverRequestTypeTrade)
		path := fmt.Sprintf("/crossovers/requests/%d", request.ID)

		resp, body := doJSON(t, f.appAs(f.requester.ID), http.MethodPatch, path, map[string]any{"action": "cancel"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		wrapped := body["request"].(map[string]interface{})
		assert.Equal(t, "cancelled", wrapped["status"])
	})

	t.Run("target declines", func(t *testing.T) {
		request := f.pendingRequest(t, models.CrossoverRequestTypeStory)
		path := fmt.Sprintf("/crossovers/requests/%d", request.ID)

		resp, body := doJSON(t, f.appAs(f.target.ID), http.MethodPatch, path, map[string]any{"action": "decline"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		wrapped := body["request"].(map[string]interface{})
		assert.Equal(t, "declined", wrapped["status"])

		var storyCount int64
		require.NoError(t, f.db.Model(&models.CrossoverStory{}).Count(&storyCount).Error)
		assert.Zero(t, storyCount)
	})
}

func TestDeleteCrossoverRequestHandler(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)
	request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
	path := fmt.Sprintf("/crossovers/requests/%d", request.ID)

	t.Run("400 while pending", func(t *testing.T) {
		resp, body := doJSON(t, f.appAs(f.requester.ID), http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidState, body["code"])
	})

	t.Run("200 after resolution", func(t *testing.T) {
		_, _ = doJSON(t, f.appAs(f.requester.ID), http.MethodPatch, path, map[string]any{"action": "cancel"})

		resp, body := doJSON(t, f.appAs(f.requester.ID), http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
	})
}

func TestCrossoverListingHandlers(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)
	request := f.pendingRequest(t, models.CrossoverRequestTypeAlliance)

	resp, body := doJSON(t, f.appAs(f.target.ID), http.MethodGet, "/crossovers/requests", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["requests"], 1)

	resp, body = doJSON(t, f.appAs(f.requester.ID), http.MethodGet, "/crossovers/requests/sent", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["requests"], 1)

	// Accept and check the alliance and story listings.
	path := fmt.Sprintf("/crossovers/requests/%d", request.ID)
	resp, _ = doJSON(t, f.appAs(f.target.ID), http.MethodPatch, path, map[string]any{"action": "accept"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, f.appAs(f.requester.ID), http.MethodGet, "/crossovers/alliances", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["alliances"], 1)

	filtered := fmt.Sprintf("/crossovers/alliances?mythology_id=%d", f.norse.ID)
	resp, body = doJSON(t, f.appAs(f.requester.ID), http.MethodGet, filtered, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["alliances"], 1)

	resp, body = doJSON(t, f.appAs(f.requester.ID), http.MethodGet, "/crossovers/stories", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["stories"], "alliance acceptance spawns no story")
}
