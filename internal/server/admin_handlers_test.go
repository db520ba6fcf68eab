package server

import (
	"net/http"
	"testing"

	"codex/internal/featureflags"
	"codex/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *handlerFixture) adminAppAs(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	admin := app.Group("/admin", f.s.AdminRequired())
	admin.Get("/feature-flags", f.s.GetFeatureFlags)
	admin.Get("/crossover-requests", f.s.GetAdminCrossoverRequests)
	return app
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)
	f.s.featureFlags = featureflags.NewManager("story_coauthoring=on")

	admin := models.User{Username: "teacher", Email: "teacher@example.com", Password: "pw", IsAdmin: true}
	require.NoError(t, f.db.Create(&admin).Error)

	t.Run("non-admin gets 403", func(t *testing.T) {
		resp, body := doJSON(t, f.adminAppAs(f.requester.ID), http.MethodGet, "/admin/feature-flags", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeForbidden, body["code"])
	})

	t.Run("admin reads feature flags", func(t *testing.T) {
		resp, body := doJSON(t, f.adminAppAs(admin.ID), http.MethodGet, "/admin/feature-flags", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		flags, ok := body["flags"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, true, flags["story_coauthoring"])
	})
}

func TestGetAdminCrossoverRequests(t *testing.T) {
	t.Parallel()
	f := setupHandlerFixture(t)
	f.s.featureFlags = featureflags.NewManager("")

	admin := models.User{Username: "teacher2", Email: "teacher2@example.com", Password: "pw", IsAdmin: true}
	require.NoError(t, f.db.Create(&admin).Error)

	f.pendingRequest(t, models.CrossoverRequestTypeAlliance)
	declined := &models.CrossoverRequest{
		RequesterID:          f.requester.ID,
		TargetUserID:         f.target.ID,
		RequesterMythologyID: f.greek.ID,
		TargetMythologyID:    f.norse.ID,
		RequestType:          models.CrossoverRequestTypeStory,
		Status:               models.CrossoverRequestStatusDeclined,
	}
	require.NoError(t, f.db.Create(declined).Error)

	app := f.adminAppAs(admin.ID)

	resp, body := doJSON(t, app, http.MethodGet, "/admin/crossover-requests", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["requests"], 2)

	resp, body = doJSON(t, app, http.MethodGet, "/admin/crossover-requests?status=declined", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["requests"], 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/admin/crossover-requests?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
