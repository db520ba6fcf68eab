package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"codex/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsTicketTTL is how long an issued WebSocket ticket stays redeemable.
const wsTicketTTL = 60 * time.Second

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set an
// Authorization header on a WebSocket handshake, so an authenticated client
// trades its JWT for a short-lived single-use ticket passed as a query param.
// @Summary Issue a single-use WebSocket ticket
// @Tags websocket
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
// @Security BearerAuth
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("websocket tickets unavailable: redis not configured")))
	}

	ticket := uuid.NewString()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(ctx, key, fmt.Sprintf("%d", userID), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler handles WebSocket connections for real-time notifications:
// crossover request lifecycle events, alliance formation, and story drafts.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		// Get userID from context locals (set by AuthRequired middleware)
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		// The handshake is complete; retire the single-use ticket.
		s.consumeWSTicket(ctx, conn.Locals("wsTicket"))

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		log.Printf("WebSocket: User %d connected", userID)

		// Send a connected frame with the user's pending request count so the
		// client can badge immediately without a follow-up fetch.
		pending := s.pendingRequestCount(ctx, userID)
		welcome := map[string]interface{}{
			"type": "connected",
			"payload": map[string]interface{}{
				"user_id":          userID,
				"pending_requests": pending,
			},
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()

		log.Printf("WebSocket: User %d disconnected", userID)
	})
}

func (s *Server) pendingRequestCount(ctx context.Context, userID uint) int64 {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.CrossoverRequest{}).
		Where("target_user_id = ? AND status = ?", userID, models.CrossoverRequestStatusPending).
		Count(&count).Error; err != nil {
		return 0
	}
	return count
}
