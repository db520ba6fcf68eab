package server

import (
	"context"
	"encoding/json"
	"log"

	"codex/internal/models"
	"codex/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventCrossoverRequestReceived  = "crossover_request_received"
	EventCrossoverRequestSent      = "crossover_request_sent"
	EventCrossoverRequestAccepted  = "crossover_request_accepted"
	EventCrossoverRequestDeclined  = "crossover_request_declined"
	EventCrossoverRequestCancelled = "crossover_request_cancelled"
	EventAllianceFormed            = "alliance_formed"
	EventStoryDraftCreated         = "story_draft_created"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
}

func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		}
	}
}

func mythologySummary(m models.Mythology) map[string]interface{} {
	return map[string]interface{}{
		"id":   m.ID,
		"name": m.Name,
		"slug": m.Slug,
	}
}

func mythologySummaryPtr(m *models.Mythology) map[string]interface{} {
	if m == nil {
		return nil
	}
	return mythologySummary(*m)
}
