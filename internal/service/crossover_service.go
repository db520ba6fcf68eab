// Package service provides the business logic layer of the application.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codex/internal/cache"
	"codex/internal/middleware"
	"codex/internal/models"
	"codex/internal/observability"
	"codex/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CrossoverAction is a resolver action parsed from client input. The zero
// value is not a valid action; use ParseCrossoverAction.
type CrossoverAction string

const (
	// ActionAccept accepts a pending request (target only).
	ActionAccept CrossoverAction = "accept"
	// ActionDecline declines a pending request (target only).
	ActionDecline CrossoverAction = "decline"
	// ActionCancel withdraws a pending request (requester only).
	ActionCancel CrossoverAction = "cancel"
)

// ParseCrossoverAction validates raw client input against the closed action set.
func ParseCrossoverAction(raw string) (CrossoverAction, bool) {
	switch CrossoverAction(raw) {
	case ActionAccept, ActionDecline, ActionCancel:
		return CrossoverAction(raw), true
	}
	return "", false
}

// CreateCrossoverRequestInput carries the fields for a new crossover request.
type CreateCrossoverRequestInput struct {
	RequesterMythologyID uint
	TargetMythologyID    uint
	RequestType          models.CrossoverRequestType
	Message              string
}

// CrossoverService resolves crossover requests between mythology worlds:
// validation, the pending-only state machine, and the acceptance side effects
// (alliance materialization, story drafts).
type CrossoverService struct {
	db            *gorm.DB
	crossoverRepo repository.CrossoverRepository
	allianceRepo  repository.AllianceRepository
	storyRepo     repository.StoryRepository
	mythologyRepo repository.MythologyRepository
}

// NewCrossoverService returns a new CrossoverService. db is used only to open
// the transaction that spans the acceptance path.
func NewCrossoverService(
	db *gorm.DB,
	crossoverRepo repository.CrossoverRepository,
	allianceRepo repository.AllianceRepository,
	storyRepo repository.StoryRepository,
	mythologyRepo repository.MythologyRepository,
) *CrossoverService {
	return &CrossoverService{
		db:            db,
		crossoverRepo: crossoverRepo,
		allianceRepo:  allianceRepo,
		storyRepo:     storyRepo,
		mythologyRepo: mythologyRepo,
	}
}

// Create validates and persists a new crossover request from callerID's
// mythology to another user's mythology.
func (s *CrossoverService) Create(ctx context.Context, callerID uint, input CreateCrossoverRequestInput) (*models.CrossoverRequest, error) {
	if !models.ValidCrossoverRequestType(input.RequestType) {
		return nil, models.NewValidationError(fmt.Sprintf("invalid request type %q: must be alliance, conflict, trade, or story", input.RequestType))
	}
	if input.RequesterMythologyID == input.TargetMythologyID {
		return nil, models.NewValidationError("A mythology cannot cross over with itself")
	}

	requesterMythology, err := s.mythologyRepo.GetByID(ctx, input.RequesterMythologyID)
	if err != nil {
		return nil, err
	}
	if requesterMythology.UserID != callerID {
		return nil, models.NewForbiddenError("You can only send crossover requests from your own mythology")
	}

	targetMythology, err := s.mythologyRepo.GetByID(ctx, input.TargetMythologyID)
	if err != nil {
		return nil, err
	}
	if targetMythology.UserID == callerID {
		return nil, models.NewValidationError("Cannot send a crossover request to your own mythology")
	}

	existing, err := s.crossoverRepo.GetPendingBetweenMythologies(ctx, input.RequesterMythologyID, input.TargetMythologyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("A pending crossover request already exists between these mythologies")
	}

	request := &models.CrossoverRequest{
		RequesterID:          callerID,
		TargetUserID:         targetMythology.UserID,
		RequesterMythologyID: input.RequesterMythologyID,
		TargetMythologyID:    input.TargetMythologyID,
		RequestType:          input.RequestType,
		Status:               models.CrossoverRequestStatusPending,
		Message:              input.Message,
	}
	if err := s.crossoverRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	observability.CrossoverRequestsCreated.WithLabelValues(string(input.RequestType)).Inc()

	return s.crossoverRepo.GetByID(ctx, request.ID)
}

// Respond applies an accept/decline/cancel action to a pending request on
// behalf of callerID. Validations run in a fixed order; the first failure
// wins. The acceptance path (status transition, alliance or story
// materialization, completedAt stamp) runs in a single transaction.
func (s *CrossoverService) Respond(ctx context.Context, requestID, callerID uint, rawAction, responseMessage string) (*models.CrossoverRequest, error) {
	action, ok := ParseCrossoverAction(rawAction)
	if !ok {
		s.recordResolution(rawAction, models.CodeInvalidAction)
		return nil, models.NewInvalidActionError(rawAction)
	}

	request, err := s.crossoverRepo.GetByID(ctx, requestID)
	if err != nil {
		s.recordResolutionErr(action, err)
		return nil, err
	}

	if err := authorizeAction(request, callerID, action); err != nil {
		s.recordResolutionErr(action, err)
		return nil, err
	}

	if request.Status != models.CrossoverRequestStatusPending {
		s.recordResolution(string(action), models.CodeInvalidState)
		return nil, notPendingError(request.Status)
	}

	switch action {
	case ActionAccept:
		err = s.accept(ctx, request, responseMessage)
	case ActionDecline:
		err = s.resolve(ctx, request, models.CrossoverRequestStatusDeclined, responseMessage)
	case ActionCancel:
		err = s.resolve(ctx, request, models.CrossoverRequestStatusCancelled, responseMessage)
	}
	if err != nil {
		s.recordResolutionErr(action, err)
		return nil, err
	}

	s.recordResolution(string(action), "ok")
	return s.crossoverRepo.GetByID(ctx, requestID)
}

// authorizeAction enforces the party and role checks: the caller must be a
// party to the request, only the requester may cancel, and only the target
// may accept or decline.
func authorizeAction(request *models.CrossoverRequest, callerID uint, action CrossoverAction) error {
	if callerID != request.RequesterID && callerID != request.TargetUserID {
		return models.NewForbiddenError("You are not a party to this crossover request")
	}

	switch action {
	case ActionCancel:
		if callerID != request.RequesterID {
			return models.NewForbiddenError("Only the requester can cancel a crossover request")
		}
	case ActionAccept, ActionDecline:
		if callerID != request.TargetUserID {
			return models.NewForbiddenError("Only the recipient can accept or decline a crossover request")
		}
	}
	return nil
}

func notPendingError(status models.CrossoverRequestStatus) error {
	return models.NewInvalidStateError(fmt.Sprintf("Crossover request is not pending (current status: %s)", status))
}

// resolve performs the single-write decline/cancel transition.
func (s *CrossoverService) resolve(ctx context.Context, request *models.CrossoverRequest, status models.CrossoverRequestStatus, responseMessage string) error {
	transitioned, err := s.crossoverRepo.ResolveIfPending(ctx, request.ID, status, responseMessage, time.Now())
	if err != nil {
		return err
	}
	if !transitioned {
		return s.lostRaceError(ctx, request.ID)
	}
	return nil
}

// accept runs the full acceptance path in one transaction: the conditional
// status transition, the type-dispatched side effect, and the completedAt
// stamp. A failure at any step rolls the whole path back.
func (s *CrossoverService) accept(ctx context.Context, request *models.CrossoverRequest, responseMessage string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		crossoverRepo := s.crossoverRepo.WithTx(tx)

		transitioned, err := crossoverRepo.ResolveIfPending(ctx, request.ID, models.CrossoverRequestStatusAccepted, responseMessage, time.Now())
		if err != nil {
			return err
		}
		if !transitioned {
			return errLostRace
		}

		switch request.RequestType {
		case models.CrossoverRequestTypeAlliance, models.CrossoverRequestTypeConflict, models.CrossoverRequestTypeTrade:
			if err := s.materializeAlliance(ctx, s.allianceRepo.WithTx(tx), request); err != nil {
				return err
			}
		case models.CrossoverRequestTypeStory:
			if err := s.materializeStory(ctx, s.storyRepo.WithTx(tx), request); err != nil {
				return err
			}
		default:
			// The type enum is validated at creation; reaching this is a
			// programming error.
			return models.NewInternalError(fmt.Errorf("unhandled crossover request type %q", request.RequestType))
		}

		return crossoverRepo.SetCompletedAt(ctx, request.ID, time.Now())
	})
	if errors.Is(err, errLostRace) {
		return s.lostRaceError(ctx, request.ID)
	}
	if err != nil {
		return err
	}

	if _, ok := models.RelationshipForRequestType(request.RequestType); ok {
		cache.InvalidateAlliances(ctx, request.RequesterMythologyID, request.TargetMythologyID)
	}
	return nil
}

// errLostRace signals inside the transaction that the conditional update
// matched no row, so a concurrent caller resolved the request first.
var errLostRace = errors.New("request was resolved concurrently")

// lostRaceError re-reads the request so the InvalidState message names the
// status the winner left behind.
func (s *CrossoverService) lostRaceError(ctx context.Context, requestID uint) error {
	current, err := s.crossoverRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	return notPendingError(current.Status)
}

// materializeAlliance upserts the single relationship row for the request's
// mythology pair: an existing row is retyped and reactivated, otherwise a new
// row records the originating request.
func (s *CrossoverService) materializeAlliance(ctx context.Context, allianceRepo repository.AllianceRepository, request *models.CrossoverRequest) error {
	relationship, ok := models.RelationshipForRequestType(request.RequestType)
	if !ok {
		return models.NewInternalError(fmt.Errorf("request type %q has no relationship mapping", request.RequestType))
	}

	existing, err := allianceRepo.GetByPair(ctx, request.RequesterMythologyID, request.TargetMythologyID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.RelationshipType = relationship
		existing.IsActive = true
		if err := allianceRepo.Update(ctx, existing); err != nil {
			return err
		}
	} else {
		alliance := &models.MythologyAlliance{
			Mythology1ID:        request.RequesterMythologyID,
			Mythology2ID:        request.TargetMythologyID,
			RelationshipType:    relationship,
			IsActive:            true,
			FormedFromRequestID: request.ID,
		}
		if err := allianceRepo.Create(ctx, alliance); err != nil {
			// Another transaction inserted the pair between our lookup and
			// insert; retype that row instead.
			if errors.Is(err, repository.ErrAlliancePairExists) {
				return s.materializeAlliance(ctx, allianceRepo, request)
			}
			return err
		}
	}

	observability.AlliancesMaterialized.WithLabelValues(string(relationship)).Inc()
	return nil
}

// materializeStory spawns the shared draft for an accepted story request.
func (s *CrossoverService) materializeStory(ctx context.Context, storyRepo repository.StoryRepository, request *models.CrossoverRequest) error {
	story := &models.CrossoverStory{
		Mythology1ID: request.RequesterMythologyID,
		Mythology2ID: request.TargetMythologyID,
		Author1ID:    request.RequesterID,
		Author2ID:    request.TargetUserID,
		Title:        models.DefaultCrossoverStoryTitle,
		StoryType:    "crossover",
		Status:       models.CrossoverStoryStatusDraft,
	}
	if err := storyRepo.Create(ctx, story); err != nil {
		return err
	}

	observability.StoriesSpawned.Inc()
	return nil
}

// Delete removes a resolved request. Either party may delete, but only once
// the request has left pending; a pending request must be cancelled first.
func (s *CrossoverService) Delete(ctx context.Context, requestID, callerID uint) error {
	request, err := s.crossoverRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if callerID != request.RequesterID && callerID != request.TargetUserID {
		return models.NewForbiddenError("You are not a party to this crossover request")
	}
	if request.Status == models.CrossoverRequestStatusPending {
		return models.NewInvalidStateError("Cannot delete a pending crossover request; cancel it first")
	}

	return s.crossoverRepo.Delete(ctx, requestID)
}

// GetIncoming returns pending requests addressed to the user.
func (s *CrossoverService) GetIncoming(ctx context.Context, userID uint) ([]models.CrossoverRequest, error) {
	return s.crossoverRepo.GetIncoming(ctx, userID)
}

// GetSent returns requests the user has sent.
func (s *CrossoverService) GetSent(ctx context.Context, userID uint) ([]models.CrossoverRequest, error) {
	return s.crossoverRepo.GetSent(ctx, userID)
}

// GetAlliances returns the user's active alliance rows, or the rows for a
// single mythology when mythologyID is non-zero. Per-mythology lists are
// served from Redis when possible; cache errors degrade to a direct read.
func (s *CrossoverService) GetAlliances(ctx context.Context, userID, mythologyID uint) ([]models.MythologyAlliance, error) {
	if mythologyID != 0 {
		return s.alliancesForMythologyCached(ctx, mythologyID)
	}
	return s.allianceRepo.GetForUser(ctx, userID)
}

func (s *CrossoverService) alliancesForMythologyCached(ctx context.Context, mythologyID uint) ([]models.MythologyAlliance, error) {
	rdb := cache.GetClient()
	if rdb == nil {
		return s.allianceRepo.GetForMythology(ctx, mythologyID)
	}

	key := cache.AlliancesKey(mythologyID)
	if raw, err := rdb.Get(ctx, key).Result(); err == nil {
		var alliances []models.MythologyAlliance
		if err := json.Unmarshal([]byte(raw), &alliances); err == nil {
			return alliances, nil
		}
	} else if err != redis.Nil {
		middleware.Logger.WarnContext(ctx, "alliance cache read failed", "error", err)
	}

	alliances, err := s.allianceRepo.GetForMythology(ctx, mythologyID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(alliances); err == nil {
		if err := rdb.Set(ctx, key, raw, cache.AlliancesTTL).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "alliance cache write failed", "error", err)
		}
	}

	return alliances, nil
}

// GetStories returns crossover stories the user co-authors, or the stories
// involving a single mythology when mythologyID is non-zero.
func (s *CrossoverService) GetStories(ctx context.Context, userID, mythologyID uint) ([]models.CrossoverStory, error) {
	if mythologyID != 0 {
		return s.storyRepo.GetForMythology(ctx, mythologyID)
	}
	return s.storyRepo.GetForUser(ctx, userID)
}

// ListByStatus returns requests filtered by status for admin inspection.
func (s *CrossoverService) ListByStatus(ctx context.Context, status models.CrossoverRequestStatus, limit, offset int) ([]models.CrossoverRequest, error) {
	if status != "" {
		switch status {
		case models.CrossoverRequestStatusPending, models.CrossoverRequestStatusAccepted,
			models.CrossoverRequestStatusDeclined, models.CrossoverRequestStatusCancelled:
		default:
			return nil, models.NewValidationError(fmt.Sprintf("invalid status filter %q", status))
		}
	}
	return s.crossoverRepo.List(ctx, status, limit, offset)
}

func (s *CrossoverService) recordResolution(action, result string) {
	observability.CrossoverResolutions.WithLabelValues(action, result).Inc()
}

func (s *CrossoverService) recordResolutionErr(action CrossoverAction, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		s.recordResolution(string(action), appErr.Code)
		return
	}
	s.recordResolution(string(action), models.CodeInternal)
}
