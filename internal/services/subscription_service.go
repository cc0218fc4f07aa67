package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/validation"
)

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	logger           *zap.Logger
}

// NewSubscriptionService creates the subscription service.
func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// Subscribe subscribes the viewer to a creator. Subscribing to oneself or
// twice to the same creator is rejected before any write.
func (s *subscriptionService) Subscribe(ctx context.Context, viewerID uuid.UUID, req *CreateSubscriptionRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid subscription request", err)
	}
	if req.CreatorID == viewerID {
		return NewConflictError("cannot subscribe to yourself", "SELF_SUBSCRIPTION")
	}
	if _, err := s.userRepo.GetByID(ctx, req.CreatorID); err != nil {
		if repositories.IsNoRows(err) {
			return EntityNotFoundError("user", req.CreatorID.String())
		}
		return NewInternalError("failed to load creator")
	}

	if err := s.subscriptionRepo.Create(ctx, viewerID, req.CreatorID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return NewConflictError("already subscribed", "SUBSCRIPTION_EXISTS")
		}
		return NewInternalError("failed to create subscription")
	}
	return nil
}

// IsSubscribed reports whether the viewer currently subscribes to the
// creator. Profile pages use it to render the subscribe button state.
func (s *subscriptionService) IsSubscribed(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error) {
	subscribed, err := s.subscriptionRepo.Exists(ctx, viewerID, creatorID)
	if err != nil {
		return false, NewInternalError("failed to check subscription")
	}
	return subscribed, nil
}

// Unsubscribe removes the viewer's subscription to a creator.
func (s *subscriptionService) Unsubscribe(ctx context.Context, viewerID, creatorID uuid.UUID) error {
	removed, err := s.subscriptionRepo.Delete(ctx, viewerID, creatorID)
	if err != nil {
		return NewInternalError("failed to delete subscription")
	}
	if !removed {
		return EntityNotFoundError("subscription", creatorID.String())
	}
	return nil
}
