package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/database"
)

// subscriptionRepository implements SubscriptionRepository over Postgres.
type subscriptionRepository struct {
	*BaseRepository
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *database.Manager, logger *zap.Logger) SubscriptionRepository {
	return &subscriptionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create subscribes the viewer to the creator. Returns ErrAlreadyExists when
// the pair is already subscribed. Self-subscription is rejected by the
// service before it reaches here.
func (r *subscriptionRepository) Create(ctx context.Context, viewerID, creatorID uuid.UUID) error {
	_, err := r.ExecContext(ctx,
		`INSERT INTO subscriptions (viewer_id, creator_id) VALUES ($1, $2)`,
		viewerID, creatorID)
	if err != nil {
		if r.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		r.GetLogger().Error("Failed to create subscription",
			zap.Error(err),
			zap.String("viewer_id", viewerID.String()),
			zap.String("creator_id", creatorID.String()),
		)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Delete unsubscribes the viewer from the creator. Returns false when no
// subscription existed.
func (r *subscriptionRepository) Delete(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE viewer_id = $1 AND creator_id = $2`,
		viewerID, creatorID)
	if err != nil {
		r.GetLogger().Error("Failed to delete subscription",
			zap.Error(err),
			zap.String("viewer_id", viewerID.String()),
			zap.String("creator_id", creatorID.String()),
		)
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}
	return affected > 0, nil
}

// Exists reports whether the viewer is subscribed to the creator.
func (r *subscriptionRepository) Exists(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE viewer_id = $1 AND creator_id = $2)`,
		viewerID, creatorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return exists, nil
}
