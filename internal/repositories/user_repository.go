package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/database"
	"github.com/quetrea/youtube-clone/internal/models"
)

// userRepository implements UserRepository over Postgres.
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Upsert inserts the profile resolved from the auth provider, or refreshes
// username and image on repeat sign-in. The external id is the conflict key.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (external_id, username, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id)
		DO UPDATE SET username = EXCLUDED.username,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.ExternalID, user.Username, user.ImageURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.GetLogger().Error("Failed to upsert user",
			zap.Error(err),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a bare user row.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByExternalID retrieves the user linked to an auth-provider subject.
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.getOne(ctx, `WHERE external_id = $1`, externalID)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, external_id, username, image_url, created_at, updated_at
		FROM users
		%s`, where)

	var user models.User
	err := r.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.ExternalID, &user.Username, &user.ImageURL,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetProfile retrieves a user with the channel-page aggregates: subscriber
// count and public video count.
func (r *userRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT u.id, u.external_id, u.username, u.image_url, u.created_at, u.updated_at,
			COALESCE(sub_stats.subscriber_count, 0) AS subscriber_count,
			COALESCE(video_stats.video_count, 0) AS video_count
		FROM users u
		LEFT JOIN (
			SELECT creator_id, COUNT(*) AS subscriber_count
			FROM subscriptions
			GROUP BY creator_id
		) sub_stats ON u.id = sub_stats.creator_id
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS video_count
			FROM videos
			WHERE visibility = 'public' AND upload_status = 'ready'
			GROUP BY user_id
		) video_stats ON u.id = video_stats.user_id
		WHERE u.id = $1`

	var user models.User
	err := r.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.ExternalID, &user.Username, &user.ImageURL,
		&user.CreatedAt, &user.UpdatedAt,
		&user.SubscriberCount, &user.VideoCount,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		r.GetLogger().Error("Failed to get user profile",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &user, nil
}
