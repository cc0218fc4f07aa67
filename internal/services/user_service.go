package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/validation"
)

// userService implements UserService.
type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates the user service.
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// Sync upserts the profile carried by identity-provider claims. First
// sign-in creates the row; later sign-ins refresh username and image.
func (s *userService) Sync(ctx context.Context, req *SyncUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid sync user request", err)
	}

	user := &models.User{
		ExternalID: req.ExternalID,
		Username:   req.Username,
		ImageURL:   req.ImageURL,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, NewInternalError("failed to sync user")
	}

	s.logger.Info("User synced",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return user, nil
}

// GetByID returns a bare user.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("user", id.String())
		}
		return nil, NewInternalError("failed to load user")
	}
	return user, nil
}

// GetByExternalID resolves the user behind an identity-provider subject.
func (s *userService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("user", externalID)
		}
		return nil, NewInternalError("failed to load user")
	}
	return user, nil
}

// GetProfile returns the channel-page view of a user: profile plus
// subscriber and public video counts.
func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetProfile(ctx, id)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("user", id.String())
		}
		return nil, NewInternalError("failed to load user profile")
	}
	return user, nil
}
