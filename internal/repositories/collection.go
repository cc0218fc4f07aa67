package repositories

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/database"
)

// Collection holds all repository instances for dependency injection.
type Collection struct {
	User         UserRepository
	Category     CategoryRepository
	Video        VideoRepository
	Comment      CommentRepository
	Subscription SubscriptionRepository
	Playlist     PlaylistRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies.
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Collection{
		User:         NewUserRepository(db, logger),
		Category:     NewCategoryRepository(db, logger),
		Video:        NewVideoRepository(db, logger),
		Comment:      NewCommentRepository(db, logger),
		Subscription: NewSubscriptionRepository(db, logger),
		Playlist:     NewPlaylistRepository(db, logger),
		db:           db,
		logger:       logger,
	}, nil
}

// DB returns the underlying database manager for operations that fall
// outside the repository interfaces, such as health checks.
func (c *Collection) DB() *database.Manager {
	return c.db
}
