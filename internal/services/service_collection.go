package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/cache"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/utils"
)

// Collection holds all service instances for dependency injection.
type Collection struct {
	Feed         FeedService
	Video        VideoService
	Comment      CommentService
	Playlist     PlaylistService
	Subscription SubscriptionService
	Category     CategoryService
	User         UserService
}

// NewCollection wires the services over the repository collection.
func NewCollection(
	repos *repositories.Collection,
	uploader utils.VideoUploader,
	cacheClient cache.Cache,
	logger *zap.Logger,
) (*Collection, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository collection is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("video uploader is required")
	}
	if cacheClient == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Collection{
		Feed:         NewFeedService(repos.Video, logger),
		Video:        NewVideoService(repos.Video, uploader, logger),
		Comment:      NewCommentService(repos.Comment, repos.Video, logger),
		Playlist:     NewPlaylistService(repos.Playlist, repos.Video, logger),
		Subscription: NewSubscriptionService(repos.Subscription, repos.User, logger),
		Category:     NewCategoryService(repos.Category, cacheClient, logger),
		User:         NewUserService(repos.User, logger),
	}, nil
}
