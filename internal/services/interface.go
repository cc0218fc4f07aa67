package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/quetrea/youtube-clone/internal/models"
)

// VideoPage is a cursor-paginated video feed page.
type VideoPage = models.Page[*models.VideoListItem]

// FeedService is the ranked listing core: every cursor-paginated video feed.
type FeedService interface {
	Home(ctx context.Context, req *ListVideosRequest) (*VideoPage, error)
	Search(ctx context.Context, req *SearchRequest) (*VideoPage, error)
	Suggestions(ctx context.Context, req *SuggestionsRequest, viewerID *uuid.UUID) (*VideoPage, error)
	Channel(ctx context.Context, req *ChannelVideosRequest, viewerID *uuid.UUID) (*VideoPage, error)
}

// VideoService manages the video lifecycle and per-video engagement.
type VideoService interface {
	CreateUploadSession(ctx context.Context, userID uuid.UUID, req *CreateVideoRequest) (*UploadSession, error)
	Upload(ctx context.Context, userID, videoID uuid.UUID, file multipart.File) (*models.Video, error)
	HandleWebhook(ctx context.Context, notification *WebhookNotification) error
	Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Video, error)
	Update(ctx context.Context, userID, videoID uuid.UUID, req *UpdateVideoRequest) (*models.Video, error)
	RestoreThumbnail(ctx context.Context, userID, videoID uuid.UUID) (*models.Video, error)
	Delete(ctx context.Context, userID, videoID uuid.UUID) error
	RecordView(ctx context.Context, userID, videoID uuid.UUID) error
	React(ctx context.Context, userID, videoID uuid.UUID, req *ReactionRequest) (*string, error)
}

// CommentService manages comment threads and comment reactions.
type CommentService interface {
	Create(ctx context.Context, userID, videoID uuid.UUID, req *CreateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, userID, commentID uuid.UUID) error
	List(ctx context.Context, req *ListCommentsRequest, viewerID *uuid.UUID) (*CommentPage, error)
	React(ctx context.Context, userID, commentID uuid.UUID, req *ReactionRequest) (*string, error)
}

// PlaylistService manages playlists, their contents and the viewer-derived
// liked/history feeds.
type PlaylistService interface {
	Create(ctx context.Context, userID uuid.UUID, req *CreatePlaylistRequest) (*models.Playlist, error)
	Update(ctx context.Context, userID, playlistID uuid.UUID, req *UpdatePlaylistRequest) (*models.Playlist, error)
	Delete(ctx context.Context, userID, playlistID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, req *ListPlaylistsRequest) (*models.Page[*models.Playlist], error)
	AddVideo(ctx context.Context, userID, playlistID uuid.UUID, req *AddPlaylistVideoRequest) error
	RemoveVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) error
	ListVideos(ctx context.Context, userID uuid.UUID, req *ListPlaylistVideosRequest) (*VideoPage, error)
	Liked(ctx context.Context, userID uuid.UUID, req *ViewerFeedRequest) (*VideoPage, error)
	History(ctx context.Context, userID uuid.UUID, req *ViewerFeedRequest) (*VideoPage, error)
}

// SubscriptionService manages viewer subscriptions.
type SubscriptionService interface {
	Subscribe(ctx context.Context, viewerID uuid.UUID, req *CreateSubscriptionRequest) error
	Unsubscribe(ctx context.Context, viewerID, creatorID uuid.UUID) error
	IsSubscribed(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error)
}

// CategoryService serves the category index, cached.
type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// UserService resolves and serves user profiles.
type UserService interface {
	Sync(ctx context.Context, req *SyncUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
}
