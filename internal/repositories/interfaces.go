package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
)

// ===============================
// FEED PARAMETERS
// ===============================

// Feed listing parameters. Every feed fetches limit+1 rows so the caller can
// detect whether more pages exist; repositories return the raw over-fetched
// slice and services trim it.

// HomeFeedParams selects the public ready videos, newest first.
type HomeFeedParams struct {
	CategoryID *uuid.UUID
	Cursor     *keyset.Cursor
	Limit      int
}

// SearchParams selects videos by relevance for a query. A blank query
// degrades to pure recency ordering with every score fixed at 1. Epoch is
// the recency clock in unix seconds; the service fixes it on the first page
// and replays it from the cursor on later ones so recomputed scores match
// the encoded boundary.
type SearchParams struct {
	Query      string
	CategoryID *uuid.UUID
	Cursor     *keyset.Cursor
	Epoch      int64
	Limit      int
}

// SuggestionParams selects related-video candidates for a source video.
type SuggestionParams struct {
	VideoID          uuid.UUID
	SourceCategoryID *uuid.UUID
	ViewerID         *uuid.UUID
	Cursor           *keyset.Cursor
	Limit            int
}

// ChannelFeedParams selects one creator's videos. IncludePrivate is set when
// the viewer is the owner (studio view).
type ChannelFeedParams struct {
	UserID         uuid.UUID
	IncludePrivate bool
	Cursor         *keyset.Cursor
	Limit          int
}

// ViewerFeedParams selects videos via the viewer's own engagement rows
// (likes for the liked feed, views for history).
type ViewerFeedParams struct {
	ViewerID uuid.UUID
	Cursor   *keyset.Cursor
	Limit    int
}

// CommentListParams selects a video's comments. ParentID nil lists top-level
// comments; set, it lists that comment's replies.
type CommentListParams struct {
	VideoID  uuid.UUID
	ParentID *uuid.UUID
	ViewerID *uuid.UUID
	Cursor   *keyset.Cursor
	Limit    int
}

// PlaylistListParams selects the owner's playlists.
type PlaylistListParams struct {
	OwnerID uuid.UUID
	Cursor  *keyset.Cursor
	Limit   int
}

// PlaylistVideosParams selects the videos of one playlist, most recently
// added first.
type PlaylistVideosParams struct {
	PlaylistID uuid.UUID
	Cursor     *keyset.Cursor
	Limit      int
}

// UploadResult carries the hosting provider's webhook payload fields that
// finish an upload.
type UploadResult struct {
	PlaybackURL       string
	ThumbnailURL      string
	ThumbnailPublicID string
	DurationSeconds   float64
}

// ===============================
// REPOSITORY INTERFACES
// ===============================

// UserRepository manages resolved user profiles.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CategoryRepository manages the category index.
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// VideoRepository manages videos, their engagement rows and the video feeds.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Video, error)
	GetByUploadID(ctx context.Context, uploadID string) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	SetUploadStatus(ctx context.Context, id uuid.UUID, status string, uploadID *string) error
	CompleteUpload(ctx context.Context, uploadID string, result UploadResult) (*models.Video, error)
	ResetThumbnail(ctx context.Context, id, ownerID uuid.UUID, thumbnailURL string) (*models.Video, error)

	ListHome(ctx context.Context, params HomeFeedParams) ([]*models.VideoListItem, error)
	ListSearch(ctx context.Context, params SearchParams) ([]*models.VideoListItem, error)
	ListSuggestions(ctx context.Context, params SuggestionParams) ([]*models.VideoListItem, error)
	ListChannel(ctx context.Context, params ChannelFeedParams) ([]*models.VideoListItem, error)

	RecordView(ctx context.Context, userID, videoID uuid.UUID) (created bool, err error)
	ToggleReaction(ctx context.Context, userID, videoID uuid.UUID, reactionType string) (current *string, err error)
}

// CommentRepository manages comments and their reactions.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	ListForVideo(ctx context.Context, params CommentListParams) ([]*models.Comment, error)
	CountForVideo(ctx context.Context, videoID uuid.UUID) (int64, error)
	ToggleReaction(ctx context.Context, userID, commentID uuid.UUID, reactionType string) (current *string, err error)
}

// SubscriptionRepository manages viewer to creator subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, viewerID, creatorID uuid.UUID) error
	Delete(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error)
	Exists(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error)
}

// PlaylistRepository manages playlists plus the viewer-derived feeds (liked,
// history) that share the playlists surface.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	ListForOwner(ctx context.Context, params PlaylistListParams) ([]*models.Playlist, error)

	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error)
	ContainsVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error)
	ListVideos(ctx context.Context, params PlaylistVideosParams) ([]*models.VideoListItem, error)

	ListLiked(ctx context.Context, params ViewerFeedParams) ([]*models.VideoListItem, error)
	ListHistory(ctx context.Context, params ViewerFeedParams) ([]*models.VideoListItem, error)
}
