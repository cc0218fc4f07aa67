package services

import (
	"github.com/google/uuid"

	"github.com/quetrea/youtube-clone/internal/models"
)

// ===============================
// LISTING REQUESTS
// ===============================

// ListVideosRequest selects the home feed.
type ListVideosRequest struct {
	CategoryID *uuid.UUID
	Cursor     string
	Limit      int
}

// SearchRequest selects the relevance-ranked search feed.
type SearchRequest struct {
	Query      string `validate:"max=255"`
	CategoryID *uuid.UUID
	Cursor     string
	Limit      int
}

// SuggestionsRequest selects related videos for a source video.
type SuggestionsRequest struct {
	VideoID uuid.UUID `validate:"required"`
	Cursor  string
	Limit   int
}

// ChannelVideosRequest selects one creator's videos.
type ChannelVideosRequest struct {
	UserID uuid.UUID `validate:"required"`
	Cursor string
	Limit  int
}

// ListCommentsRequest selects a video's comment thread. ParentID set lists
// that comment's replies instead of the top level.
type ListCommentsRequest struct {
	VideoID  uuid.UUID `validate:"required"`
	ParentID *uuid.UUID
	Cursor   string
	Limit    int
}

// ListPlaylistsRequest selects the authenticated owner's playlists.
type ListPlaylistsRequest struct {
	Cursor string
	Limit  int
}

// ListPlaylistVideosRequest selects one playlist's videos.
type ListPlaylistVideosRequest struct {
	PlaylistID uuid.UUID `validate:"required"`
	Cursor     string
	Limit      int
}

// ViewerFeedRequest selects the viewer's liked or history feed.
type ViewerFeedRequest struct {
	Cursor string
	Limit  int
}

// CommentPage is a comment listing page with the thread's total count.
type CommentPage struct {
	Items      []*models.Comment `json:"items"`
	TotalCount int64             `json:"total_count"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ===============================
// MUTATION REQUESTS
// ===============================

// CreateVideoRequest opens an upload session. Title defaults when omitted.
type CreateVideoRequest struct {
	Title *string `json:"title" validate:"omitempty,max=255"`
}

// UpdateVideoRequest edits owner-editable video fields.
type UpdateVideoRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=10000"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Visibility  string     `json:"visibility" validate:"required,oneof=public private"`
}

// ReactionRequest toggles a like or dislike.
type ReactionRequest struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

// CreateCommentRequest posts a comment or a one-level reply.
type CreateCommentRequest struct {
	Content  string     `json:"content" validate:"required,min=1,max=10000"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// CreatePlaylistRequest creates a playlist for the viewer.
type CreatePlaylistRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
}

// UpdatePlaylistRequest edits a playlist's name and description.
type UpdatePlaylistRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
}

// AddPlaylistVideoRequest links a video into a playlist.
type AddPlaylistVideoRequest struct {
	VideoID uuid.UUID `json:"video_id" validate:"required"`
}

// CreateSubscriptionRequest subscribes the viewer to a creator.
type CreateSubscriptionRequest struct {
	CreatorID uuid.UUID `json:"creator_id" validate:"required"`
}

// SyncUserRequest upserts the profile resolved from identity-provider
// claims.
type SyncUserRequest struct {
	ExternalID string  `json:"external_id" validate:"required,max=255"`
	Username   string  `json:"username" validate:"required,min=3,max=100"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url"`
}

// UploadSession is the response to opening an upload: the placeholder video
// row and where the client should send the file.
type UploadSession struct {
	Video     *models.Video `json:"video"`
	UploadURL string        `json:"upload_url"`
}

// WebhookNotification is the subset of the hosting provider's notification
// payload the upload lifecycle consumes.
type WebhookNotification struct {
	NotificationType string  `json:"notification_type"`
	PublicID         string  `json:"public_id"`
	ResourceType     string  `json:"resource_type"`
	SecureURL        string  `json:"secure_url"`
	Duration         float64 `json:"duration"`
	Format           string  `json:"format"`
}
