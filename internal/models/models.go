package models

import (
	"time"

	"github.com/google/uuid"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a channel owner / viewer. Identity itself lives with the
// external auth provider; we only keep the resolved profile.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID string    `json:"-" db:"external_id"`
	Username   string    `json:"username" db:"username" validate:"required,min=3,max=100"`
	ImageURL   *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Computed fields (not in DB)
	SubscriberCount int64 `json:"subscriber_count,omitempty" db:"-"`
	VideoCount      int64 `json:"video_count,omitempty" db:"-"`
	// Whether the requesting viewer subscribes to this channel; absent for
	// anonymous viewers and for the owner's own profile.
	Subscribed *bool `json:"subscribed,omitempty" db:"-"`
}

// Category represents a video category.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,max=100"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Video visibility values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Video upload lifecycle states. A video is created `waiting` when the upload
// session starts and becomes `ready` once the hosting provider has processed it.
const (
	UploadStatusWaiting    = "waiting"
	UploadStatusProcessing = "processing"
	UploadStatusReady      = "ready"
	UploadStatusErrored    = "errored"
)

// Video represents an uploaded video and its hosting/transcoding state.
type Video struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	Title             string     `json:"title" db:"title" validate:"required,max=255"`
	Description       *string    `json:"description,omitempty" db:"description"`
	Visibility        string     `json:"visibility" db:"visibility" validate:"oneof=public private"`
	UploadStatus      string     `json:"upload_status" db:"upload_status"`
	UploadID          *string    `json:"upload_id,omitempty" db:"upload_id"`
	PlaybackURL       *string    `json:"playback_url,omitempty" db:"playback_url"`
	ThumbnailURL      *string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	ThumbnailPublicID *string    `json:"-" db:"thumbnail_public_id"`
	DurationSeconds   float64    `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`

	// Joined / computed fields (not in DB)
	User         *User   `json:"user,omitempty" db:"-"`
	ViewCount    int64   `json:"view_count" db:"-"`
	LikeCount    int64   `json:"like_count" db:"-"`
	DislikeCount int64   `json:"dislike_count" db:"-"`
	ViewerState  *ViewerVideoState `json:"viewer_state,omitempty" db:"-"`
}

// ViewerVideoState carries the requesting viewer's relationship to a video.
type ViewerVideoState struct {
	Reaction   *string `json:"reaction,omitempty"`
	Subscribed bool    `json:"subscribed"`
}

// Reaction types shared by video and comment reactions.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// VideoReaction is at most one like/dislike per (user, video).
type VideoReaction struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	Type      string    `json:"type" db:"reaction_type" validate:"oneof=like dislike"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VideoView is at most one row per (user, video); a repeat view bumps
// updated_at rather than inserting a second row.
type VideoView struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	VideoID   uuid.UUID `json:"video_id" db:"video_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Comment represents a video comment with one optional reply level.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	VideoID   uuid.UUID  `json:"video_id" db:"video_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	Content   string     `json:"content" db:"content" validate:"required,min=1,max=10000"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`

	// Joined / computed fields (not in DB)
	User           *User   `json:"user,omitempty" db:"-"`
	LikeCount      int64   `json:"like_count" db:"-"`
	DislikeCount   int64   `json:"dislike_count" db:"-"`
	ReplyCount     int64   `json:"reply_count" db:"-"`
	ViewerReaction *string `json:"viewer_reaction,omitempty" db:"-"`
}

// Subscription links a viewer to a creator, unique per pair.
type Subscription struct {
	ViewerID  uuid.UUID `json:"viewer_id" db:"viewer_id"`
	CreatorID uuid.UUID `json:"creator_id" db:"creator_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Playlist is an owner-scoped named collection of videos.
type Playlist struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Joined / computed fields (not in DB)
	User       *User `json:"user,omitempty" db:"-"`
	VideoCount int64 `json:"video_count" db:"-"`
}

// PlaylistVideo links a video into a playlist, unique per pair.
type PlaylistVideo struct {
	PlaylistID uuid.UUID `json:"playlist_id" db:"playlist_id"`
	VideoID    uuid.UUID `json:"video_id" db:"video_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ===============================
// LISTING TYPES
// ===============================

// VideoListItem is a feed row: the video plus read-time aggregates and any
// feed-specific extras (relevance score for search, reacted/viewed timestamps
// for the liked and history feeds).
type VideoListItem struct {
	Video

	RelevanceScore *float64   `json:"relevance_score,omitempty"`
	ReactedAt      *time.Time `json:"reacted_at,omitempty"`
	ViewedAt       *time.Time `json:"viewed_at,omitempty"`
	AddedAt        *time.Time `json:"added_at,omitempty"`
}

// Page is a cursor-paginated result. NextCursor is the opaque token for the
// next page, empty when this is the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
