package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/database"
	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/ranking"
)

// videoRepository implements VideoRepository over Postgres.
type videoRepository struct {
	*BaseRepository
}

// NewVideoRepository creates a new video repository.
func NewVideoRepository(db *database.Manager, logger *zap.Logger) VideoRepository {
	return &videoRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// videoListColumns is the shared SELECT list for video rows: the video, its
// creator and the read-time engagement aggregates.
const videoListColumns = `
	v.id, v.user_id, v.category_id, v.title, v.description, v.visibility,
	v.upload_status, v.upload_id, v.playback_url, v.thumbnail_url,
	v.thumbnail_public_id, v.duration_seconds, v.created_at, v.updated_at,
	u.username, u.image_url,
	COALESCE(view_stats.view_count, 0) AS view_count,
	COALESCE(reaction_stats.like_count, 0) AS like_count,
	COALESCE(reaction_stats.dislike_count, 0) AS dislike_count`

// videoListJoins aggregates counts in grouped subqueries so a page costs a
// constant number of scans instead of one per row.
const videoListJoins = `
	INNER JOIN users u ON v.user_id = u.id
	LEFT JOIN (
		SELECT video_id, COUNT(*) AS view_count
		FROM video_views
		GROUP BY video_id
	) view_stats ON v.id = view_stats.video_id
	LEFT JOIN (
		SELECT
			video_id,
			COUNT(CASE WHEN reaction_type = 'like' THEN 1 END) AS like_count,
			COUNT(CASE WHEN reaction_type = 'dislike' THEN 1 END) AS dislike_count
		FROM video_reactions
		GROUP BY video_id
	) reaction_stats ON v.id = reaction_stats.video_id`

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a new video in its initial upload state.
func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (
			user_id, category_id, title, description,
			visibility, upload_status, upload_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		video.UserID, video.CategoryID, video.Title, video.Description,
		video.Visibility, video.UploadStatus, video.UploadID,
	).Scan(&video.ID, &video.CreatedAt, &video.UpdatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create video",
			zap.Error(err),
			zap.String("user_id", video.UserID.String()),
			zap.String("title", video.Title),
		)
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// GetByID retrieves a video with creator, aggregates and, when viewerID is
// set, the viewer's own reaction and subscription state. Visibility is not
// enforced here; the service layer decides who may see private videos.
func (r *videoRepository) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Video, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			vr.reaction_type AS viewer_reaction,
			EXISTS (
				SELECT 1 FROM subscriptions s
				WHERE s.viewer_id = $2 AND s.creator_id = v.user_id
			) AS subscribed
		FROM videos v
		%s
		LEFT JOIN video_reactions vr ON v.id = vr.video_id AND vr.user_id = $2
		WHERE v.id = $1`, videoListColumns, videoListJoins)

	var (
		viewerReaction sql.NullString
		subscribed     bool
	)
	item, err := scanVideoListRow(
		r.QueryRowContext(ctx, query, id, uuidArg(viewerID)),
		&viewerReaction, &subscribed,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		r.GetLogger().Error("Failed to get video",
			zap.Error(err),
			zap.String("video_id", id.String()),
		)
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	video := &item.Video
	if viewerID != nil {
		video.ViewerState = &models.ViewerVideoState{Subscribed: subscribed}
		if viewerReaction.Valid {
			video.ViewerState.Reaction = &viewerReaction.String
		}
	}
	return video, nil
}

// GetByUploadID retrieves the bare video row linked to a hosting upload
// session. Webhook processing does not need aggregates.
func (r *videoRepository) GetByUploadID(ctx context.Context, uploadID string) (*models.Video, error) {
	query := `
		SELECT id, user_id, category_id, title, description, visibility,
			upload_status, upload_id, playback_url, thumbnail_url,
			thumbnail_public_id, duration_seconds, created_at, updated_at
		FROM videos
		WHERE upload_id = $1`

	var video models.Video
	err := r.QueryRowContext(ctx, query, uploadID).Scan(
		&video.ID, &video.UserID, &video.CategoryID, &video.Title,
		&video.Description, &video.Visibility, &video.UploadStatus,
		&video.UploadID, &video.PlaybackURL, &video.ThumbnailURL,
		&video.ThumbnailPublicID, &video.DurationSeconds,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get video by upload id: %w", err)
	}
	return &video, nil
}

// Update writes the owner-editable fields. Scoped to the owner so a stolen id
// cannot modify someone else's video; a non-owner gets sql.ErrNoRows.
func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	query := `
		UPDATE videos
		SET title = $1, description = $2, category_id = $3,
			visibility = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		video.Title, video.Description, video.CategoryID,
		video.Visibility, video.ID, video.UserID,
	).Scan(&video.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return err
		}
		r.GetLogger().Error("Failed to update video",
			zap.Error(err),
			zap.String("video_id", video.ID.String()),
		)
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

// Delete removes an owner's video. Returns false when no owned video matched.
func (r *videoRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM videos WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		r.GetLogger().Error("Failed to delete video",
			zap.Error(err),
			zap.String("video_id", id.String()),
		)
		return false, fmt.Errorf("failed to delete video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete video: %w", err)
	}
	return affected > 0, nil
}

// SetUploadStatus advances the upload lifecycle. uploadID, when set, links
// the row to the hosting provider's upload session.
func (r *videoRepository) SetUploadStatus(ctx context.Context, id uuid.UUID, status string, uploadID *string) error {
	result, err := r.ExecContext(ctx, `
		UPDATE videos
		SET upload_status = $2, upload_id = COALESCE($3, upload_id), updated_at = NOW()
		WHERE id = $1`,
		id, status, uploadID)
	if err != nil {
		r.GetLogger().Error("Failed to set upload status",
			zap.Error(err),
			zap.String("video_id", id.String()),
			zap.String("status", status),
		)
		return fmt.Errorf("failed to set upload status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set upload status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompleteUpload applies the hosting provider's processing result and marks
// the video ready. An owner-set custom thumbnail is kept.
func (r *videoRepository) CompleteUpload(ctx context.Context, uploadID string, result UploadResult) (*models.Video, error) {
	query := `
		UPDATE videos
		SET upload_status = $2,
			playback_url = $3,
			thumbnail_url = COALESCE(thumbnail_url, $4),
			thumbnail_public_id = COALESCE(thumbnail_public_id, $5),
			duration_seconds = $6,
			updated_at = NOW()
		WHERE upload_id = $1
		RETURNING id, user_id, category_id, title, description, visibility,
			upload_status, upload_id, playback_url, thumbnail_url,
			thumbnail_public_id, duration_seconds, created_at, updated_at`

	var video models.Video
	err := r.QueryRowContext(
		ctx, query,
		uploadID, models.UploadStatusReady, result.PlaybackURL,
		nullableString(result.ThumbnailURL), nullableString(result.ThumbnailPublicID),
		result.DurationSeconds,
	).Scan(
		&video.ID, &video.UserID, &video.CategoryID, &video.Title,
		&video.Description, &video.Visibility, &video.UploadStatus,
		&video.UploadID, &video.PlaybackURL, &video.ThumbnailURL,
		&video.ThumbnailPublicID, &video.DurationSeconds,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		r.GetLogger().Error("Failed to complete upload",
			zap.Error(err),
			zap.String("upload_id", uploadID),
		)
		return nil, fmt.Errorf("failed to complete upload: %w", err)
	}

	r.GetLogger().Info("Video upload completed",
		zap.String("video_id", video.ID.String()),
		zap.String("upload_id", uploadID),
	)
	return &video, nil
}

// ResetThumbnail replaces an owner's custom thumbnail with the given URL and
// clears the custom asset reference. Scoped to the owner like Update; a
// non-owner gets sql.ErrNoRows.
func (r *videoRepository) ResetThumbnail(ctx context.Context, id, ownerID uuid.UUID, thumbnailURL string) (*models.Video, error) {
	query := `
		UPDATE videos
		SET thumbnail_url = $3,
			thumbnail_public_id = NULL,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, category_id, title, description, visibility,
			upload_status, upload_id, playback_url, thumbnail_url,
			thumbnail_public_id, duration_seconds, created_at, updated_at`

	var video models.Video
	err := r.QueryRowContext(ctx, query, id, ownerID, thumbnailURL).Scan(
		&video.ID, &video.UserID, &video.CategoryID, &video.Title,
		&video.Description, &video.Visibility, &video.UploadStatus,
		&video.UploadID, &video.PlaybackURL, &video.ThumbnailURL,
		&video.ThumbnailPublicID, &video.DurationSeconds,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		r.GetLogger().Error("Failed to reset thumbnail",
			zap.Error(err),
			zap.String("video_id", id.String()),
		)
		return nil, fmt.Errorf("failed to reset thumbnail: %w", err)
	}
	return &video, nil
}

// ===============================
// FEED QUERIES
// ===============================

// ListHome returns the public ready videos, newest first, over-fetching one
// row past the limit.
func (r *videoRepository) ListHome(ctx context.Context, params HomeFeedParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(1)
	w.Eq("v.visibility", models.VisibilityPublic)
	w.Eq("v.upload_status", models.UploadStatusReady)
	if params.CategoryID != nil {
		w.Eq("v.category_id", *params.CategoryID)
	}
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("v.updated_at", "v.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM videos v
		%s
		%s
		ORDER BY v.updated_at DESC, v.id DESC
		LIMIT $%d`, videoListColumns, videoListJoins, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	rows, err := r.QueryContext(ctx, query, w.Args()...)
	if err != nil {
		r.GetLogger().Error("Failed to list home feed", zap.Error(err))
		return nil, fmt.Errorf("failed to list home feed: %w", err)
	}
	return collectVideoRows(rows, func(rows *sql.Rows) (*models.VideoListItem, error) {
		return scanVideoListRow(rows)
	})
}

// ListSearch returns videos ranked by relevance for the query. A blank query
// degrades to recency ordering with every score fixed at the description
// tier, matching the in-process scorer.
func (r *videoRepository) ListSearch(ctx context.Context, params SearchParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(1)
	w.Eq("v.visibility", models.VisibilityPublic)
	w.Eq("v.upload_status", models.UploadStatusReady)
	if params.CategoryID != nil {
		w.Eq("v.category_id", *params.CategoryID)
	}

	trimmed := strings.TrimSpace(params.Query)
	epoch := params.Epoch
	if epoch <= 0 {
		epoch = time.Now().Unix()
	}
	scoreExpr := "1.0"
	orderBy := "v.updated_at DESC, v.id DESC"
	if trimmed != "" {
		w.Append(ranking.SearchMatchSQL(w, "v.title", "v.description", trimmed))
		scoreExpr = ranking.SearchScoreSQL(w, "v.title", "v.updated_at", trimmed, epoch)
		orderBy = fmt.Sprintf("%s DESC, v.updated_at DESC, v.id DESC", scoreExpr)
	}

	if params.Cursor != nil {
		var frag string
		var args []interface{}
		if trimmed != "" && params.Cursor.Score != nil {
			frag, args = params.Cursor.ScorePredicate(scoreExpr, "v.updated_at", "v.id", w.TakeArgs(3))
		} else {
			frag, args = params.Cursor.Predicate("v.updated_at", "v.id", w.TakeArgs(2))
		}
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			%s AS relevance_score
		FROM videos v
		%s
		%s
		ORDER BY %s
		LIMIT $%d`, videoListColumns, scoreExpr, videoListJoins, w.Clause(), orderBy, w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	rows, err := r.QueryContext(ctx, query, w.Args()...)
	if err != nil {
		r.GetLogger().Error("Failed to search videos",
			zap.Error(err),
			zap.String("query", trimmed),
		)
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}
	return collectVideoRows(rows, scanScoredRow)
}

// ListSuggestions returns related-video candidates for a source video, best
// score first. The cursor tuple stays (updated_at, id): the score depends on
// live engagement counts and would make an encoded boundary unstable.
func (r *videoRepository) ListSuggestions(ctx context.Context, params SuggestionParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(1)
	w.NotEq("v.id", params.VideoID)
	w.Eq("v.visibility", models.VisibilityPublic)
	scoreExpr := ranking.SuggestionScoreSQL(w, "v", params.SourceCategoryID, params.ViewerID)
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("v.updated_at", "v.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			%s AS relevance_score
		FROM videos v
		%s
		%s
		ORDER BY relevance_score DESC, v.updated_at DESC, v.id DESC
		LIMIT $%d`, videoListColumns, scoreExpr, videoListJoins, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	rows, err := r.QueryContext(ctx, query, w.Args()...)
	if err != nil {
		r.GetLogger().Error("Failed to list suggestions",
			zap.Error(err),
			zap.String("video_id", params.VideoID.String()),
		)
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return collectVideoRows(rows, scanScoredRow)
}

// ListChannel returns one creator's videos, newest first. IncludePrivate
// additionally surfaces private and still-processing uploads (studio view).
func (r *videoRepository) ListChannel(ctx context.Context, params ChannelFeedParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(1)
	w.Eq("v.user_id", params.UserID)
	if !params.IncludePrivate {
		w.Eq("v.visibility", models.VisibilityPublic)
		w.Eq("v.upload_status", models.UploadStatusReady)
	}
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("v.updated_at", "v.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM videos v
		%s
		%s
		ORDER BY v.updated_at DESC, v.id DESC
		LIMIT $%d`, videoListColumns, videoListJoins, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	rows, err := r.QueryContext(ctx, query, w.Args()...)
	if err != nil {
		r.GetLogger().Error("Failed to list channel videos",
			zap.Error(err),
			zap.String("user_id", params.UserID.String()),
		)
		return nil, fmt.Errorf("failed to list channel videos: %w", err)
	}
	return collectVideoRows(rows, func(rows *sql.Rows) (*models.VideoListItem, error) {
		return scanVideoListRow(rows)
	})
}

// ===============================
// ENGAGEMENT
// ===============================

// RecordView upserts the (user, video) view row. A repeat view bumps
// updated_at, which is what the history feed sorts on. Returns whether a new
// row was created (first view).
func (r *videoRepository) RecordView(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO video_views (user_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, video_id)
		DO UPDATE SET updated_at = NOW()
		RETURNING (created_at = updated_at) AS created`

	var created bool
	if err := r.QueryRowContext(ctx, query, userID, videoID).Scan(&created); err != nil {
		r.GetLogger().Error("Failed to record view",
			zap.Error(err),
			zap.String("video_id", videoID.String()),
		)
		return false, fmt.Errorf("failed to record view: %w", err)
	}
	return created, nil
}

// ToggleReaction applies like/dislike toggle semantics: no existing reaction
// inserts, the same reaction removes, a different one replaces. Returns the
// viewer's reaction after the toggle, nil when cleared.
func (r *videoRepository) ToggleReaction(ctx context.Context, userID, videoID uuid.UUID, reactionType string) (*string, error) {
	var current *string
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT reaction_type FROM video_reactions WHERE user_id = $1 AND video_id = $2 FOR UPDATE`,
			userID, videoID,
		).Scan(&existing)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO video_reactions (user_id, video_id, reaction_type) VALUES ($1, $2, $3)`,
				userID, videoID, reactionType)
			if err != nil {
				return err
			}
			current = &reactionType
		case err != nil:
			return err
		case existing == reactionType:
			_, err = tx.ExecContext(ctx,
				`DELETE FROM video_reactions WHERE user_id = $1 AND video_id = $2`,
				userID, videoID)
			if err != nil {
				return err
			}
			current = nil
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE video_reactions SET reaction_type = $3, updated_at = NOW() WHERE user_id = $1 AND video_id = $2`,
				userID, videoID, reactionType)
			if err != nil {
				return err
			}
			current = &reactionType
		}
		return nil
	})
	if err != nil {
		r.GetLogger().Error("Failed to toggle video reaction",
			zap.Error(err),
			zap.String("video_id", videoID.String()),
			zap.String("reaction", reactionType),
		)
		return nil, fmt.Errorf("failed to toggle video reaction: %w", err)
	}
	return current, nil
}

// ===============================
// ROW SCANNING
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVideoListRow scans one videoListColumns row plus any trailing
// feed-specific columns.
func scanVideoListRow(scanner rowScanner, extras ...interface{}) (*models.VideoListItem, error) {
	var item models.VideoListItem
	var user models.User

	dest := []interface{}{
		&item.ID, &item.UserID, &item.CategoryID, &item.Title, &item.Description,
		&item.Visibility, &item.UploadStatus, &item.UploadID, &item.PlaybackURL,
		&item.ThumbnailURL, &item.ThumbnailPublicID, &item.DurationSeconds,
		&item.CreatedAt, &item.UpdatedAt,
		&user.Username, &user.ImageURL,
		&item.ViewCount, &item.LikeCount, &item.DislikeCount,
	}
	dest = append(dest, extras...)

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	user.ID = item.UserID
	item.User = &user
	return &item, nil
}

// scanScoredRow scans a row carrying a trailing relevance_score column.
func scanScoredRow(rows *sql.Rows) (*models.VideoListItem, error) {
	var score float64
	item, err := scanVideoListRow(rows, &score)
	if err != nil {
		return nil, err
	}
	item.RelevanceScore = &score
	return item, nil
}

// collectVideoRows drains rows with the given per-row scanner.
func collectVideoRows(rows *sql.Rows, scan func(*sql.Rows) (*models.VideoListItem, error)) ([]*models.VideoListItem, error) {
	defer rows.Close()

	items := make([]*models.VideoListItem, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read video rows: %w", err)
	}
	return items, nil
}

// uuidArg converts an optional UUID into a bindable query argument. A nil id
// binds SQL NULL, which never matches an equality predicate.
func uuidArg(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

// nullableString binds NULL for the empty string so COALESCE keeps the
// current column value.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
