package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/database"
	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
)

// playlistRepository implements PlaylistRepository over Postgres.
type playlistRepository struct {
	*BaseRepository
}

// NewPlaylistRepository creates a new playlist repository.
func NewPlaylistRepository(db *database.Manager, logger *zap.Logger) PlaylistRepository {
	return &playlistRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// PLAYLIST CRUD
// ===============================

// Create inserts a playlist for its owner.
func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	query := `
		INSERT INTO playlists (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		playlist.UserID, playlist.Name, playlist.Description,
	).Scan(&playlist.ID, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		r.GetLogger().Error("Failed to create playlist",
			zap.Error(err),
			zap.String("user_id", playlist.UserID.String()),
		)
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

// GetByID retrieves a playlist with its video count.
func (r *playlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.created_at, p.updated_at,
			COALESCE(pv_stats.video_count, 0) AS video_count
		FROM playlists p
		LEFT JOIN (
			SELECT playlist_id, COUNT(*) AS video_count
			FROM playlist_videos
			GROUP BY playlist_id
		) pv_stats ON p.id = pv_stats.playlist_id
		WHERE p.id = $1`

	var playlist models.Playlist
	err := r.QueryRowContext(ctx, query, id).Scan(
		&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.Description,
		&playlist.CreatedAt, &playlist.UpdatedAt, &playlist.VideoCount,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return &playlist, nil
}

// Update writes the owner-editable fields, scoped to the owner.
func (r *playlistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	query := `
		UPDATE playlists
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		playlist.Name, playlist.Description, playlist.ID, playlist.UserID,
	).Scan(&playlist.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return err
		}
		r.GetLogger().Error("Failed to update playlist",
			zap.Error(err),
			zap.String("playlist_id", playlist.ID.String()),
		)
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return nil
}

// Delete removes an owner's playlist. Returns false when no owned playlist
// matched.
func (r *playlistRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM playlists WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		r.GetLogger().Error("Failed to delete playlist",
			zap.Error(err),
			zap.String("playlist_id", id.String()),
		)
		return false, fmt.Errorf("failed to delete playlist: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete playlist: %w", err)
	}
	return affected > 0, nil
}

// ListForOwner returns a page of the owner's playlists with video counts,
// most recently updated first.
func (r *playlistRepository) ListForOwner(ctx context.Context, params PlaylistListParams) ([]*models.Playlist, error) {
	w := keyset.NewWhere(1)
	w.Eq("p.user_id", params.OwnerID)
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("p.updated_at", "p.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.user_id, p.name, p.description, p.created_at, p.updated_at,
			COALESCE(pv_stats.video_count, 0) AS video_count
		FROM playlists p
		LEFT JOIN (
			SELECT playlist_id, COUNT(*) AS video_count
			FROM playlist_videos
			GROUP BY playlist_id
		) pv_stats ON p.id = pv_stats.playlist_id
		%s
		ORDER BY p.updated_at DESC, p.id DESC
		LIMIT $%d`, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	rows, err := r.QueryContext(ctx, query, w.Args()...)
	if err != nil {
		r.GetLogger().Error("Failed to list playlists",
			zap.Error(err),
			zap.String("user_id", params.OwnerID.String()),
		)
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*models.Playlist, 0)
	for rows.Next() {
		var playlist models.Playlist
		err := rows.Scan(
			&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.Description,
			&playlist.CreatedAt, &playlist.UpdatedAt, &playlist.VideoCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, &playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist rows: %w", err)
	}
	return playlists, nil
}

// ===============================
// PLAYLIST VIDEOS
// ===============================

// AddVideo links a video into a playlist. Returns ErrAlreadyExists when the
// video is already in the playlist.
func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	_, err := r.ExecContext(ctx,
		`INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)`,
		playlistID, videoID)
	if err != nil {
		if r.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		r.GetLogger().Error("Failed to add video to playlist",
			zap.Error(err),
			zap.String("playlist_id", playlistID.String()),
			zap.String("video_id", videoID.String()),
		)
		return fmt.Errorf("failed to add video to playlist: %w", err)
	}
	return nil
}

// RemoveVideo unlinks a video from a playlist. Returns false when the video
// was not in the playlist.
func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`,
		playlistID, videoID)
	if err != nil {
		r.GetLogger().Error("Failed to remove video from playlist",
			zap.Error(err),
			zap.String("playlist_id", playlistID.String()),
			zap.String("video_id", videoID.String()),
		)
		return false, fmt.Errorf("failed to remove video from playlist: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove video from playlist: %w", err)
	}
	return affected > 0, nil
}

// ContainsVideo reports whether a playlist already holds a video.
func (r *playlistRepository) ContainsVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2)`,
		playlistID, videoID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check playlist video: %w", err)
	}
	return exists, nil
}

// ListVideos returns a page of a playlist's videos, most recently added
// first. Ownership has already been checked by the service, so private
// videos the owner added stay visible.
func (r *playlistRepository) ListVideos(ctx context.Context, params PlaylistVideosParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(1)
	w.Eq("pv.playlist_id", params.PlaylistID)
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("pv.created_at", "v.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			pv.created_at AS added_at
		FROM playlist_videos pv
		INNER JOIN videos v ON pv.video_id = v.id
		%s
		%s
		ORDER BY pv.created_at DESC, v.id DESC
		LIMIT $%d`, videoListColumns, videoListJoins, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	rows, err := r.QueryContext(ctx, query, w.Args()...)
	if err != nil {
		r.GetLogger().Error("Failed to list playlist videos",
			zap.Error(err),
			zap.String("playlist_id", params.PlaylistID.String()),
		)
		return nil, fmt.Errorf("failed to list playlist videos: %w", err)
	}
	return collectVideoRows(rows, func(rows *sql.Rows) (*models.VideoListItem, error) {
		var addedAt sql.NullTime
		item, err := scanVideoListRow(rows, &addedAt)
		if err != nil {
			return nil, err
		}
		if addedAt.Valid {
			item.AddedAt = &addedAt.Time
		}
		return item, nil
	})
}

// ===============================
// VIEWER-DERIVED FEEDS
// ===============================

// ListLiked returns the viewer's liked videos, most recently reacted first.
// The CTE narrows the scan to the viewer's like rows before joining videos.
func (r *playlistRepository) ListLiked(ctx context.Context, params ViewerFeedParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(2)
	w.Eq("v.visibility", models.VisibilityPublic)
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("lv.reacted_at", "v.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		WITH viewer_liked_videos AS (
			SELECT video_id, updated_at AS reacted_at
			FROM video_reactions
			WHERE user_id = $1 AND reaction_type = 'like'
		)
		SELECT %s,
			lv.reacted_at
		FROM viewer_liked_videos lv
		INNER JOIN videos v ON lv.video_id = v.id
		%s
		%s
		ORDER BY lv.reacted_at DESC, v.id DESC
		LIMIT $%d`, videoListColumns, videoListJoins, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	args := append([]interface{}{params.ViewerID}, w.Args()...)
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		r.GetLogger().Error("Failed to list liked videos",
			zap.Error(err),
			zap.String("viewer_id", params.ViewerID.String()),
		)
		return nil, fmt.Errorf("failed to list liked videos: %w", err)
	}
	return collectVideoRows(rows, scanReactedRow)
}

// ListHistory returns the viewer's watch history, most recently viewed
// first. A rewatch bumps the view row's updated_at and moves the video to
// the top.
func (r *playlistRepository) ListHistory(ctx context.Context, params ViewerFeedParams) ([]*models.VideoListItem, error) {
	w := keyset.NewWhere(2)
	w.Eq("v.visibility", models.VisibilityPublic)
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("vv.viewed_at", "v.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	query := fmt.Sprintf(`
		WITH viewer_video_views AS (
			SELECT video_id, updated_at AS viewed_at
			FROM video_views
			WHERE user_id = $1
		)
		SELECT %s,
			vv.viewed_at
		FROM viewer_video_views vv
		INNER JOIN videos v ON vv.video_id = v.id
		%s
		%s
		ORDER BY vv.viewed_at DESC, v.id DESC
		LIMIT $%d`, videoListColumns, videoListJoins, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	args := append([]interface{}{params.ViewerID}, w.Args()...)
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		r.GetLogger().Error("Failed to list watch history",
			zap.Error(err),
			zap.String("viewer_id", params.ViewerID.String()),
		)
		return nil, fmt.Errorf("failed to list watch history: %w", err)
	}
	return collectVideoRows(rows, scanViewedRow)
}

// scanReactedRow scans a row carrying a trailing reacted_at column.
func scanReactedRow(rows *sql.Rows) (*models.VideoListItem, error) {
	var reactedAt sql.NullTime
	item, err := scanVideoListRow(rows, &reactedAt)
	if err != nil {
		return nil, err
	}
	if reactedAt.Valid {
		item.ReactedAt = &reactedAt.Time
	}
	return item, nil
}

// scanViewedRow scans a row carrying a trailing viewed_at column.
func scanViewedRow(rows *sql.Rows) (*models.VideoListItem, error) {
	var viewedAt sql.NullTime
	item, err := scanVideoListRow(rows, &viewedAt)
	if err != nil {
		return nil, err
	}
	if viewedAt.Valid {
		item.ViewedAt = &viewedAt.Time
	}
	return item, nil
}
