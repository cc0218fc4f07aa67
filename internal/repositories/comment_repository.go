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

// commentRepository implements CommentRepository over Postgres.
type commentRepository struct {
	*BaseRepository
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *database.Manager, logger *zap.Logger) CommentRepository {
	return &commentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a comment. parent_id, when set, has already been validated
// by the service as a top-level comment of the same video.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (user_id, video_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		comment.UserID, comment.VideoID, comment.ParentID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		r.GetLogger().Error("Failed to create comment",
			zap.Error(err),
			zap.String("video_id", comment.VideoID.String()),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a bare comment row, used for ownership and reply-depth
// checks before mutations.
func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	query := `
		SELECT id, user_id, video_id, parent_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1`

	var comment models.Comment
	err := r.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.UserID, &comment.VideoID, &comment.ParentID,
		&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// Delete removes an owner's comment; replies cascade in the schema. Returns
// false when no owned comment matched.
func (r *commentRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		r.GetLogger().Error("Failed to delete comment",
			zap.Error(err),
			zap.String("comment_id", id.String()),
		)
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}
	return affected > 0, nil
}

// ListForVideo returns a page of a video's comments, newest first, with
// author, reaction counts, reply counts and the viewer's own reaction.
// ParentID nil selects top-level comments, set it selects that comment's
// replies.
func (r *commentRepository) ListForVideo(ctx context.Context, params CommentListParams) ([]*models.Comment, error) {
	w := keyset.NewWhere(2)
	w.Eq("c.video_id", params.VideoID)
	if params.ParentID == nil {
		w.Append("c.parent_id IS NULL")
	} else {
		w.Eq("c.parent_id", *params.ParentID)
	}
	if params.Cursor != nil {
		frag, args := params.Cursor.Predicate("c.created_at", "c.id", w.TakeArgs(2))
		w.Append(frag, args...)
	}

	// $1 is the viewer for the reaction join and stays outside the builder.
	query := fmt.Sprintf(`
		SELECT
			c.id, c.user_id, c.video_id, c.parent_id, c.content,
			c.created_at, c.updated_at,
			u.username, u.image_url,
			COALESCE(cr_stats.like_count, 0) AS like_count,
			COALESCE(cr_stats.dislike_count, 0) AS dislike_count,
			COALESCE(reply_stats.reply_count, 0) AS reply_count,
			vr.reaction_type AS viewer_reaction
		FROM comments c
		INNER JOIN users u ON c.user_id = u.id
		LEFT JOIN (
			SELECT
				comment_id,
				COUNT(CASE WHEN reaction_type = 'like' THEN 1 END) AS like_count,
				COUNT(CASE WHEN reaction_type = 'dislike' THEN 1 END) AS dislike_count
			FROM comment_reactions
			GROUP BY comment_id
		) cr_stats ON c.id = cr_stats.comment_id
		LEFT JOIN (
			SELECT parent_id, COUNT(*) AS reply_count
			FROM comments
			WHERE parent_id IS NOT NULL
			GROUP BY parent_id
		) reply_stats ON c.id = reply_stats.parent_id
		LEFT JOIN comment_reactions vr ON c.id = vr.comment_id AND vr.user_id = $1
		%s
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $%d`, w.Clause(), w.TakeArgs(1))
	w.Bind(params.Limit + 1)

	args := append([]interface{}{uuidArg(params.ViewerID)}, w.Args()...)
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		r.GetLogger().Error("Failed to list comments",
			zap.Error(err),
			zap.String("video_id", params.VideoID.String()),
		)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		var user models.User
		var viewerReaction sql.NullString
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.VideoID, &comment.ParentID,
			&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
			&user.Username, &user.ImageURL,
			&comment.LikeCount, &comment.DislikeCount, &comment.ReplyCount,
			&viewerReaction,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		user.ID = comment.UserID
		comment.User = &user
		if viewerReaction.Valid {
			comment.ViewerReaction = &viewerReaction.String
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comment rows: %w", err)
	}
	return comments, nil
}

// CountForVideo returns the total comment count a video page displays next
// to the paginated thread.
func (r *commentRepository) CountForVideo(ctx context.Context, videoID uuid.UUID) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

// ToggleReaction applies like/dislike toggle semantics on a comment,
// mirroring the video reaction toggle.
func (r *commentRepository) ToggleReaction(ctx context.Context, userID, commentID uuid.UUID, reactionType string) (*string, error) {
	var current *string
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT reaction_type FROM comment_reactions WHERE user_id = $1 AND comment_id = $2 FOR UPDATE`,
			userID, commentID,
		).Scan(&existing)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO comment_reactions (user_id, comment_id, reaction_type) VALUES ($1, $2, $3)`,
				userID, commentID, reactionType)
			if err != nil {
				return err
			}
			current = &reactionType
		case err != nil:
			return err
		case existing == reactionType:
			_, err = tx.ExecContext(ctx,
				`DELETE FROM comment_reactions WHERE user_id = $1 AND comment_id = $2`,
				userID, commentID)
			if err != nil {
				return err
			}
			current = nil
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE comment_reactions SET reaction_type = $3, updated_at = NOW() WHERE user_id = $1 AND comment_id = $2`,
				userID, commentID, reactionType)
			if err != nil {
				return err
			}
			current = &reactionType
		}
		return nil
	})
	if err != nil {
		r.GetLogger().Error("Failed to toggle comment reaction",
			zap.Error(err),
			zap.String("comment_id", commentID.String()),
			zap.String("reaction", reactionType),
		)
		return nil, fmt.Errorf("failed to toggle comment reaction: %w", err)
	}
	return current, nil
}
