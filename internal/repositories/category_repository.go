package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/database"
	"github.com/quetrea/youtube-clone/internal/models"
)

// categoryRepository implements CategoryRepository over Postgres.
type categoryRepository struct {
	*BaseRepository
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *database.Manager, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// List returns all categories alphabetically. The set is small and seeded by
// migration; services cache it.
func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		ORDER BY name ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		r.GetLogger().Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var category models.Category
		err := rows.Scan(
			&category.ID, &category.Name, &category.Description,
			&category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category rows: %w", err)
	}
	return categories, nil
}

// GetByID retrieves one category.
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		WHERE id = $1`

	var category models.Category
	err := r.QueryRowContext(ctx, query, id).Scan(
		&category.ID, &category.Name, &category.Description,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}
