package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/cache"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
)

const categoryCacheTTL = time.Hour

// categoryService implements CategoryService with a cache in front: the
// category set is migration-seeded and effectively static.
type categoryService struct {
	categoryRepo repositories.CategoryRepository
	cache        cache.Cache
	logger       *zap.Logger
}

// NewCategoryService creates the category service.
func NewCategoryService(
	categoryRepo repositories.CategoryRepository,
	cacheClient cache.Cache,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		cache:        cacheClient,
		logger:       logger,
	}
}

// List returns all categories, serving from cache when warm.
func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	key := cache.Key("categories", "all")

	var cached []*models.Category
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("Category cache read failed", zap.Error(err))
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list categories")
	}

	if err := s.cache.Set(ctx, key, categories, categoryCacheTTL); err != nil {
		s.logger.Warn("Category cache write failed", zap.Error(err))
	}
	return categories, nil
}

// Get returns one category.
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("category", id.String())
		}
		return nil, NewInternalError("failed to load category")
	}
	return category, nil
}
