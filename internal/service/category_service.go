package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
)

var categorySortFields = map[string]string{
	"id":        "id",
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type CategoryService struct {
	repo domain.CategoryRepository
	cached
	log *zap.Logger
}

// NewCategoryService wires the service. c may be nil to disable caching.
func NewCategoryService(repo domain.CategoryRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, cached: cached{cache: c, ttl: ttl}, log: l.With(zap.String("component", "categories"))}
}

func (s *CategoryService) Create(ctx context.Context, in CreateCategoryInput) (*domain.Category, error) {
	if in.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("find parent: %w", err)
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
	}
	c := &domain.Category{
		Name:        in.Name,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		ParentID:    in.ParentID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.log.Error("create category failed", zap.Error(err))
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) FindAll(ctx context.Context, in ListInput) (*pagination.Result[domain.Category], error) {
	sort, err := pagination.ParseSort(in.OrderBy, categorySortFields)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.List(ctx, domain.ListFilter{Page: in.Params(), Sort: sort})
	if err != nil {
		s.log.Error("list categories failed", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return res, nil
}

func (s *CategoryService) FindOne(ctx context.Context, id uint) (*domain.Category, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, cacheKey("category", id), s.ttl, func(ctx context.Context) (*domain.Category, error) {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		if c == nil {
			return nil, ErrCategoryNotFound
		}
		return c, nil
	})
}

func (s *CategoryService) Update(ctx context.Context, id uint, in UpdateCategoryInput) (*domain.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Thumbnail != nil {
		c.Thumbnail = *in.Thumbnail
	}
	if err := s.repo.Save(ctx, c); err != nil {
		s.log.Error("update category failed", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("save category: %w", err)
	}
	invalidate(ctx, s.cache, s.log, cacheKey("category", id))
	return c, nil
}

func (s *CategoryService) Remove(ctx context.Context, id uint) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !ok {
		return ErrCategoryNotFound
	}
	invalidate(ctx, s.cache, s.log, cacheKey("category", id))
	return nil
}
