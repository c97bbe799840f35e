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

var productSortFields = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"type":      "type",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type ProductService struct {
	repo domain.ProductRepository
	cached
	log *zap.Logger
}

func NewProductService(repo domain.ProductRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *ProductService {
	return &ProductService{repo: repo, cached: cached{cache: c, ttl: ttl}, log: l.With(zap.String("component", "products"))}
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	p := &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Type:        domain.ProductType(in.Type),
		Thumbnail:   in.Thumbnail,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("create product failed", zap.Error(err))
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *ProductService) FindAll(ctx context.Context, in ListInput) (*pagination.Result[domain.Product], error) {
	sort, err := pagination.ParseSort(in.OrderBy, productSortFields)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.List(ctx, domain.ListFilter{Page: in.Params(), Sort: sort})
	if err != nil {
		s.log.Error("list products failed", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}
	return res, nil
}

func (s *ProductService) FindOne(ctx context.Context, id uint) (*domain.Product, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, cacheKey("product", id), s.ttl, func(ctx context.Context) (*domain.Product, error) {
		p, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		if p == nil {
			return nil, ErrProductNotFound
		}
		return p, nil
	})
}

func (s *ProductService) Update(ctx context.Context, id uint, in UpdateProductInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Type != nil {
		p.Type = domain.ProductType(*in.Type)
	}
	if in.Thumbnail != nil {
		p.Thumbnail = *in.Thumbnail
	}
	if err := s.repo.Save(ctx, p); err != nil {
		s.log.Error("update product failed", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("save product: %w", err)
	}
	invalidate(ctx, s.cache, s.log, cacheKey("product", id))
	return p, nil
}

func (s *ProductService) Remove(ctx context.Context, id uint) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !ok {
		return ErrProductNotFound
	}
	invalidate(ctx, s.cache, s.log, cacheKey("product", id))
	return nil
}
