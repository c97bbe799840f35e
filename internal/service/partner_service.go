package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
)

var partnerSortFields = map[string]string{
	"id":         "id",
	"name":       "name",
	"categoryId": "category_id",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

type PartnerService struct {
	repo       domain.PartnerRepository
	categories domain.CategoryRepository
	log        *zap.Logger
}

func NewPartnerService(repo domain.PartnerRepository, categories domain.CategoryRepository, l *zap.Logger) *PartnerService {
	return &PartnerService{repo: repo, categories: categories, log: l.With(zap.String("component", "partners"))}
}

func (s *PartnerService) requireCategory(ctx context.Context, id uint) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return ErrInvalidCategory
	}
	return nil
}

func (s *PartnerService) Create(ctx context.Context, in CreatePartnerInput) (*domain.Partner, error) {
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	p := &domain.Partner{Name: in.Name, CategoryID: in.CategoryID, Thumbnail: in.Thumbnail}
	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("create partner failed", zap.Error(err))
		return nil, fmt.Errorf("create partner: %w", err)
	}
	return p, nil
}

func (s *PartnerService) FindAll(ctx context.Context, in PartnerListInput) (*pagination.Result[domain.Partner], error) {
	sort, err := pagination.ParseSort(in.OrderBy, partnerSortFields)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.List(ctx, domain.ListFilter{
		Page:       in.Params(),
		Sort:       sort,
		Name:       in.Name,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		s.log.Error("list partners failed", zap.Error(err))
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return res, nil
}

func (s *PartnerService) FindOne(ctx context.Context, id uint) (*domain.Partner, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}
	if p == nil {
		return nil, ErrPartnerNotFound
	}
	return p, nil
}

func (s *PartnerService) Update(ctx context.Context, id uint, in UpdatePartnerInput) (*domain.Partner, error) {
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Thumbnail != nil {
		p.Thumbnail = *in.Thumbnail
	}
	p.Category = nil
	if err := s.repo.Save(ctx, p); err != nil {
		s.log.Error("update partner failed", zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("save partner: %w", err)
	}
	return p, nil
}

func (s *PartnerService) Remove(ctx context.Context, id uint) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	if !ok {
		return ErrPartnerNotFound
	}
	return nil
}
