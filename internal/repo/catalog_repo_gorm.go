package repo

import (
	"strings"

	"gorm.io/gorm"

	"storefront-api/internal/domain"
)

type CategoryRepo struct{ gormRepo[domain.Category] }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{gormRepo[domain.Category]{db: db}}
}

type ProductRepo struct{ gormRepo[domain.Product] }

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{gormRepo[domain.Product]{db: db}}
}

type PartnerRepo struct{ gormRepo[domain.Partner] }

func NewPartnerRepo(db *gorm.DB) *PartnerRepo {
	return &PartnerRepo{gormRepo[domain.Partner]{
		db:      db,
		preload: []string{"Category"},
		filter:  partnerFilter,
	}}
}

func partnerFilter(q *gorm.DB, f domain.ListFilter) *gorm.DB {
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}
