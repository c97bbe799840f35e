package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
)

// gormRepo is the soft-delete aware CRUD shared by every resource.
// A missing row is (nil, nil), never gorm.ErrRecordNotFound.
type gormRepo[T any] struct {
	db      *gorm.DB
	preload []string
	filter  func(q *gorm.DB, f domain.ListFilter) *gorm.DB
}

func (r *gormRepo[T]) Create(ctx context.Context, m *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (r *gormRepo[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var m T
	q := r.db.WithContext(ctx)
	for _, p := range r.preload {
		q = q.Preload(p)
	}
	err := q.First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepo[T]) List(ctx context.Context, f domain.ListFilter) (*pagination.Result[T], error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if r.filter != nil {
		q = r.filter(q, f)
	}
	return pagination.Paginate[T](ctx, q, f.Page, f.Sort, r.preload...)
}

func (r *gormRepo[T]) Save(ctx context.Context, m *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

// SoftDelete stamps deleted_at. The bool is false when no live row matched.
func (r *gormRepo[T]) SoftDelete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func first[T any](q *gorm.DB) (*T, error) {
	var m T
	err := q.First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AutoMigrate creates or updates every table the API owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Category{}, &domain.Product{}, &domain.Partner{}, &domain.User{})
}
