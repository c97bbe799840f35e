package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-api/internal/core/pagination"
)

type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Thumbnail   string         `gorm:"size:512" json:"thumbnail"`
	ParentID    *uint          `gorm:"index" json:"parentId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type ProductType string

const (
	ProductPhysical ProductType = "physical"
	ProductDigital  ProductType = "digital"
	ProductService  ProductType = "service"
)

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Quantity    int            `gorm:"not null;default:0" json:"quantity"`
	Type        ProductType    `gorm:"size:16;not null" json:"type"`
	Thumbnail   string         `gorm:"size:512" json:"thumbnail"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Partner struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	CategoryID uint           `gorm:"index;not null" json:"categoryId"`
	Category   *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Thumbnail  string         `gorm:"size:512" json:"thumbnail"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// ListFilter carries paging, ordering and the typed filters of every list
// endpoint. Each repository reads only the fields it supports.
type ListFilter struct {
	Page       pagination.Params
	Sort       pagination.Sort
	Name       string
	CategoryID *uint
	Search     string
}

// Repository is the persistence contract shared by the catalog resources.
type Repository[T any] interface {
	Create(ctx context.Context, m *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, f ListFilter) (*pagination.Result[T], error)
	Save(ctx context.Context, m *T) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
}

type CategoryRepository = Repository[Category]
type ProductRepository = Repository[Product]
type PartnerRepository = Repository[Partner]
