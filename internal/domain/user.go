package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-api/internal/core/pagination"
)

type Role string

const (
	RoleSysAdmin Role = "sys-admin"
	RolePartner  Role = "partner"
	RoleUser     Role = "user"
)

// User mirrors an identity-provider account. VerificationCode is the single
// pending-code slot shared by email verification and password reset.
type User struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	Email                 string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Document              *string        `gorm:"uniqueIndex;size:14" json:"document"`
	Phone                 string         `gorm:"size:32" json:"phone"`
	Name                  string         `gorm:"size:255;not null" json:"name"`
	Role                  Role           `gorm:"size:16;not null;default:user" json:"role"`
	KeycloakUserID        string         `gorm:"column:keycloak_user_id;size:64;index" json:"keycloakUserId"`
	EmailVerified         bool           `gorm:"not null;default:false" json:"emailVerified"`
	VerificationCode      *string        `gorm:"size:6" json:"-"`
	ResetPasswordTryCount int            `gorm:"not null;default:0" json:"-"`
	Active                bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByDocument(ctx context.Context, document string) (*User, error)
	FindByKeycloakID(ctx context.Context, keycloakUserID string) (*User, error)
	FindPendingCode(ctx context.Context, email, keycloakUserID, code string) (*User, error)
	ExistsByEmailOrDocument(ctx context.Context, email string, document *string) (bool, error)
	List(ctx context.Context, f ListFilter) (*pagination.Result[User], error)
	Save(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
	// Transaction runs fn against a repository bound to one database
	// transaction. Returning an error rolls it back.
	Transaction(ctx context.Context, fn func(UserRepository) error) error
}
