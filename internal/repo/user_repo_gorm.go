package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"storefront-api/internal/domain"
)

type UserRepo struct{ gormRepo[domain.User] }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{gormRepo[domain.User]{db: db, filter: userSearch}}
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx).Where("email = ?", email))
}

// FindByDocument also sees soft-deleted rows; the unique index still holds them.
func (r *UserRepo) FindByDocument(ctx context.Context, document string) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx).Unscoped().Where("document = ?", document))
}

func (r *UserRepo) FindByKeycloakID(ctx context.Context, keycloakUserID string) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx).Where("keycloak_user_id = ?", keycloakUserID))
}

// FindPendingCode matches email, external id and pending code together.
func (r *UserRepo) FindPendingCode(ctx context.Context, email, keycloakUserID, code string) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx).
		Where("email = ? AND keycloak_user_id = ? AND verification_code = ?", email, keycloakUserID, code))
}

// ExistsByEmailOrDocument counts soft-deleted users too, matching the unique
// indexes on email and document.
func (r *UserRepo) ExistsByEmailOrDocument(ctx context.Context, email string, document *string) (bool, error) {
	cond := r.db.Where("email = ?", email)
	if document != nil && *document != "" {
		cond = cond.Or("document = ?", *document)
	}
	var n int64
	if err := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).Where(cond).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) Transaction(ctx context.Context, fn func(domain.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUserRepo(tx))
	})
}

// userSearch matches the term against name, email and phone, and its digits
// against the normalized document.
func userSearch(q *gorm.DB, f domain.ListFilter) *gorm.DB {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return q
	}
	like := "%" + term + "%"
	cond := q.Session(&gorm.Session{NewDB: true}).
		Where("LOWER(name) LIKE ?", like).
		Or("LOWER(email) LIKE ?", like).
		Or("phone LIKE ?", like)
	if digits := strings.Map(keepDigit, term); digits != "" {
		cond = cond.Or("document LIKE ?", "%"+digits+"%")
	}
	return q.Where(cond)
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
