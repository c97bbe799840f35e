package service

import (
	"errors"

	"storefront-api/internal/core/pagination"
)

// Domain conflicts (client errors).
var (
	ErrUserExists              = errors.New("user already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrAccountLocked           = errors.New("account locked after too many failed attempts")
	ErrParentNotFound          = errors.New("parent category not found")
	ErrInvalidCategory         = errors.New("category does not exist")
	ErrInvalidSort             = pagination.ErrInvalidSort
)

// Not found.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrPartnerNotFound  = errors.New("partner not found")
)

// ErrIdentityProvider wraps failures of the external identity provider.
// Never shown to clients.
var ErrIdentityProvider = errors.New("identity provider failure")
