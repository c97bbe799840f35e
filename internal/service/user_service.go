package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/keycloak"
	"storefront-api/internal/core/mailer"
	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
	"storefront-api/pkg/utils"
)

// MaxResetAttempts is how many wrong reset codes are tolerated. The next
// attempt deactivates the account.
const MaxResetAttempts = 3

type IdentityProvider interface {
	CreateUser(ctx context.Context, u keycloak.NewUser) (string, error)
	UserToken(ctx context.Context, username, password string) (*keycloak.TokenResponse, error)
	VerifyUserEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, password string) error
}

type MailDispatcher interface {
	Dispatch(m mailer.Message)
}

var userSortFields = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// UserProfile is what a user sees about themselves.
type UserProfile struct {
	ID            uint        `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Document      *string     `json:"document"`
	Phone         string      `json:"phone"`
	Role          domain.Role `json:"role"`
	EmailVerified bool        `json:"emailVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type UserService struct {
	repo domain.UserRepository
	idp  IdentityProvider
	mail MailDispatcher
	tmpl config.Mail
	log  *zap.Logger
}

func NewUserService(repo domain.UserRepository, idp IdentityProvider, mail MailDispatcher, tmpl config.Mail, l *zap.Logger) *UserService {
	return &UserService{repo: repo, idp: idp, mail: mail, tmpl: tmpl, log: l.With(zap.String("component", "users"))}
}

// Create registers an account at the identity provider and locally, sends
// the verification code and logs the new user in.
func (s *UserService) Create(ctx context.Context, in CreateUserInput, role domain.Role) (*keycloak.TokenResponse, error) {
	email := normalizeEmail(in.Email)
	doc := normalizeDocument(in.Document)

	exists, err := s.repo.ExistsByEmailOrDocument(ctx, email, doc)
	if err != nil {
		s.log.Error("register: duplicate check failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	var user *domain.User
	err = s.repo.Transaction(ctx, func(tx domain.UserRepository) error {
		first, last := splitName(in.Name)
		kid, err := s.idp.CreateUser(ctx, keycloak.NewUser{
			Username:  email,
			Email:     email,
			FirstName: first,
			LastName:  last,
			Password:  in.Password,
			Role:      string(role),
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIdentityProvider, err)
		}
		code, err := utils.NewVerificationCode()
		if err != nil {
			return err
		}
		user = &domain.User{
			Email:            email,
			Document:         doc,
			Phone:            strings.TrimSpace(in.Phone),
			Name:             strings.TrimSpace(in.Name),
			Role:             role,
			KeycloakUserID:   kid,
			VerificationCode: &code,
			Active:           true,
		}
		return tx.Create(ctx, user)
	})
	if err != nil {
		s.log.Error("register failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.sendCode(user, "Verify your e-mail", s.tmpl.VerifyEmailTemplateID)
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))

	return s.Auth(ctx, AuthInput{Email: email, Password: in.Password})
}

// Auth exchanges credentials for tokens. Unknown, inactive and wrong
// password all produce ErrInvalidCredentials.
func (s *UserService) Auth(ctx context.Context, in AuthInput) (*keycloak.TokenResponse, error) {
	email := normalizeEmail(in.Email)
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("auth: lookup failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil || !u.Active {
		return nil, ErrInvalidCredentials
	}
	tok, err := s.idp.UserToken(ctx, email, in.Password)
	if err != nil || tok == nil {
		return nil, ErrInvalidCredentials
	}
	return tok, nil
}

// VerifyEmail consumes the pending code of the user identified by both the
// token email and the token subject.
func (s *UserService) VerifyEmail(ctx context.Context, keycloakUserID, email, code string) error {
	u, err := s.repo.FindPendingCode(ctx, normalizeEmail(email), keycloakUserID, strings.TrimSpace(code))
	if err != nil {
		s.log.Error("verify: lookup failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("find pending code: %w", err)
	}
	if u == nil {
		return ErrInvalidVerificationCode
	}
	err = s.repo.Transaction(ctx, func(tx domain.UserRepository) error {
		if err := s.idp.VerifyUserEmail(ctx, u.Email); err != nil {
			return fmt.Errorf("%w: %v", ErrIdentityProvider, err)
		}
		u.EmailVerified = true
		u.VerificationCode = nil
		return tx.Save(ctx, u)
	})
	if err != nil {
		s.log.Error("verify email failed", zap.Uint("user_id", u.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *UserService) ResendVerificationEmail(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		s.log.Error("resend: lookup failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil || u.EmailVerified || !u.Active {
		return ErrUserNotFound
	}
	if err := s.issueCode(ctx, u); err != nil {
		return err
	}
	s.sendCode(u, "Verify your e-mail", s.tmpl.VerifyEmailTemplateID)
	return nil
}

func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		s.log.Error("forgot: lookup failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil || !u.Active {
		return ErrUserNotFound
	}
	if err := s.issueCode(ctx, u); err != nil {
		return err
	}
	s.sendCode(u, "Reset your password", s.tmpl.ResetPasswordTemplateID)
	return nil
}

// ResetPassword checks the lockout before the code, counts wrong codes and
// commits those state changes even though the call fails.
func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	email := normalizeEmail(in.Email)
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("reset: lookup failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil || !u.Active {
		return ErrInvalidVerificationCode
	}

	var outcome error
	err = s.repo.Transaction(ctx, func(tx domain.UserRepository) error {
		cur, err := tx.FindByID(ctx, u.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			outcome = ErrInvalidVerificationCode
			return nil
		}
		switch {
		case cur.ResetPasswordTryCount >= MaxResetAttempts:
			cur.Active = false
			cur.VerificationCode = nil
			cur.ResetPasswordTryCount = 0
			outcome = ErrAccountLocked
			return tx.Save(ctx, cur)
		case cur.VerificationCode == nil || *cur.VerificationCode != strings.TrimSpace(in.VerificationCode):
			cur.ResetPasswordTryCount++
			outcome = ErrInvalidVerificationCode
			return tx.Save(ctx, cur)
		}
		if err := s.idp.UpdatePassword(ctx, cur.KeycloakUserID, in.Password); err != nil {
			return fmt.Errorf("%w: %v", ErrIdentityProvider, err)
		}
		cur.VerificationCode = nil
		cur.ResetPasswordTryCount = 0
		return tx.Save(ctx, cur)
	})
	if err != nil {
		s.log.Error("reset password failed", zap.Uint("user_id", u.ID), zap.Error(err))
		return err
	}
	if errors.Is(outcome, ErrAccountLocked) {
		s.log.Warn("account locked after failed resets", zap.Uint("user_id", u.ID))
	}
	return outcome
}

func (s *UserService) FindAll(ctx context.Context, in UserListInput) (*pagination.Result[domain.User], error) {
	sort, err := pagination.ParseSort(in.OrderBy, userSortFields)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.List(ctx, domain.ListFilter{Page: in.Params(), Sort: sort, Search: in.Search})
	if err != nil {
		s.log.Error("list users failed", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	return res, nil
}

func (s *UserService) CurrentUser(ctx context.Context, keycloakUserID string) (*UserProfile, error) {
	u, err := s.repo.FindByKeycloakID(ctx, keycloakUserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return &UserProfile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Document:      u.Document,
		Phone:         u.Phone,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}, nil
}

func (s *UserService) FindOne(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Update edits the caller's own profile.
func (s *UserService) Update(ctx context.Context, keycloakUserID string, in UpdateUserInput) (*domain.User, error) {
	u, err := s.repo.FindByKeycloakID(ctx, keycloakUserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	doc := normalizeDocument(in.Document)
	if doc != nil {
		other, err := s.repo.FindByDocument(ctx, *doc)
		if err != nil {
			return nil, fmt.Errorf("find by document: %w", err)
		}
		if other != nil && other.ID != u.ID {
			return nil, ErrUserExists
		}
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Phone = strings.TrimSpace(in.Phone)
	u.Document = doc
	if err := s.repo.Save(ctx, u); err != nil {
		s.log.Error("update user failed", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (s *UserService) Remove(ctx context.Context, id uint) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// issueCode replaces the pending code. Any earlier verify or reset code stops
// working.
func (s *UserService) issueCode(ctx context.Context, u *domain.User) error {
	code, err := utils.NewVerificationCode()
	if err != nil {
		return err
	}
	u.VerificationCode = &code
	if err := s.repo.Save(ctx, u); err != nil {
		s.log.Error("persist verification code failed", zap.Uint("user_id", u.ID), zap.Error(err))
		return fmt.Errorf("save code: %w", err)
	}
	return nil
}

func (s *UserService) sendCode(u *domain.User, subject, templateID string) {
	if u.VerificationCode == nil {
		return
	}
	s.mail.Dispatch(mailer.Message{
		Email:      u.Email,
		Name:       u.Name,
		Subject:    subject,
		TemplateID: templateID,
		Data: map[string]any{
			"name":             u.Name,
			"verificationCode": *u.VerificationCode,
		},
	})
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// normalizeDocument keeps digits only. Empty means "no document" (NULL).
func normalizeDocument(doc string) *string {
	d := utils.OnlyDigits(doc)
	if d == "" {
		return nil
	}
	return &d
}

// splitName returns the first word and the rest.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
