package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/database"
	"storefront-api/internal/core/keycloak"
	"storefront-api/internal/core/mailer"
	"storefront-api/internal/repo"
)

type fakeIDP struct {
	mu        sync.Mutex
	createErr error
	created   []keycloak.NewUser
	passwords map[string]string // username -> password
	verified  []string
	updated   map[string]string // keycloak id -> password
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{passwords: map[string]string{}, updated: map[string]string{}}
}

func (f *fakeIDP) CreateUser(_ context.Context, u keycloak.NewUser) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, u)
	f.passwords[u.Username] = u.Password
	return "kc-" + u.Username, nil
}

func (f *fakeIDP) UserToken(_ context.Context, username, password string) (*keycloak.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[username]; !ok || pw != password {
		return nil, errors.New("invalid_grant")
	}
	return &keycloak.TokenResponse{AccessToken: "token-" + username, TokenType: "Bearer", ExpiresIn: 300}, nil
}

func (f *fakeIDP) VerifyUserEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, email)
	return nil
}

func (f *fakeIDP) UpdatePassword(_ context.Context, userID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[userID] = password
	return nil
}

type fakeMail struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (f *fakeMail) Dispatch(m mailer.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
}

func (f *fakeMail) last() mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "service.db"),
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

type userFixture struct {
	db   *gorm.DB
	svc  *UserService
	idp  *fakeIDP
	mail *fakeMail
}

func newUserFixture(t *testing.T) *userFixture {
	db := openTestDB(t)
	idp := newFakeIDP()
	mail := &fakeMail{}
	tmpl := config.Mail{VerifyEmailTemplateID: "verify-email", ResetPasswordTemplateID: "reset-password"}
	return &userFixture{
		db:   db,
		svc:  NewUserService(repo.NewUserRepo(db), idp, mail, tmpl, zap.NewNop()),
		idp:  idp,
		mail: mail,
	}
}
