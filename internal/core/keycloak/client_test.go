package keycloak

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-api/internal/core/config"
)

type fakeIDP struct {
	mu       sync.Mutex
	adminOK  bool
	created  map[string]any
	mapped   []json.RawMessage
	verified map[string]bool
	password map[string]string
	form     url.Values
}

func (f *fakeIDP) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if !f.adminOK || r.PostForm.Get("client_id") != "admin-cli" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"admin-token","token_type":"Bearer","expires_in":60}`)
	})
	mux.HandleFunc("/realms/shop/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.form = r.PostForm
		f.mu.Unlock()
		if r.PostForm.Get("password") != "secret123" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"user-token","expires_in":300,"refresh_expires_in":1800,
			"refresh_token":"refresh","token_type":"Bearer","not-before-policy":0,"session_state":"s1","scope":"email profile"}`)
	})

	admin := http.NewServeMux()
	admin.HandleFunc("POST /admin/realms/shop/users", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.created = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	admin.HandleFunc("GET /admin/realms/shop/users", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("exact"))
		if q.Get("username") == "ana@example.com" || q.Get("email") == "ana@example.com" {
			_, _ = io.WriteString(w, `[{"id":"kc-1","username":"ana@example.com"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})
	admin.HandleFunc("GET /admin/realms/shop/clients/client-uuid/roles/user", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"role-1","name":"user"}`)
	})
	admin.HandleFunc("POST /admin/realms/shop/users/kc-1/role-mappings/clients/client-uuid", func(w http.ResponseWriter, r *http.Request) {
		var roles []json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&roles))
		f.mu.Lock()
		f.mapped = roles
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	admin.HandleFunc("PUT /admin/realms/shop/users/kc-1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.verified = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	admin.HandleFunc("PUT /admin/realms/shop/users/kc-1/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.password = map[string]string{"type": body["type"].(string), "value": body["value"].(string)}
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("/admin/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer admin-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		admin.ServeHTTP(w, r)
	}))
	return mux
}

func newTestClient(t *testing.T, f *fakeIDP) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	cfg := config.Keycloak{
		URL:           srv.URL + "/",
		Realm:         "shop",
		AdminUsername: "admin",
		AdminPassword: "admin",
		ClientID:      "storefront",
		ClientSecret:  "client-secret",
		ClientUUID:    "client-uuid",
	}
	return New(cfg, zap.NewNop(), srv.Client())
}

func TestAdminAccessToken_FailureYieldsEmpty(t *testing.T) {
	c := newTestClient(t, &fakeIDP{adminOK: false})
	assert.Equal(t, "", c.AdminAccessToken(context.Background()))

	c = newTestClient(t, &fakeIDP{adminOK: true})
	assert.Equal(t, "admin-token", c.AdminAccessToken(context.Background()))
}

func TestAdminAccessToken_Unreachable(t *testing.T) {
	c := New(config.Keycloak{URL: "http://127.0.0.1:1", Realm: "shop"}, zap.NewNop(), nil)
	assert.Equal(t, "", c.AdminAccessToken(context.Background()))
}

func TestCreateUser_PostsUserAndAssignsRole(t *testing.T) {
	f := &fakeIDP{adminOK: true}
	c := newTestClient(t, f)

	id, err := c.CreateUser(context.Background(), NewUser{
		Username:  "ana@example.com",
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Silva",
		Password:  "secret123",
		Role:      "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "kc-1", id)

	assert.Equal(t, "ana@example.com", f.created["username"])
	assert.Equal(t, "Ana", f.created["firstName"])
	assert.Equal(t, "Silva", f.created["lastName"])
	assert.Equal(t, true, f.created["enabled"])
	assert.Equal(t, false, f.created["emailVerified"])
	creds := f.created["credentials"].([]any)
	require.Len(t, creds, 1)
	cred := creds[0].(map[string]any)
	assert.Equal(t, "password", cred["type"])
	assert.Equal(t, "secret123", cred["value"])
	assert.Equal(t, false, cred["temporary"])

	require.Len(t, f.mapped, 1)
	assert.JSONEq(t, `{"id":"role-1","name":"user"}`, string(f.mapped[0]))
}

func TestCreateUser_NoAdminToken(t *testing.T) {
	c := newTestClient(t, &fakeIDP{adminOK: false})
	_, err := c.CreateUser(context.Background(), NewUser{Username: "ana@example.com", Role: "user"})
	assert.ErrorIs(t, err, ErrAdminToken)
}

func TestCreateUser_LookupMiss(t *testing.T) {
	c := newTestClient(t, &fakeIDP{adminOK: true})
	_, err := c.CreateUser(context.Background(), NewUser{Username: "ghost@example.com", Role: "user"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUser_UnknownRole(t *testing.T) {
	c := newTestClient(t, &fakeIDP{adminOK: true})
	_, err := c.CreateUser(context.Background(), NewUser{Username: "ana@example.com", Role: "root"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestUserToken(t *testing.T) {
	f := &fakeIDP{adminOK: true}
	c := newTestClient(t, f)

	tok, err := c.UserToken(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-token", tok.AccessToken)
	assert.Equal(t, 300, tok.ExpiresIn)
	assert.Equal(t, 1800, tok.RefreshExpiresIn)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.Equal(t, "s1", tok.SessionState)
	assert.Equal(t, "email profile", tok.Scope)

	assert.Equal(t, "password", f.form.Get("grant_type"))
	assert.Equal(t, "storefront", f.form.Get("client_id"))
	assert.Equal(t, "client-secret", f.form.Get("client_secret"))

	_, err = c.UserToken(context.Background(), "ana@example.com", "wrong")
	assert.Error(t, err)
}

func TestVerifyUserEmail(t *testing.T) {
	f := &fakeIDP{adminOK: true}
	c := newTestClient(t, f)

	require.NoError(t, c.VerifyUserEmail(context.Background(), "ana@example.com"))
	assert.Equal(t, map[string]bool{"emailVerified": true}, f.verified)

	assert.ErrorIs(t, c.VerifyUserEmail(context.Background(), "ghost@example.com"), ErrUserNotFound)
}

func TestUpdatePassword(t *testing.T) {
	f := &fakeIDP{adminOK: true}
	c := newTestClient(t, f)

	require.NoError(t, c.UpdatePassword(context.Background(), "kc-1", "n3w-password"))
	assert.Equal(t, map[string]string{"type": "password", "value": "n3w-password"}, f.password)

	c = newTestClient(t, &fakeIDP{adminOK: false})
	assert.ErrorIs(t, c.UpdatePassword(context.Background(), "kc-1", "x"), ErrAdminToken)
}

func TestEmailFromBearerToken(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "ana@example.com"}).SignedString([]byte("k"))
	require.NoError(t, err)
	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "kc-1"}).SignedString([]byte("k"))
	require.NoError(t, err)

	email, err := EmailFromBearerToken("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", email)

	_, err = EmailFromBearerToken(signed)
	assert.ErrorIs(t, err, ErrBearerPrefix)

	_, err = EmailFromBearerToken("Bearer not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenDecode)

	_, err = EmailFromBearerToken("Bearer " + noEmail)
	assert.ErrorIs(t, err, ErrEmailClaim)
}
