// Package keycloak talks to the external identity provider: admin tokens,
// user provisioning with client roles, end-user password grants, email
// verification and password resets.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/metrics"
)

const adminClientID = "admin-cli"

var (
	ErrAdminToken   = errors.New("keycloak: failed to get admin access token")
	ErrUserNotFound = errors.New("keycloak: user not found")
)

// APIError is a non-2xx answer from the admin REST API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("keycloak: %s %s: http %d: %s", e.Method, e.Path, e.Status, e.Body)
}

type NewUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// TokenResponse mirrors the token endpoint body handed back to API clients.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	TokenType        string `json:"token_type"`
	IDToken          string `json:"id_token,omitempty"`
	NotBeforePolicy  int    `json:"not-before-policy"`
	SessionState     string `json:"session_state,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

type Client struct {
	cfg  config.Keycloak
	http *http.Client
	log  *zap.Logger
}

// New builds a client. hc may be nil, in which case a client with the
// configured timeout is used.
func New(cfg config.Keycloak, l *zap.Logger, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Client{cfg: cfg, http: hc, log: l.With(zap.String("component", "keycloak"))}
}

func (c *Client) tokenURL(realm string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.cfg.BaseURL(), url.PathEscape(realm))
}

func (c *Client) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/realms/%s%s", c.cfg.BaseURL(), url.PathEscape(c.cfg.Realm), path)
}

func (c *Client) passwordGrant(ctx context.Context, realm, clientID, secret, username, password string) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL(realm),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()
	return conf.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.http), username, password)
}

// AdminAccessToken returns a fresh admin bearer token, or "" when it cannot
// be obtained. Failures are logged, never returned.
func (c *Client) AdminAccessToken(ctx context.Context) string {
	tok, err := c.passwordGrant(ctx, "master", adminClientID, "", c.cfg.AdminUsername, c.cfg.AdminPassword)
	metrics.KeycloakRequests.WithLabelValues("admin_token", metrics.Outcome(err)).Inc()
	if err != nil {
		c.log.Error("admin token request failed", zap.Error(err))
		return ""
	}
	return tok.AccessToken
}

// adminClient returns an http.Client that authenticates every request with a
// newly acquired admin token.
func (c *Client) adminClient(ctx context.Context) (*http.Client, error) {
	token := c.AdminAccessToken(ctx)
	if token == "" {
		return nil, ErrAdminToken
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})), nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("keycloak: encode %s body: %w", path, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.adminURL(path), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("keycloak: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("keycloak: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

type credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type userRepresentation struct {
	ID            string       `json:"id,omitempty"`
	Username      string       `json:"username,omitempty"`
	Email         string       `json:"email,omitempty"`
	FirstName     string       `json:"firstName,omitempty"`
	LastName      string       `json:"lastName,omitempty"`
	Enabled       bool         `json:"enabled"`
	EmailVerified bool         `json:"emailVerified"`
	Credentials   []credential `json:"credentials,omitempty"`
}

func (c *Client) findUser(ctx context.Context, hc *http.Client, key, value string) (string, error) {
	q := url.Values{key: {value}, "exact": {"true"}}
	var users []userRepresentation
	if err := c.do(ctx, hc, http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return "", err
	}
	if len(users) == 0 || users[0].ID == "" {
		return "", fmt.Errorf("%w: %s=%s", ErrUserNotFound, key, value)
	}
	return users[0].ID, nil
}

// CreateUser provisions an enabled, email-unverified account with a
// permanent password and assigns it the client role u.Role. It returns the
// external user id.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (id string, err error) {
	defer func() {
		metrics.KeycloakRequests.WithLabelValues("create_user", metrics.Outcome(err)).Inc()
		if err != nil {
			c.log.Error("create user failed", zap.String("username", u.Username), zap.Error(err))
		}
	}()

	hc, err := c.adminClient(ctx)
	if err != nil {
		return "", err
	}
	err = c.do(ctx, hc, http.MethodPost, "/users", userRepresentation{
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Enabled:       true,
		EmailVerified: false,
		Credentials:   []credential{{Type: "password", Value: u.Password, Temporary: false}},
	}, nil)
	if err != nil {
		return "", err
	}

	id, err = c.findUser(ctx, hc, "username", u.Username)
	if err != nil {
		return "", err
	}

	clientPath := "/clients/" + url.PathEscape(c.cfg.ClientUUID)
	var role json.RawMessage
	if err = c.do(ctx, hc, http.MethodGet, clientPath+"/roles/"+url.PathEscape(u.Role), nil, &role); err != nil {
		return "", err
	}
	mapping := "/users/" + url.PathEscape(id) + "/role-mappings" + clientPath
	if err = c.do(ctx, hc, http.MethodPost, mapping, []json.RawMessage{role}, nil); err != nil {
		return "", err
	}
	c.log.Info("user created", zap.String("username", u.Username), zap.String("keycloak_user_id", id), zap.String("role", u.Role))
	return id, nil
}

// UserToken exchanges end-user credentials with the application client.
func (c *Client) UserToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	tok, err := c.passwordGrant(ctx, c.cfg.Realm, c.cfg.ClientID, c.cfg.ClientSecret, username, password)
	metrics.KeycloakRequests.WithLabelValues("user_token", metrics.Outcome(err)).Inc()
	if err != nil {
		c.log.Warn("user token request failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return tokenResponse(tok), nil
}

// VerifyUserEmail flips the emailVerified flag of the account with email.
func (c *Client) VerifyUserEmail(ctx context.Context, email string) (err error) {
	defer func() {
		metrics.KeycloakRequests.WithLabelValues("verify_email", metrics.Outcome(err)).Inc()
		if err != nil {
			c.log.Error("verify user email failed", zap.String("email", email), zap.Error(err))
		}
	}()

	hc, err := c.adminClient(ctx)
	if err != nil {
		return err
	}
	id, err := c.findUser(ctx, hc, "email", email)
	if err != nil {
		return err
	}
	return c.do(ctx, hc, http.MethodPut, "/users/"+url.PathEscape(id), map[string]bool{"emailVerified": true}, nil)
}

// UpdatePassword sets a permanent password on the external account userID.
func (c *Client) UpdatePassword(ctx context.Context, userID, password string) (err error) {
	defer func() {
		metrics.KeycloakRequests.WithLabelValues("reset_password", metrics.Outcome(err)).Inc()
		if err != nil {
			c.log.Error("update password failed", zap.String("keycloak_user_id", userID), zap.Error(err))
		}
	}()

	hc, err := c.adminClient(ctx)
	if err != nil {
		return err
	}
	path := "/users/" + url.PathEscape(userID) + "/reset-password"
	return c.do(ctx, hc, http.MethodPut, path, credential{Type: "password", Value: password, Temporary: false}, nil)
}

func tokenResponse(t *oauth2.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken:      t.AccessToken,
		ExpiresIn:        extraInt(t, "expires_in"),
		RefreshExpiresIn: extraInt(t, "refresh_expires_in"),
		RefreshToken:     t.RefreshToken,
		TokenType:        t.TokenType,
		IDToken:          extraString(t, "id_token"),
		NotBeforePolicy:  extraInt(t, "not-before-policy"),
		SessionState:     extraString(t, "session_state"),
		Scope:            extraString(t, "scope"),
	}
}

func extraString(t *oauth2.Token, key string) string {
	s, _ := t.Extra(key).(string)
	return s
}

func extraInt(t *oauth2.Token, key string) int {
	switch v := t.Extra(key).(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
