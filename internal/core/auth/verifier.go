package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"storefront-api/internal/core/config"
)

var ErrInvalidToken = errors.New("invalid token")

type resourceAccess struct {
	Roles []string `json:"roles"`
}

// Claims is the subset of a Keycloak access token the API consumes.
type Claims struct {
	Email             string                    `json:"email"`
	PreferredUsername string                    `json:"preferred_username"`
	AuthorizedParty   string                    `json:"azp"`
	ResourceAccess    map[string]resourceAccess `json:"resource_access"`
	jwt.RegisteredClaims
}

// ClientRoles returns the roles granted on clientID.
func (c *Claims) ClientRoles(clientID string) []string {
	return c.ResourceAccess[clientID].Roles
}

type Verifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	clientID string
	jwks     *keyfunc.JWKS
}

// NewVerifier fetches the realm JWKS and keeps it fresh in the background.
// Call Close to stop the refresh goroutine.
func NewVerifier(cfg config.Keycloak, l *zap.Logger) (*Verifier, error) {
	jwks, err := keyfunc.Get(cfg.JWKSURL(), keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			l.Warn("jwks background refresh failed", zap.Error(err))
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    cfg.Timeout(),
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	v := NewVerifierWithKeyfunc(jwks.Keyfunc, cfg.Issuer(), cfg.ClientID)
	v.jwks = jwks
	return v, nil
}

func NewVerifierWithKeyfunc(kf jwt.Keyfunc, issuer, clientID string) *Verifier {
	return &Verifier{keyfunc: kf, issuer: issuer, clientID: clientID}
}

func (v *Verifier) ClientID() string { return v.clientID }

// Parse validates signature, expiry and issuer of a raw access token.
func (v *Verifier) Parse(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "PS256"}),
		jwt.WithLeeway(60 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, v.keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// Roles returns the roles the token carries for the configured client.
func (v *Verifier) Roles(c *Claims) []string { return c.ClientRoles(v.clientID) }

func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
