package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-api/internal/core/config"
)

const testIssuer = "http://idp.local/realms/shop"

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func keycloakClaims(issuer string, exp time.Time) *Claims {
	return &Claims{
		Email: "ana@example.com",
		ResourceAccess: map[string]resourceAccess{
			"storefront": {Roles: []string{"partner"}},
			"account":    {Roles: []string{"view-profile"}},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "kc-1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func givenVerifier(t *testing.T, key *rsa.PrivateKey) *Verifier {
	given := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		"k1": keyfunc.NewGivenCustom(&key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: "RS256"}),
	})
	return NewVerifierWithKeyfunc(given.Keyfunc, testIssuer, "storefront")
}

func TestVerifier_ParsesKeycloakToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := givenVerifier(t, key)

	c, err := v.Parse(signToken(t, key, "k1", keycloakClaims(testIssuer, time.Now().Add(time.Hour))))
	require.NoError(t, err)
	assert.Equal(t, "kc-1", c.Subject)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.Equal(t, []string{"partner"}, v.Roles(c))
	assert.Empty(t, c.ClientRoles("other"))
}

func TestVerifier_Rejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := givenVerifier(t, key)

	cases := map[string]string{
		"expired":      signToken(t, key, "k1", keycloakClaims(testIssuer, time.Now().Add(-time.Hour))),
		"wrong issuer": signToken(t, key, "k1", keycloakClaims("http://evil/realms/shop", time.Now().Add(time.Hour))),
		"wrong key":    signToken(t, other, "k1", keycloakClaims(testIssuer, time.Now().Add(time.Hour))),
		"unknown kid":  signToken(t, key, "k2", keycloakClaims(testIssuer, time.Now().Add(time.Hour))),
		"garbage":      "abc.def.ghi",
		"empty":        "  ",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, keycloakClaims(testIssuer, time.Now().Add(time.Hour))).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Parse(hs)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewVerifier_FetchesJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwk := map[string]any{"keys": []map[string]string{{
		"kty": "RSA",
		"kid": "k1",
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
	}}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/realms/shop/protocol/openid-connect/certs"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwk)
	}))
	defer srv.Close()

	cfg := config.Keycloak{URL: srv.URL, Realm: "shop", ClientID: "storefront"}
	v, err := NewVerifier(cfg, zap.NewNop())
	require.NoError(t, err)
	defer v.Close()

	c, err := v.Parse(signToken(t, key, "k1", keycloakClaims(cfg.Issuer(), time.Now().Add(time.Hour))))
	require.NoError(t, err)
	assert.Equal(t, []string{"partner"}, v.Roles(c))
}
