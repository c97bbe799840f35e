package ez

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-api/internal/service"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{service.ErrUserExists, 400, "user already exists"},
		{fmt.Errorf("wrapped: %w", service.ErrAccountLocked), 400, service.ErrAccountLocked.Error()},
		{service.ErrInvalidCategory, 400, "category does not exist"},
		{fmt.Errorf("%w: unknown field \"x\"", service.ErrInvalidSort), 400, "invalid orderBy"},
		{service.ErrProductNotFound, 404, "product not found"},
		{fmt.Errorf("%w: connection refused", service.ErrIdentityProvider), 500, "identity provider unavailable"},
		{errors.New("pq: relation users does not exist"), 500, "internal error"},
		{Forbidden("nope"), 403, "nope"},
	}
	for _, tc := range cases {
		ae := Translate(tc.err)
		assert.Equal(t, tc.code, ae.Code, tc.err.Error())
		assert.Equal(t, tc.msg, ae.Msg, tc.err.Error())
	}
}
