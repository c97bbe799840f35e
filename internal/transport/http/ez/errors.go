package ez

import (
	"errors"

	"storefront-api/internal/service"
	resp "storefront-api/internal/transport/http/response"
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Data any
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Validation carries per-field messages in data.errors.
func Validation(msgs []string) error {
	return &AErr{Code: resp.CodeBadRequest, Msg: "validation failed", Data: map[string][]string{"errors": msgs}}
}

var (
	conflicts = []error{
		service.ErrUserExists,
		service.ErrInvalidCredentials,
		service.ErrInvalidVerificationCode,
		service.ErrAccountLocked,
		service.ErrParentNotFound,
		service.ErrInvalidCategory,
	}
	notFound = []error{
		service.ErrUserNotFound,
		service.ErrCategoryNotFound,
		service.ErrProductNotFound,
		service.ErrPartnerNotFound,
	}
)

// Translate maps any handler error onto the public error taxonomy. Unknown
// errors become a generic 500.
func Translate(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return &AErr{Code: resp.CodeBadRequest, Msg: target.Error(), Err: err}
		}
	}
	if errors.Is(err, service.ErrInvalidSort) {
		return &AErr{Code: resp.CodeBadRequest, Msg: service.ErrInvalidSort.Error(), Err: err}
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return &AErr{Code: resp.CodeNotFound, Msg: target.Error(), Err: err}
		}
	}
	if errors.Is(err, service.ErrIdentityProvider) {
		return &AErr{Code: resp.CodeServerError, Msg: "identity provider unavailable", Err: err}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
}
