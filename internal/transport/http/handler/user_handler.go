package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/core/keycloak"
	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
	"storefront-api/internal/service"
	"storefront-api/internal/transport/http/ez"
	mdw "storefront-api/internal/transport/http/middleware"
)

type UserHandler struct {
	svc *service.UserService
	// 登录、找回、重置共用的每 IP 限速
	throttle gin.HandlerFunc
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc, throttle: mdw.RateLimitPerIP(1, 5, 10*time.Minute)}
}

// 用户模块先挂
func (h *UserHandler) Priority() int { return 10 }

type idOut struct {
	ID uint `json:"id"`
}

type sentOut struct {
	Sent bool `json:"sent"`
}

func (h *UserHandler) MountAPI(e ez.EZ) {
	g := e.Group("/users")
	admin := []string{string(domain.RoleSysAdmin)}

	// 公开注册
	ez.RegisterAction(g, ez.Action[service.CreateUserInput, *keycloak.TokenResponse]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.CreateUserInput) (*keycloak.TokenResponse, error) {
			return h.svc.Create(c.Request.Context(), *in, domain.RoleUser)
		},
	})

	ez.RegisterAction(g, ez.Action[service.CreateUserInput, *keycloak.TokenResponse]{
		Method: http.MethodPost,
		Path:   "/partner",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *service.CreateUserInput) (*keycloak.TokenResponse, error) {
			return h.svc.Create(c.Request.Context(), *in, domain.RolePartner)
		},
	})

	ez.RegisterAction(g, ez.Action[service.AuthInput, *keycloak.TokenResponse]{
		Method:     http.MethodPost,
		Path:       "/auth",
		Binder:     ez.BindJSON,
		Middleware: []gin.HandlerFunc{h.throttle},
		Handler: func(c *gin.Context, in *service.AuthInput) (*keycloak.TokenResponse, error) {
			return h.svc.Auth(c.Request.Context(), *in)
		},
	})

	// 邮箱取自调用方的 bearer token，外部 id 取自已校验的 sub
	ez.RegisterAction(g, ez.Action[service.VerifyEmailInput, sentOut]{
		Method: http.MethodPost,
		Path:   "/verify",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.VerifyEmailInput) (sentOut, error) {
			email, err := keycloak.EmailFromBearerToken(c.GetHeader("Authorization"))
			if err != nil {
				return sentOut{}, ez.Unauthorized(err.Error())
			}
			if err := h.svc.VerifyEmail(c.Request.Context(), c.GetString(ez.CtxUserID), email, in.VerificationCode); err != nil {
				return sentOut{}, err
			}
			return sentOut{Sent: true}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[service.EmailInput, sentOut]{
		Method:     http.MethodPost,
		Path:       "/resend-verification",
		Binder:     ez.BindJSON,
		Middleware: []gin.HandlerFunc{h.throttle},
		Handler: func(c *gin.Context, in *service.EmailInput) (sentOut, error) {
			if err := h.svc.ResendVerificationEmail(c.Request.Context(), in.Email); err != nil {
				return sentOut{}, err
			}
			return sentOut{Sent: true}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[service.EmailInput, sentOut]{
		Method:     http.MethodPost,
		Path:       "/forgot-password",
		Binder:     ez.BindJSON,
		Middleware: []gin.HandlerFunc{h.throttle},
		Handler: func(c *gin.Context, in *service.EmailInput) (sentOut, error) {
			if err := h.svc.ForgotPassword(c.Request.Context(), in.Email); err != nil {
				return sentOut{}, err
			}
			return sentOut{Sent: true}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[service.ResetPasswordInput, sentOut]{
		Method:     http.MethodPost,
		Path:       "/reset-password",
		Binder:     ez.BindJSON,
		Middleware: []gin.HandlerFunc{h.throttle},
		Handler: func(c *gin.Context, in *service.ResetPasswordInput) (sentOut, error) {
			if err := h.svc.ResetPassword(c.Request.Context(), *in); err != nil {
				return sentOut{}, err
			}
			return sentOut{Sent: true}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[service.UserListInput, *pagination.Result[domain.User]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Roles:  admin,
		Handler: func(c *gin.Context, in *service.UserListInput) (*pagination.Result[domain.User], error) {
			return h.svc.FindAll(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *service.UserProfile]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.UserProfile, error) {
			return h.svc.CurrentUser(c.Request.Context(), c.GetString(ez.CtxUserID))
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.FindOne(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(g, ez.Action[service.UpdateUserInput, *domain.User]{
		Method: http.MethodPut,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdateUserInput) (*domain.User, error) {
			return h.svc.Update(c.Request.Context(), c.GetString(ez.CtxUserID), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Roles:  admin,
		Handler: func(c *gin.Context, _ *struct{}) (idOut, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: id}, h.svc.Remove(c.Request.Context(), id)
		},
	})
}
