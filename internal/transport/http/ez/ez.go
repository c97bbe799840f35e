// Package ez registers typed actions on gin route groups: auth and role
// checks, binding, validation and the {code,msg,data} envelope in one place.
package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "storefront-api/internal/transport/http/response"
	"storefront-api/internal/transport/http/validate"
)

// 上下文 key，由鉴权中间件写入
const (
	CtxUserID = "userId"
	CtxEmail  = "email"
	CtxRoles  = "roles"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// Group returns an EZ on a sub-path sharing the logger.
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method     string // GET | POST | PUT | PATCH | DELETE
	Path       string
	Binder     Binder
	Auth       bool     // 是否要求登录（检查 userId）
	Roles      []string // 任一角色即可
	Middleware []gin.HandlerFunc
	Handler    func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth || len(a.Roles) > 0 {
			if c.GetString(CtxUserID) == "" {
				resp.JSON(c, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !HasAnyRole(c, a.Roles...) {
				resp.JSON(c, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			e.fail(c, bindError(bindErr))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	handlers := append(append([]gin.HandlerFunc{}, a.Middleware...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodPatch:
		e.g.PATCH(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// 统一错误映射；500 只记日志，不把细节返回给客户端
func (e EZ) fail(c *gin.Context, err error) {
	ae := Translate(err)
	if ae.Code >= resp.CodeServerError && e.log != nil {
		e.log.Error("request failed",
			zap.String("rid", c.GetString("X-Request-ID")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("msg", ae.Msg),
			zap.Error(err),
		)
	}
	resp.JSON(c, resp.ErrorWithData(ae.Code, ae.Msg, ae.Data))
}

func bindError(err error) error {
	if msgs, ok := validate.Messages(err); ok {
		return Validation(msgs)
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return BadRequest("request body too large")
	}
	return BadRequest("malformed request: " + err.Error())
}

func HasAnyRole(c *gin.Context, want ...string) bool {
	v, _ := c.Get(CtxRoles)
	have, _ := v.([]string)
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, BadRequest("invalid " + name)
	}
	return uint(id), nil
}
