package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront-api/internal/core/server"
	"storefront-api/internal/service"
	"storefront-api/internal/transport/http/ez"
	"storefront-api/internal/transport/http/handler"
	mdw "storefront-api/internal/transport/http/middleware"
	"storefront-api/internal/transport/http/validate"
)

type Deps struct {
	Users      *service.UserService
	Categories *service.CategoryService
	Products   *service.ProductService
	Partners   *service.PartnerService
	Verifier   mdw.TokenVerifier
	Mode       string
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	validate.Register()

	r := server.NewEngine(d.Mode)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300, 2*time.Second),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(15*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.Authenticate(d.Verifier, l),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := ez.New(r.Group("/api/v1"), l)
	Mount(api,
		handler.NewUserHandler(d.Users),
		handler.NewCategoryHandler(d.Categories),
		handler.NewProductHandler(d.Products),
		handler.NewPartnerHandler(d.Partners),
	)
	return r
}
