package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
	"storefront-api/internal/service"
	"storefront-api/internal/transport/http/ez"
)

type ProductHandler struct{ svc *service.ProductService }

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) MountAPI(e ez.EZ) {
	g := e.Group("/products")
	// 写操作只要求登录，不限角色
	ez.RegisterAction(g, ez.Action[service.CreateProductInput, *domain.Product]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.CreateProductInput) (*domain.Product, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[service.ListInput, *pagination.Result[domain.Product]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *service.ListInput) (*pagination.Result[domain.Product], error) {
			return h.svc.FindAll(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.FindOne(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(g, ez.Action[service.UpdateProductInput, *domain.Product]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdateProductInput) (*domain.Product, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), id, *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (idOut, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: id}, h.svc.Remove(c.Request.Context(), id)
		},
	})
}
