package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
	"storefront-api/internal/service"
	"storefront-api/internal/transport/http/ez"
)

type CategoryHandler struct{ svc *service.CategoryService }

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) MountAPI(e ez.EZ) {
	g := e.Group("/categories")
	admin := []string{string(domain.RoleSysAdmin)}

	ez.RegisterAction(g, ez.Action[service.CreateCategoryInput, *domain.Category]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *service.CreateCategoryInput) (*domain.Category, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[service.ListInput, *pagination.Result[domain.Category]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *service.ListInput) (*pagination.Result[domain.Category], error) {
			return h.svc.FindAll(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.Category]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Category, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.FindOne(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(g, ez.Action[service.UpdateCategoryInput, *domain.Category]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Roles:  admin,
		Handler: func(c *gin.Context, in *service.UpdateCategoryInput) (*domain.Category, error) {
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
