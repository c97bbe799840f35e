package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/core/pagination"
	"storefront-api/internal/domain"
	"storefront-api/internal/service"
	"storefront-api/internal/transport/http/ez"
)

type PartnerHandler struct{ svc *service.PartnerService }

func NewPartnerHandler(svc *service.PartnerService) *PartnerHandler {
	return &PartnerHandler{svc: svc}
}

// 依赖分类，放在分类之后
func (h *PartnerHandler) Priority() int { return 200 }

func (h *PartnerHandler) MountAPI(e ez.EZ) {
	g := e.Group("/partners")
	ez.RegisterAction(g, ez.Action[service.CreatePartnerInput, *domain.Partner]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.CreatePartnerInput) (*domain.Partner, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	// 全部接口只要求登录，不限角色
	ez.RegisterAction(g, ez.Action[service.PartnerListInput, *pagination.Result[domain.Partner]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.PartnerListInput) (*pagination.Result[domain.Partner], error) {
			return h.svc.FindAll(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.Partner]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Partner, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.FindOne(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(g, ez.Action[service.UpdatePartnerInput, *domain.Partner]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdatePartnerInput) (*domain.Partner, error) {
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
