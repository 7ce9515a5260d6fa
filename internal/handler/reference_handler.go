package handler

import (
	"net/http"

	"sistramite/internal/middleware"
	"sistramite/internal/service"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReferenceHandler struct {
	referenceService service.ReferenceService
}

func NewReferenceHandler(referenceService service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// RegisterRoutes binds the catalog endpoints to the gin Engine or RouterGroup
func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	refs := router.Group("/references", middleware.RequireUser())
	{
		refs.GET("/regions", h.list(func(c *gin.Context) (interface{}, error) {
			return h.referenceService.Regions(c.Request.Context())
		}))
		refs.GET("/statuses", h.list(func(c *gin.Context) (interface{}, error) {
			return h.referenceService.Statuses(c.Request.Context())
		}))
		refs.GET("/demand-types", h.list(func(c *gin.Context) (interface{}, error) {
			return h.referenceService.DemandTypes(c.Request.Context())
		}))
		refs.GET("/demands", h.list(func(c *gin.Context) (interface{}, error) {
			return h.referenceService.Demands(c.Request.Context())
		}))
		refs.GET("/departments", h.list(func(c *gin.Context) (interface{}, error) {
			return h.referenceService.Departments(c.Request.Context())
		}))
		refs.GET("/directorates", h.list(func(c *gin.Context) (interface{}, error) {
			return h.referenceService.Directorates(c.Request.Context())
		}))
	}
}

func (h *ReferenceHandler) list(load func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := load(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
	}
}
