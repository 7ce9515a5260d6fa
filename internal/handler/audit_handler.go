package handler

import (
	"net/http"

	"sistramite/internal/middleware"
	"sistramite/internal/service"
	"sistramite/pkg/pagination"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit", middleware.RequireUser(), middleware.RequireAdmin(), h.List)
}

// List returns the administrative action trail, newest first
// @Summary      Audit trail
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=[]model.AuditLog}
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
