package handler

import (
	"net/http"

	"sistramite/internal/middleware"
	"sistramite/internal/service"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard/processes", middleware.RequireUser(), h.ProcessCounts)
}

// ProcessCounts returns the fixed dashboard counters
// @Summary      Process dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.ProcessDashboard}
// @Router       /dashboard/processes [get]
func (h *DashboardHandler) ProcessCounts(c *gin.Context) {
	counts, err := h.dashboardService.ProcessCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, counts))
}
