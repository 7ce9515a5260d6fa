package handler

import (
	"net/http"
	"strconv"

	"sistramite/internal/middleware"
	"sistramite/internal/service"
	"sistramite/pkg/apperr"
	"sistramite/pkg/pagination"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProtocolHandler struct {
	protocolService service.ProtocolService
}

func NewProtocolHandler(protocolService service.ProtocolService) *ProtocolHandler {
	return &ProtocolHandler{protocolService: protocolService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProtocolHandler) RegisterRoutes(router *gin.RouterGroup) {
	protocols := router.Group("/protocols", middleware.RequireUser())
	{
		protocols.POST("", h.Create)
		protocols.GET("", h.List)
		protocols.GET("/search", h.GetByProtocolNumber)
		protocols.GET("/:id", h.Get)
		protocols.POST("/:id/interactions", h.AddInteraction)
	}
}

// Create registers a citizen-service attendance
// @Summary      Create attendance
// @Description  Inserts the attendance and assigns its sequential protocol number in the same transaction
// @Tags         protocols
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAttendanceRequest  true  "Attendance Payload"
// @Success      201      {object}  response.Response{data=model.ProtocolAttendance}
// @Failure      400      {object}  response.Response
// @Router       /protocols [post]
func (h *ProtocolHandler) Create(c *gin.Context) {
	var req service.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	principal, _ := middleware.CurrentPrincipal(c)
	attendance, err := h.protocolService.Create(c.Request.Context(), principal.ID, req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attendance))
}

// List returns attendances newest first
// @Summary      List attendances
// @Tags         protocols
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=[]model.ProtocolAttendance}
// @Router       /protocols [get]
func (h *ProtocolHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.protocolService.List(c.Request.Context(), params.Page, params.Limit)
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

// GetByProtocolNumber looks up an attendance by its protocol number
// @Summary      Search by protocol number
// @Tags         protocols
// @Produce      json
// @Security     BearerAuth
// @Param        number  query     string  true  "Protocol number, e.g. CR-0042/2026"
// @Success      200     {object}  response.Response{data=service.AttendanceDetail}
// @Failure      404     {object}  response.Response
// @Router       /protocols/search [get]
func (h *ProtocolHandler) GetByProtocolNumber(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing number query parameter"))
		return
	}

	detail, err := h.protocolService.GetByProtocolNumber(c.Request.Context(), number)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// Get returns one attendance with its interaction log
// @Summary      Attendance detail
// @Tags         protocols
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Attendance ID"
// @Success      200  {object}  response.Response{data=service.AttendanceDetail}
// @Failure      404  {object}  response.Response
// @Router       /protocols/{id} [get]
func (h *ProtocolHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid attendance id"))
		return
	}

	detail, err := h.protocolService.Get(c.Request.Context(), uint(id))
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// AddInteraction appends a response to the attendance's log
// @Summary      Add interaction
// @Tags         protocols
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Attendance ID"
// @Param        payload  body      service.AddInteractionRequest  true  "Interaction Payload"
// @Success      201      {object}  response.Response{data=model.Interaction}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /protocols/{id}/interactions [post]
func (h *ProtocolHandler) AddInteraction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid attendance id"))
		return
	}

	var req service.AddInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	principal, _ := middleware.CurrentPrincipal(c)
	interaction, err := h.protocolService.AddInteraction(c.Request.Context(), principal.ID, uint(id), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, interaction))
}
