package handler

import (
	"fmt"
	"net/http"
	"time"

	"sistramite/internal/middleware"
	"sistramite/internal/service"
	"sistramite/pkg/apperr"
	"sistramite/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProcessHandler struct {
	processService service.ProcessService
	exportService  service.ExportService
}

// NewProcessHandler sets up the routing dependencies for process endpoints
func NewProcessHandler(processService service.ProcessService, exportService service.ExportService) *ProcessHandler {
	return &ProcessHandler{processService: processService, exportService: exportService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProcessHandler) RegisterRoutes(router *gin.RouterGroup) {
	processes := router.Group("/processes", middleware.RequireUser())
	{
		processes.POST("", h.CreateProcess)
		processes.GET("", h.Consult)
		processes.GET("/verify", h.VerifyNumber)
		processes.GET("/export/csv", h.ExportCSV)
		processes.GET("/export/xlsx", h.ExportXLSX)
		processes.GET("/export/pdf", h.ExportListPDF)
		processes.GET("/:id", h.GetDetail)
		processes.GET("/:id/pdf", h.ExportPDF)
		processes.POST("/:id/movements", h.RecordMovement)
	}
}

// CreateProcess registers a process with its intake entry
// @Summary      Register a process
// @Description  Creates the process, its intake entry and the first ledger movement atomically
// @Tags         processes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProcessRequest  true  "Process Payload"
// @Success      201      {object}  response.Response{data=model.Process}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /processes [post]
func (h *ProcessHandler) CreateProcess(c *gin.Context) {
	var req service.CreateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	principal, _ := middleware.CurrentPrincipal(c)
	process, err := h.processService.CreateProcess(c.Request.Context(), principal.ID, req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, process))
}

// Consult runs the unified listing with optional filters
// @Summary      Consult processes
// @Tags         processes
// @Produce      json
// @Security     BearerAuth
// @Param        number          query  string  false  "Substring of the process number"
// @Param        status          query  string  false  "Current status"
// @Param        region          query  string  false  "Origin region"
// @Param        directorate     query  string  false  "Destination directorate"
// @Param        demand_type_id  query  string  false  "Demand type id"
// @Param        demand_id       query  string  false  "Demand id"
// @Param        start           query  string  false  "Arrival date lower bound (YYYY-MM-DD)"
// @Param        end             query  string  false  "Arrival date upper bound (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=[]service.ProcessListItem}
// @Router       /processes [get]
func (h *ProcessHandler) Consult(c *gin.Context) {
	req := service.ConsultRequest{
		Number:       c.Query("number"),
		Status:       c.Query("status"),
		Region:       c.Query("region"),
		Directorate:  c.Query("directorate"),
		DemandTypeID: c.Query("demand_type_id"),
		DemandID:     c.Query("demand_id"),
		Start:        c.Query("start"),
		End:          c.Query("end"),
	}

	items, warnings, err := h.processService.Consult(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithWarnings(http.StatusOK, items, warnings))
}

// VerifyNumber probes whether a process number is already registered
// @Summary      Verify process number
// @Tags         processes
// @Produce      json
// @Security     BearerAuth
// @Param        number  query     string  true  "Process number"
// @Success      200     {object}  response.Response{data=model.Process}
// @Failure      404     {object}  response.Response
// @Router       /processes/verify [get]
func (h *ProcessHandler) VerifyNumber(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing number query parameter"))
		return
	}

	process, err := h.processService.Exists(c.Request.Context(), number)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, process))
}

// GetDetail returns the full dossier of one process
// @Summary      Process detail
// @Tags         processes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Process ID"
// @Success      200  {object}  response.Response{data=service.ProcessDetail}
// @Failure      404  {object}  response.Response
// @Router       /processes/{id} [get]
func (h *ProcessHandler) GetDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid process id"))
		return
	}

	detail, err := h.processService.GetDetail(c.Request.Context(), id)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// RecordMovement appends a status change to the process's ledger
// @Summary      Record a movement
// @Description  Appends one ledger row and updates the mirrored current status in the same transaction
// @Tags         processes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Process ID"
// @Param        payload  body      service.RecordMovementRequest  true  "Movement Payload"
// @Success      201      {object}  response.Response{data=model.Movement}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /processes/{id}/movements [post]
func (h *ProcessHandler) RecordMovement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid process id"))
		return
	}

	var req service.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	if req.UserID == "" {
		if principal, ok := middleware.CurrentPrincipal(c); ok {
			req.UserID = principal.ID.String()
		}
	}

	movement, err := h.processService.RecordMovement(c.Request.Context(), id, req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, movement))
}

// consultForExport reruns the consultation and rejects empty result sets,
// so downloads never produce a header-only file.
func (h *ProcessHandler) consultForExport(c *gin.Context) ([]service.ProcessListItem, bool) {
	req := service.ConsultRequest{
		Number:       c.Query("number"),
		Status:       c.Query("status"),
		Region:       c.Query("region"),
		Directorate:  c.Query("directorate"),
		DemandTypeID: c.Query("demand_type_id"),
		DemandID:     c.Query("demand_id"),
		Start:        c.Query("start"),
		End:          c.Query("end"),
	}
	items, _, err := h.processService.Consult(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return nil, false
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Nothing to export: no process matches the applied filters"))
		return nil, false
	}
	return items, true
}

func (h *ProcessHandler) sendExport(c *gin.Context, contentType, ext string, data []byte) {
	filename := fmt.Sprintf("processos_%s.%s", time.Now().Format("20060102_150405"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ExportCSV downloads the consultation as semicolon-separated CSV
// @Summary      Consultation CSV export
// @Tags         processes
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200 {file} file
// @Failure      400 {object} response.Response
// @Router       /processes/export/csv [get]
func (h *ProcessHandler) ExportCSV(c *gin.Context) {
	items, ok := h.consultForExport(c)
	if !ok {
		return
	}
	data, err := h.exportService.ProcessesCSV(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	h.sendExport(c, "text/csv; charset=utf-8", "csv", data)
}

// ExportXLSX downloads the consultation as a spreadsheet
// @Summary      Consultation XLSX export
// @Tags         processes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} file
// @Failure      400 {object} response.Response
// @Router       /processes/export/xlsx [get]
func (h *ProcessHandler) ExportXLSX(c *gin.Context) {
	items, ok := h.consultForExport(c)
	if !ok {
		return
	}
	data, err := h.exportService.ProcessesXLSX(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	h.sendExport(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", data)
}

// ExportListPDF downloads the consultation as a landscape PDF table
// @Summary      Consultation PDF export
// @Tags         processes
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200 {file} file
// @Failure      400 {object} response.Response
// @Router       /processes/export/pdf [get]
func (h *ProcessHandler) ExportListPDF(c *gin.Context) {
	items, ok := h.consultForExport(c)
	if !ok {
		return
	}
	data, err := h.exportService.ProcessesPDF(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	h.sendExport(c, "application/pdf", "pdf", data)
}

// ExportPDF downloads the process dossier as PDF
// @Summary      Process dossier PDF
// @Tags         processes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "Process ID"
// @Success      200 {file} file
// @Failure      404 {object} response.Response
// @Router       /processes/{id}/pdf [get]
func (h *ProcessHandler) ExportPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid process id"))
		return
	}

	detail, err := h.processService.GetDetail(c.Request.Context(), id)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	data, err := h.exportService.ProcessPDF(detail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	filename := fmt.Sprintf("processo_%s.pdf", detail.Process.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
