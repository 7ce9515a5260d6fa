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
)

type ReportHandler struct {
	reportService service.ReportService
	exportService service.ExportService
}

// NewReportHandler sets up the routing dependencies for report endpoints
func NewReportHandler(reportService service.ReportService, exportService service.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports", middleware.RequireUser())
	{
		reports.GET("", h.Run)
		reports.GET("/export/csv", h.ExportCSV)
		reports.GET("/export/xlsx", h.ExportXLSX)
		reports.GET("/export/pdf", h.ExportPDF)
		reports.GET("/export/docx", h.ExportDOCX)
	}
}

func reportRequest(c *gin.Context) service.ReportRequest {
	return service.ReportRequest{
		Status:      c.Query("status"),
		StatusMode:  c.Query("status_mode"),
		Region:      c.Query("region"),
		Directorate: c.Query("directorate"),
		Department:  c.Query("department"),
		Demand:      c.Query("demand"),
		Start:       c.Query("start"),
		End:         c.Query("end"),
	}
}

func (h *ReportHandler) run(c *gin.Context) (*service.ReportResult, bool) {
	result, err := h.reportService.Run(c.Request.Context(), reportRequest(c))
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return nil, false
	}
	return result, true
}

// runForTabularExport additionally rejects empty result sets: a header-only
// spreadsheet helps nobody. The DOCX narrative is exempt, it renders an
// explicit "no records" section instead.
func (h *ReportHandler) runForTabularExport(c *gin.Context) (*service.ReportResult, bool) {
	result, ok := h.run(c)
	if !ok {
		return nil, false
	}
	if len(result.Rows) == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Nothing to export: no movement matches the applied filters"))
		return nil, false
	}
	return result, true
}

func exportFilename(ext string) string {
	return fmt.Sprintf("relatorio_tramitacao_%s.%s", time.Now().Format("20060102_150405"), ext)
}

func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// Run executes the advanced report
// @Summary      Advanced report
// @Description  Multi-filter report over the movement ledger. Malformed date filters are skipped with a warning.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        status       query  string  false  "Status"
// @Param        status_mode  query  string  false  "historical (default) or current"
// @Param        region       query  string  false  "Origin region"
// @Param        directorate  query  string  false  "Directorate display name (DC, DO, DP, DS)"
// @Param        department   query  string  false  "Department name"
// @Param        demand       query  string  false  "Demand description"
// @Param        start        query  string  false  "Movement date lower bound (YYYY-MM-DD)"
// @Param        end          query  string  false  "Movement date upper bound (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.ReportResult}
// @Failure      400  {object}  response.Response
// @Router       /reports [get]
func (h *ReportHandler) Run(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithWarnings(http.StatusOK, result, result.Warnings))
}

// ExportCSV downloads the report as semicolon-separated CSV
// @Summary      Report CSV export
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200 {file} file
// @Router       /reports/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	result, ok := h.runForTabularExport(c)
	if !ok {
		return
	}
	data, err := h.exportService.ReportCSV(result.Rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	sendFile(c, "text/csv; charset=utf-8", exportFilename("csv"), data)
}

// ExportXLSX downloads the report as a spreadsheet
// @Summary      Report XLSX export
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} file
// @Router       /reports/export/xlsx [get]
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	result, ok := h.runForTabularExport(c)
	if !ok {
		return
	}
	data, err := h.exportService.ReportXLSX(result.Rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	sendFile(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", exportFilename("xlsx"), data)
}

// ExportPDF downloads the report as a landscape PDF table
// @Summary      Report PDF export
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200 {file} file
// @Router       /reports/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	result, ok := h.runForTabularExport(c)
	if !ok {
		return
	}
	data, err := h.exportService.ReportPDF(result.Rows, result.Summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	sendFile(c, "application/pdf", exportFilename("pdf"), data)
}

// ExportDOCX downloads the report as a narrative document
// @Summary      Report DOCX export
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security     BearerAuth
// @Success      200 {file} file
// @Router       /reports/export/docx [get]
func (h *ReportHandler) ExportDOCX(c *gin.Context) {
	result, ok := h.run(c)
	if !ok {
		return
	}
	data, err := h.exportService.ReportDOCX(result.Rows, result.Summary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	sendFile(c, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", exportFilename("docx"), data)
}
