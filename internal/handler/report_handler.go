package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/middleware"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/service"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/response"
)

type lowLectureReport interface {
	Load(ctx context.Context) models.ActionResult
	Rows() []models.LowLectureMember
	Debug() map[string]interface{}
	RemoveFromReport(ctx context.Context, memberID string) models.ActionResult
}

type reportExporter interface {
	Render(rows []models.LowLectureMember, format string) (*service.ExportFile, error)
}

// ReportHandler exposes the weekly low-lecture report.
type ReportHandler struct {
	report   lowLectureReport
	exporter reportExporter
}

// NewReportHandler constructs the handler.
func NewReportHandler(report lowLectureReport, exporter reportExporter) *ReportHandler {
	return &ReportHandler{report: report, exporter: exporter}
}

// List godoc
// @Summary Low-lecture report
// @Description refresh=true reloads the report; debug=true adds the server diagnostics to meta.
// @Tags Reports
// @Produce json
// @Param refresh query bool false "Reload from the server"
// @Param debug query bool false "Include server diagnostics"
// @Success 200 {object} response.Envelope
// @Router /reports/low-lecture [get]
func (h *ReportHandler) List(c *gin.Context) {
	if wantsRefresh(c) {
		if result := h.report.Load(c.Request.Context()); !result.Success {
			response.Failure(c, failureBody(result))
			return
		}
	}
	if c.Query("debug") == "true" {
		middleware.SetMeta(c, "debug", h.report.Debug())
	}
	response.JSON(c, http.StatusOK, h.report.Rows(), middleware.ExtractMeta(c))
}

// Remove godoc
// @Summary Remove a member from this week's report
// @Tags Reports
// @Produce json
// @Param memberId path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /reports/low-lecture/{memberId} [delete]
func (h *ReportHandler) Remove(c *gin.Context) {
	writeResult(c, h.report.RemoveFromReport(c.Request.Context(), c.Param("memberId")))
}

// Export godoc
// @Summary Export the low-lecture report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param refresh query bool false "Reload from the server first"
// @Success 200 {file} file
// @Router /reports/low-lecture/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	if wantsRefresh(c) {
		if result := h.report.Load(c.Request.Context()); !result.Success {
			response.Failure(c, failureBody(result))
			return
		}
	}
	file, err := h.exporter.Render(h.report.Rows(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
