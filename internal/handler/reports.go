package handler

import (
	"net/http"

	"voicenote-service/internal/analytics"
	"voicenote-service/internal/export"
	"voicenote-service/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type reportRequest struct {
	Period string `json:"period" binding:"required"`
}

// GetAnalytics returns the dashboard aggregates
func (h *Handler) GetAnalytics(c *gin.Context) {
	dashboard := analytics.Summarize(h.notes.List(), h.clock.Now(), h.location, h.locale)
	c.JSON(http.StatusOK, dashboard)
}

// GenerateReport selects a period and generates its report
func (h *Handler) GenerateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.reports.SelectPeriod(period)
	report, err := h.reports.Generate(c.Request.Context(), period)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCurrentReport returns the held report
func (h *Handler) GetCurrentReport(c *gin.Context) {
	report, ok := h.reports.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report generated", "period": h.reports.Period()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DiscardReport drops the held report
func (h *Handler) DiscardReport(c *gin.Context) {
	h.reports.Discard()
	c.Status(http.StatusNoContent)
}

// ExportReport downloads the held report as a .doc document
func (h *Handler) ExportReport(c *gin.Context) {
	report, ok := h.reports.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report generated"})
		return
	}

	filename := h.exporter.ReportFilename(report.Period, h.clock.Now())
	c.Header("Content-Type", export.DocContentType)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := h.exporter.WriteReport(c.Writer, report); err != nil {
		h.logger.Error("Failed to export report", zap.Error(err))
	}
}
