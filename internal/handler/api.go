package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/export"
	"voicenote-service/internal/models"
	"voicenote-service/internal/recorder"
	"voicenote-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the services the API is built on
type Deps struct {
	Notes     *service.NoteService
	Reports   *service.ReportService
	Sessions  *service.SessionService
	Recorder  *recorder.Recorder
	Exporter  export.Exporter
	Clock     clock.Clock
	Location  *time.Location
	Locale    models.Locale
	ChunkSize int
	ModelInfo func() map[string]interface{}
}

// Handler handles HTTP requests
type Handler struct {
	notes     *service.NoteService
	reports   *service.ReportService
	sessions  *service.SessionService
	recorder  *recorder.Recorder
	exporter  export.Exporter
	clock     clock.Clock
	location  *time.Location
	locale    models.Locale
	chunkSize int
	modelInfo func() map[string]interface{}
	logger    *zap.Logger

	pushMu sync.Mutex
	push   *recorder.PushSource
}

// NewHandler creates a new API handler
func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Handler{
		notes:     deps.Notes,
		reports:   deps.Reports,
		sessions:  deps.Sessions,
		recorder:  deps.Recorder,
		exporter:  deps.Exporter,
		clock:     deps.Clock,
		location:  deps.Location,
		locale:    deps.Locale,
		chunkSize: deps.ChunkSize,
		modelInfo: deps.ModelInfo,
		logger:    logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)

		// Notes
		api.GET("/notes", h.ListNotes)
		api.GET("/notes/:id", h.GetNote)
		api.PATCH("/notes/:id", h.UpdateNote)
		api.DELETE("/notes/:id", h.DeleteNote)
		api.GET("/notes/:id/export", h.ExportNote)
		api.POST("/notes/transcribe", h.TranscribeUpload)

		// Recording
		api.GET("/recording", h.RecordingStatus)
		api.POST("/recording/start", h.StartRecording)
		api.POST("/recording/chunks", h.PushChunk)
		api.POST("/recording/stop", h.StopRecording)
		api.POST("/recording/cancel", h.CancelRecording)

		// Analytics and reports
		api.GET("/analytics", h.GetAnalytics)
		api.POST("/reports", h.GenerateReport)
		api.GET("/reports/current", h.GetCurrentReport)
		api.DELETE("/reports/current", h.DiscardReport)
		api.GET("/reports/current/export", h.ExportReport)

		// Export
		api.GET("/export/json", h.ExportJSON)

		// Session
		api.POST("/session/login", h.Login)
		auth := api.Group("/session", AuthMiddleware(h.sessions, h.logger))
		{
			auth.GET("", h.GetSession)
			auth.POST("/logout", h.Logout)
		}
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrTranscription), errors.Is(err, models.ErrReportGeneration):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, recorder.ErrNotRecording), errors.Is(err, recorder.ErrSourceClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError responds with the mapped status, the error and, for user-facing
// errors, the localized message
func (h *Handler) writeError(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}

	body := gin.H{"error": err.Error()}
	var ue models.UserError
	if errors.As(err, &ue) {
		body["message"] = ue.UserMessage()
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "voicenote-service",
		"version": "1.0.0",
	}
	if h.modelInfo != nil {
		body["model"] = h.modelInfo()
	}
	c.JSON(http.StatusOK, body)
}
