package handler

import (
	"io"
	"net/http"

	"voicenote-service/internal/recorder"

	"github.com/gin-gonic/gin"
)

type startRecordingRequest struct {
	MimeType string `json:"mimeType"`
}

// RecordingStatus returns the recorder state
func (h *Handler) RecordingStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.recorder.Status())
}

// StartRecording opens a push recording that the client feeds through /recording/chunks
func (h *Handler) StartRecording(c *gin.Context) {
	var req startRecordingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.pushMu.Lock()
	defer h.pushMu.Unlock()

	src := recorder.NewPushSource(req.MimeType)
	st, err := h.recorder.Start(c.Request.Context(), src)
	if err != nil {
		h.writeError(c, err, gin.H{"recording": st})
		return
	}
	// Start is a no-op while another recording is active
	if src.Opened() {
		h.push = src
	}
	c.JSON(http.StatusOK, st)
}

// PushChunk appends the raw request body to the active recording
func (h *Handler) PushChunk(c *gin.Context) {
	chunk, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.pushMu.Lock()
	src := h.push
	h.pushMu.Unlock()
	if src == nil {
		h.writeError(c, recorder.ErrNotRecording, nil)
		return
	}

	if err := src.Push(c.Request.Context(), chunk); err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusAccepted, h.recorder.Status())
}

// StopRecording ends the active recording and returns the new note
func (h *Handler) StopRecording(c *gin.Context) {
	h.finishRecording(c)
}

// CancelRecording discards the active recording
func (h *Handler) CancelRecording(c *gin.Context) {
	if err := h.recorder.Cancel(); err != nil {
		h.writeError(c, err, nil)
		return
	}
	h.clearPush()
	c.JSON(http.StatusOK, h.recorder.Status())
}

func (h *Handler) clearPush() {
	h.pushMu.Lock()
	h.push = nil
	h.pushMu.Unlock()
}

func (h *Handler) finishRecording(c *gin.Context) {
	note, err := h.recorder.Stop(c.Request.Context())
	h.clearPush()
	if err != nil {
		extra := gin.H{"recording": h.recorder.Status()}
		if note != nil {
			extra["note"] = note
		}
		h.writeError(c, err, extra)
		return
	}
	c.JSON(http.StatusCreated, note)
}
