package handler

import (
	"errors"
	"net/http"
	"strconv"

	"voicenote-service/internal/export"
	"voicenote-service/internal/models"
	"voicenote-service/internal/recorder"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListNotes returns every note, filtered by ?q= when present
func (h *Handler) ListNotes(c *gin.Context) {
	notes := h.notes.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"notes": notes,
		"total": len(notes),
	})
}

// GetNote returns a single note
func (h *Handler) GetNote(c *gin.Context) {
	note, err := h.notes.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, note)
}

// UpdateNote edits the enhanced text of a note
func (h *Handler) UpdateNote(c *gin.Context) {
	var patch models.NotePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.notes.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, note)
}

// DeleteNote removes a note. The client must confirm with ?confirm=true.
func (h *Handler) DeleteNote(c *gin.Context) {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "confirmation required: add ?confirm=true",
			"message": models.Message(h.locale, models.MsgDeleteConfirmation),
		})
		return
	}

	if err := h.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportNote downloads a note as a .doc document
func (h *Handler) ExportNote(c *gin.Context) {
	note, err := h.notes.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	c.Header("Content-Type", export.DocContentType)
	c.Header("Content-Disposition", "attachment; filename="+export.NoteFilename(note))
	if err := h.exporter.WriteNote(c.Writer, note, h.clock.Now()); err != nil {
		h.logger.Error("Failed to export note", zap.String("id", note.ID), zap.Error(err))
	}
}

// ExportJSON exports every note to JSON
func (h *Handler) ExportJSON(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", "attachment; filename="+export.JSONFilename)
	if err := export.WriteJSON(c.Writer, h.notes.List()); err != nil {
		h.logger.Error("Failed to export JSON", zap.Error(err))
	}
}

// TranscribeUpload runs a whole recording from an uploaded audio file
func (h *Handler) TranscribeUpload(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"audio\" is required"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = recorder.MIMETypeFor(fh.Filename)
	}

	ctx := c.Request.Context()
	src := &recorder.ReaderSource{Reader: file, MIME: mimeType, ChunkSize: h.chunkSize}
	st, err := h.recorder.Start(ctx, src)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	// Start is a no-op while another recording is active
	if !src.Opened() {
		c.JSON(http.StatusConflict, gin.H{"error": "a recording is already in progress", "recording": st})
		return
	}
	if err := h.recorder.WaitCaptured(ctx); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
		if cerr := h.recorder.Cancel(); cerr != nil {
			h.logger.Warn("Failed to cancel upload recording", zap.Error(cerr))
		}
		h.writeError(c, err, nil)
		return
	}

	h.finishRecording(c)
}
