package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

// Login signs a user in locally and returns a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, token, err := h.sessions.Login(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"session": session,
	})
}

// GetSession returns the signed-in identity
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.sessions.Current()
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout signs out and revokes the presented token
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), claimsFrom(c)); err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}
