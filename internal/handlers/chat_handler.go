package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleChat relays a patient question to the assistant. Upstream failures
// still answer 200 with a fallback reply.
func (h *Handler) HandleChat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, `Invalid request format, expecting {"message": "..."}`)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": h.Chat.Reply(c.Request.Context(), req.Message)})
}
