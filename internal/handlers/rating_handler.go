package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SubmitRating(c *gin.Context) {
	var req struct {
		Stars     flexInt `json:"stars" binding:"required"`
		PatientID flexInt `json:"patientId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "stars is required")
		return
	}

	avg, err := h.Ratings.Submit(c.Request.Context(), int64(req.PatientID), int(req.Stars))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "average": avg})
}

func (h *Handler) GetRatings(c *gin.Context) {
	avg, err := h.Ratings.Average(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average": avg})
}
