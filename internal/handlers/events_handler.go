package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamEvents is the push channel. Every viewer gets every event and decides
// for itself whether it is relevant. A "ready" event is sent as soon as the
// subscription exists, so anything published afterwards reaches this viewer.
func (h *Handler) StreamEvents(c *gin.Context) {
	events, cancel := h.Events.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"subscribers": h.Events.Subscribers()})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Kind, ev.Payload)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("ping", t.Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"subscribers": h.Events.Subscribers(),
	})
}
