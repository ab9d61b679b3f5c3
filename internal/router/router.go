package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/dentaflow-api/internal/handlers"
	"github.com/harentsoaR/dentaflow-api/internal/metrics"
	"github.com/harentsoaR/dentaflow-api/internal/middleware"
	"github.com/harentsoaR/dentaflow-api/internal/utils"
)

type Options struct {
	Log            zerolog.Logger
	Metrics        *metrics.Metrics
	Tokens         *utils.TokenIssuer
	AllowedOrigins []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		ExposeHeaders: []string{middleware.HeaderXRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// New wires middleware and routes onto a fresh engine.
func New(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(opts.Log),
		middleware.Recovery(opts.Log),
		cors.New(corsConfig(opts.AllowedOrigins)),
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", opts.Metrics.Handler())
	}

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.Auth(opts.Tokens))
	{
		api.POST("/signup", h.Signup)
		api.POST("/login", h.Login)

		api.GET("/appointments", h.GetAppointments)
		api.POST("/appointments", h.CreateAppointment)
		api.PATCH("/appointments/:id", h.UpdateAppointment)

		api.POST("/ratings", h.SubmitRating)
		api.GET("/ratings", h.GetRatings)

		api.POST("/chat", h.HandleChat)

		api.GET("/events", h.StreamEvents)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})
	return r
}
