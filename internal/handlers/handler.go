package handlers

import (
	"time"

	"github.com/harentsoaR/dentaflow-api/internal/notify"
	"github.com/harentsoaR/dentaflow-api/internal/services"
	"github.com/harentsoaR/dentaflow-api/internal/utils"
)

const defaultHeartbeat = 25 * time.Second

// Handler holds everything the routes need.
type Handler struct {
	Accounts     *services.AccountService
	Appointments *services.AppointmentService
	Ratings      *services.RatingService
	Chat         *services.ChatService
	Events       *notify.Hub
	Tokens       *utils.TokenIssuer
	// Heartbeat is the interval between keep-alive events on the push channel.
	Heartbeat time.Duration
}

func NewHandler(h Handler) *Handler {
	if h.Heartbeat <= 0 {
		h.Heartbeat = defaultHeartbeat
	}
	return &h
}
