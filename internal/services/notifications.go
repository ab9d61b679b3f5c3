package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/notify"
)

// StatusChange is the payload of an appointment_status_changed event. Only the
// fields the update carried are set; PatientName lets patient viewers decide
// whether the change concerns them.
type StatusChange struct {
	ID          int64                     `json:"id"`
	Status      *models.AppointmentStatus `json:"status,omitempty"`
	Date        *string                   `json:"date,omitempty"`
	Time        *string                   `json:"time,omitempty"`
	PatientName string                    `json:"patientName"`
}

// NotificationService turns lifecycle changes into push events.
type NotificationService struct {
	pub notify.Publisher
	log zerolog.Logger
}

func NewNotificationService(pub notify.Publisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{pub: pub, log: log}
}

// AppointmentCreated tells staff viewers to refresh their pending queue.
func (s *NotificationService) AppointmentCreated(ctx context.Context, apt models.Appointment) {
	s.pub.Publish(ctx, notify.Event{Kind: notify.KindAppointmentCreated, Payload: apt})
	s.log.Debug().Int64("appointmentId", apt.ID).Msg("appointment_created broadcast")
}

// AppointmentChanged tells the owning patient and all staff to refresh.
func (s *NotificationService) AppointmentChanged(ctx context.Context, change StatusChange) {
	s.pub.Publish(ctx, notify.Event{Kind: notify.KindAppointmentStatusChanged, Payload: change})
	s.log.Debug().Int64("appointmentId", change.ID).Msg("appointment_status_changed broadcast")
}
