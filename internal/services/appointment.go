package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/store"
)

// Notifier receives lifecycle events after the store accepted them.
type Notifier interface {
	AppointmentCreated(ctx context.Context, apt models.Appointment)
	AppointmentChanged(ctx context.Context, change StatusChange)
}

type NewAppointment struct {
	PatientID   int64
	PatientName string
	Date        string
	Time        string
	Type        string
}

// AppointmentUpdate is a partial update; nil fields are left alone.
type AppointmentUpdate struct {
	Status *models.AppointmentStatus
	Date   *string
	Time   *string
}

func (u AppointmentUpdate) empty() bool {
	return u.Status == nil && u.Date == nil && u.Time == nil
}

func (u AppointmentUpdate) reschedules() bool {
	return u.Date != nil && u.Time != nil
}

type AppointmentService struct {
	store    store.AppointmentStore
	notifier Notifier
	log      zerolog.Logger
}

func NewAppointmentService(s store.AppointmentStore, n Notifier, log zerolog.Logger) *AppointmentService {
	return &AppointmentService{store: s, notifier: n, log: log}
}

// Create books a new Pending appointment and announces it to staff.
func (s *AppointmentService) Create(ctx context.Context, req NewAppointment) (models.Appointment, error) {
	apt := models.Appointment{
		PatientID:   req.PatientID,
		PatientName: strings.TrimSpace(req.PatientName),
		Date:        strings.TrimSpace(req.Date),
		Time:        strings.TrimSpace(req.Time),
		Type:        strings.TrimSpace(req.Type),
		Status:      models.StatusPending,
	}
	if apt.PatientName == "" || apt.Date == "" || apt.Time == "" || apt.Type == "" {
		return models.Appointment{}, apperrors.Validation("Missing fields!")
	}

	if err := s.store.Insert(ctx, &apt); err != nil {
		return models.Appointment{}, apperrors.Internal(err)
	}
	s.log.Info().Int64("appointmentId", apt.ID).Int64("patientId", apt.PatientID).Msg("appointment requested")

	s.notifier.AppointmentCreated(ctx, apt)
	return apt, nil
}

// List returns a patient's own appointments, or everything for any other role.
// A patient must say who they are.
func (s *AppointmentService) List(ctx context.Context, role string, userID int64) ([]models.Appointment, error) {
	var filter store.AppointmentFilter
	if role == models.RolePatient {
		if userID == 0 {
			return nil, apperrors.Validation("userId is required for patients")
		}
		filter.PatientID = &userID
	}
	appointments, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

// Update applies the supplied fields. Status changes must follow the lifecycle:
//
//	Pending   -> Confirmed | Cancelled
//	Confirmed -> Cancelled
//	Cancelled -> Confirmed (only together with a new date and time)
//
// Requesting the current status is a no-op. A broadcast happens only when the
// stored record actually changed.
func (s *AppointmentService) Update(ctx context.Context, id int64, upd AppointmentUpdate) (models.Appointment, error) {
	if upd.empty() {
		return models.Appointment{}, apperrors.Validation("No fields to update")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return models.Appointment{}, apperrors.Validation("Unknown status " + string(*upd.Status))
	}

	var change StatusChange
	changed := false
	updated, err := s.store.UpdateByID(ctx, id, func(a *models.Appointment) error {
		change = StatusChange{ID: a.ID, PatientName: a.PatientName}
		changed = false

		if upd.Status != nil && *upd.Status != a.Status {
			if err := checkTransition(a.Status, *upd.Status, upd.reschedules()); err != nil {
				return err
			}
			a.Status = *upd.Status
			changed = true
		}
		if upd.Date != nil && *upd.Date != a.Date {
			a.Date = *upd.Date
			changed = true
		}
		if upd.Time != nil && *upd.Time != a.Time {
			a.Time = *upd.Time
			changed = true
		}

		if upd.Status != nil {
			status := a.Status
			change.Status = &status
		}
		if upd.Date != nil {
			date := a.Date
			change.Date = &date
		}
		if upd.Time != nil {
			tm := a.Time
			change.Time = &tm
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.Appointment{}, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return models.Appointment{}, err
		}
		return models.Appointment{}, apperrors.Internal(err)
	}

	if !changed {
		return updated, nil
	}
	s.log.Info().Int64("appointmentId", id).Str("status", string(updated.Status)).Msg("appointment updated")
	s.notifier.AppointmentChanged(ctx, change)
	return updated, nil
}

func checkTransition(from, to models.AppointmentStatus, reschedule bool) error {
	switch {
	case from == models.StatusPending && (to == models.StatusConfirmed || to == models.StatusCancelled):
		return nil
	case from == models.StatusConfirmed && to == models.StatusCancelled:
		return nil
	case from == models.StatusCancelled && to == models.StatusConfirmed:
		if reschedule {
			return nil
		}
		return &apperrors.AppError{
			Code:    apperrors.ErrInvalidTransition,
			Message: "a cancelled appointment can only be confirmed with a new date and time",
		}
	}
	return apperrors.InvalidTransition(string(from), string(to))
}
