// Package store holds the directory of users, appointments and ratings behind
// small interfaces so the lifecycle code does not care where records live.
package store

import (
	"context"
	"errors"

	"github.com/harentsoaR/dentaflow-api/internal/models"
)

// ErrNotFound is returned by UpdateByID when no record has the given id.
var ErrNotFound = errors.New("record not found")

// UserFilter narrows a user listing. Empty fields match everything.
type UserFilter struct {
	Email string
	Role  string
}

// AppointmentFilter narrows an appointment listing. A nil PatientID matches everything.
type AppointmentFilter struct {
	PatientID *int64
}

type UserStore interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	// Insert assigns u.ID before storing.
	Insert(ctx context.Context, u *models.User) error
}

type AppointmentStore interface {
	// List returns matching appointments in insertion order.
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// Insert assigns a.ID before storing.
	Insert(ctx context.Context, a *models.Appointment) error
	// UpdateByID applies mutate to the stored record and persists the result.
	// If mutate returns an error the record is left untouched.
	UpdateByID(ctx context.Context, id int64, mutate func(*models.Appointment) error) (models.Appointment, error)
}

type RatingStore interface {
	List(ctx context.Context) ([]models.Rating, error)
	Insert(ctx context.Context, r *models.Rating) error
}

// Directory bundles the three collections.
type Directory struct {
	Users        UserStore
	Appointments AppointmentStore
	Ratings      RatingStore
}

func (f UserFilter) match(u models.User) bool {
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	return true
}

func (f AppointmentFilter) match(a models.Appointment) bool {
	return f.PatientID == nil || a.PatientID == *f.PatientID
}
