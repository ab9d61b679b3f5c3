package models

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booking request. PatientName is a snapshot taken at booking time
// and is never re-synced with the user record.
type Appointment struct {
	ID          int64             `bson:"_id" json:"id" yaml:"id" validate:"required,gt=0"`
	PatientID   int64             `bson:"patientId" json:"patientId" yaml:"patientId"`
	PatientName string            `bson:"patientName" json:"patientName" yaml:"patientName" validate:"required"`
	Date        string            `bson:"date" json:"date" yaml:"date" validate:"required"`
	Time        string            `bson:"time" json:"time" yaml:"time" validate:"required"`
	Type        string            `bson:"type" json:"type" yaml:"type" validate:"required"`
	Status      AppointmentStatus `bson:"status" json:"status" yaml:"status" validate:"required,oneof=Pending Confirmed Cancelled"`
}
