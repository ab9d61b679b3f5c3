package models

import "time"

// Role names as sent by the client.
const (
	RolePatient   = "patient"
	RoleSecretary = "secretary"
	RoleDentist   = "dentist"
)

// IsStaff reports whether role belongs to clinic staff.
func IsStaff(role string) bool {
	return role == RoleSecretary || role == RoleDentist
}

type User struct {
	ID        int64     `bson:"_id" json:"id"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role      string    `bson:"role" json:"role"`  // "patient", "secretary", "dentist"
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Summary is the user shape returned on login.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.FullName, Role: u.Role, Email: u.Email}
}
