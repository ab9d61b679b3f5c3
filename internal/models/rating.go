package models

import (
	"strconv"
	"time"
)

type Rating struct {
	ID        int64     `bson:"_id" json:"id"`
	PatientID int64     `bson:"patientId" json:"patientId"`
	Stars     int       `bson:"stars" json:"stars"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Average is a star average kept to one decimal place. It marshals as a JSON
// number with exactly one fractional digit (4.0, not 4).
type Average float64

func (a Average) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(a), 'f', 1, 64)), nil
}
