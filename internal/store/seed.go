package store

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/harentsoaR/dentaflow-api/internal/models"
)

// DefaultSeed is the demo schedule the clinic starts with.
func DefaultSeed() []models.Appointment {
	return []models.Appointment{
		{ID: 101, PatientName: "John Doe", Date: "2026-02-19", Time: "10:00", Type: "Cleaning", Status: models.StatusConfirmed},
		{ID: 102, PatientName: "Sarah Smith", Date: "2026-02-19", Time: "11:30", Type: "Root Canal", Status: models.StatusPending},
	}
}

type seedFile struct {
	Appointments []models.Appointment `yaml:"appointments" validate:"dive"`
}

// LoadSeedFile reads appointments from a YAML document of the form
//
//	appointments:
//	  - id: 101
//	    patientName: John Doe
//	    ...
func LoadSeedFile(path string) ([]models.Appointment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	seen := make(map[int64]struct{}, len(doc.Appointments))
	for _, a := range doc.Appointments {
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("invalid seed file %s: duplicate appointment id %d", path, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return doc.Appointments, nil
}
