package store

import (
	"context"
	"sync"

	"github.com/harentsoaR/dentaflow-api/internal/models"
)

// sequence hands out increasing ids.
type sequence struct {
	last int64
}

func (s *sequence) next() int64 {
	s.last++
	return s.last
}

func (s *sequence) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}

// MemoryUsers keeps users for the life of the process.
type MemoryUsers struct {
	mu    sync.RWMutex
	seq   sequence
	users []models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{}
}

func (m *MemoryUsers) List(_ context.Context, filter UserFilter) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if filter.match(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryUsers) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.ID = m.seq.next()
	m.users = append(m.users, *u)
	return nil
}

// MemoryAppointments keeps appointments for the life of the process.
type MemoryAppointments struct {
	mu           sync.RWMutex
	seq          sequence
	appointments []models.Appointment
}

// NewMemoryAppointments starts with the given records; new ids continue after
// the highest seeded id.
func NewMemoryAppointments(seed []models.Appointment) *MemoryAppointments {
	m := &MemoryAppointments{appointments: make([]models.Appointment, 0, len(seed))}
	for _, a := range seed {
		m.seq.observe(a.ID)
		m.appointments = append(m.appointments, a)
	}
	return m
}

func (m *MemoryAppointments) List(_ context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Appointment, 0, len(m.appointments))
	for _, a := range m.appointments {
		if filter.match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryAppointments) Insert(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = m.seq.next()
	m.appointments = append(m.appointments, *a)
	return nil
}

func (m *MemoryAppointments) UpdateByID(_ context.Context, id int64, mutate func(*models.Appointment) error) (models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.appointments {
		if m.appointments[i].ID != id {
			continue
		}
		updated := m.appointments[i]
		if err := mutate(&updated); err != nil {
			return m.appointments[i], err
		}
		updated.ID = id
		m.appointments[i] = updated
		return updated, nil
	}
	return models.Appointment{}, ErrNotFound
}

// MemoryRatings keeps ratings for the life of the process.
type MemoryRatings struct {
	mu      sync.RWMutex
	seq     sequence
	ratings []models.Rating
}

func NewMemoryRatings() *MemoryRatings {
	return &MemoryRatings{}
}

func (m *MemoryRatings) List(context.Context) ([]models.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Rating, len(m.ratings))
	copy(out, m.ratings)
	return out, nil
}

func (m *MemoryRatings) Insert(_ context.Context, r *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = m.seq.next()
	m.ratings = append(m.ratings, *r)
	return nil
}

// NewMemory returns an in-memory directory seeded with the given appointments.
func NewMemory(seed []models.Appointment) *Directory {
	return &Directory{
		Users:        NewMemoryUsers(),
		Appointments: NewMemoryAppointments(seed),
		Ratings:      NewMemoryRatings(),
	}
}
