package services

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/store"
)

type recordingNotifier struct {
	mu      sync.Mutex
	created []models.Appointment
	changed []StatusChange
}

func (n *recordingNotifier) AppointmentCreated(_ context.Context, apt models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, apt)
}

func (n *recordingNotifier) AppointmentChanged(_ context.Context, change StatusChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, change)
}

func newAppointmentService(seed []models.Appointment) (*AppointmentService, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewAppointmentService(store.NewMemoryAppointments(seed), n, zerolog.Nop()), n
}

func status(s models.AppointmentStatus) *models.AppointmentStatus { return &s }
func str(s string) *string                                        { return &s }

func book(t *testing.T, svc *AppointmentService, patientID int64, name string) models.Appointment {
	t.Helper()
	apt, err := svc.Create(context.Background(), NewAppointment{
		PatientID: patientID, PatientName: name, Date: "2026-03-10", Time: "09:30", Type: "Cleaning",
	})
	require.NoError(t, err)
	return apt
}

func TestCreateIsPendingAndListed(t *testing.T) {
	ctx := context.Background()
	svc, n := newAppointmentService(store.DefaultSeed())

	apt := book(t, svc, 7, "Ann Lee")
	assert.Equal(t, models.StatusPending, apt.Status)
	assert.Greater(t, apt.ID, int64(102))

	all, err := svc.List(ctx, models.RoleSecretary, 0)
	require.NoError(t, err)
	assert.Contains(t, all, apt)

	mine, err := svc.List(ctx, models.RolePatient, 7)
	require.NoError(t, err)
	assert.Equal(t, []models.Appointment{apt}, mine)

	require.Len(t, n.created, 1)
	assert.Equal(t, apt, n.created[0])
}

func TestCreateRequiresFields(t *testing.T) {
	svc, n := newAppointmentService(nil)
	_, err := svc.Create(context.Background(), NewAppointment{PatientID: 1, PatientName: "Ann", Date: "2026-03-10", Time: " "})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, n.created)
}

func TestPatientListingNeedsIdentity(t *testing.T) {
	svc, _ := newAppointmentService(store.DefaultSeed())
	book(t, svc, 0, "Walk In")

	got, err := svc.List(context.Background(), models.RolePatient, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, got)
}

func TestPatientListingOnlyHasOwnRecords(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAppointmentService(store.DefaultSeed())
	owners := []int64{1, 2, 1, 3, 2, 1}
	for _, id := range owners {
		book(t, svc, id, "Patient")
	}

	for _, patient := range []int64{1, 2, 3, 4} {
		got, err := svc.List(ctx, models.RolePatient, patient)
		require.NoError(t, err)
		want := 0
		for _, id := range owners {
			if id == patient {
				want++
			}
		}
		assert.Len(t, got, want, "patient %d", patient)
		for _, a := range got {
			assert.Equal(t, patient, a.PatientID)
		}
	}

	staff, err := svc.List(ctx, models.RoleDentist, 0)
	require.NoError(t, err)
	assert.Len(t, staff, len(owners)+2)
}

func TestConfirmTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, n := newAppointmentService(nil)
	apt := book(t, svc, 1, "Ann Lee")

	first, err := svc.Update(ctx, apt.ID, AppointmentUpdate{Status: status(models.StatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, first.Status)

	second, err := svc.Update(ctx, apt.ID, AppointmentUpdate{Status: status(models.StatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, second.Status)

	require.Len(t, n.changed, 1)
	assert.Equal(t, "Ann Lee", n.changed[0].PatientName)
	assert.Equal(t, models.StatusConfirmed, *n.changed[0].Status)
	assert.Nil(t, n.changed[0].Date)
}

func TestRejectThenAdminReschedule(t *testing.T) {
	ctx := context.Background()
	svc, n := newAppointmentService(nil)
	apt := book(t, svc, 4, "Omar Haddad")

	_, err := svc.Update(ctx, apt.ID, AppointmentUpdate{Status: status(models.StatusCancelled)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, apt.ID, AppointmentUpdate{
		Status: status(models.StatusConfirmed), Date: str("2026-04-01"), Time: str("15:45"),
	})
	require.NoError(t, err)

	listed, err := svc.List(ctx, models.RolePatient, 4)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusConfirmed, listed[0].Status)
	assert.Equal(t, "2026-04-01", listed[0].Date)
	assert.Equal(t, "15:45", listed[0].Time)
	assert.Equal(t, "Omar Haddad", listed[0].PatientName)

	require.Len(t, n.changed, 2)
	last := n.changed[1]
	assert.Equal(t, apt.ID, last.ID)
	assert.Equal(t, "2026-04-01", *last.Date)
	assert.Equal(t, "15:45", *last.Time)
}

func TestCancelledNeedsDateAndTimeToConfirm(t *testing.T) {
	ctx := context.Background()
	svc, n := newAppointmentService(nil)
	apt := book(t, svc, 1, "Ann Lee")
	_, err := svc.Update(ctx, apt.ID, AppointmentUpdate{Status: status(models.StatusCancelled)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, apt.ID, AppointmentUpdate{Status: status(models.StatusConfirmed), Date: str("2026-05-05")})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	listed, err := svc.List(ctx, models.RolePatient, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, listed[0].Status)
	assert.Equal(t, "2026-03-10", listed[0].Date, "rejected update must not apply other fields")
	assert.Len(t, n.changed, 1)
}

func TestConfirmedCanBeCancelledButNotReopened(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAppointmentService(store.DefaultSeed())

	_, err := svc.Update(ctx, 101, AppointmentUpdate{Status: status(models.StatusPending)})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	updated, err := svc.Update(ctx, 101, AppointmentUpdate{Status: status(models.StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
}

func TestRescheduleWithoutStatus(t *testing.T) {
	ctx := context.Background()
	svc, n := newAppointmentService(store.DefaultSeed())

	updated, err := svc.Update(ctx, 102, AppointmentUpdate{Time: str("12:15")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, "12:15", updated.Time)

	require.Len(t, n.changed, 1)
	assert.Nil(t, n.changed[0].Status)
	assert.Equal(t, "Sarah Smith", n.changed[0].PatientName)
}

func TestUpdateUnknownIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, n := newAppointmentService(store.DefaultSeed())
	before, err := svc.List(ctx, models.RoleSecretary, 0)
	require.NoError(t, err)

	_, err = svc.Update(ctx, 99999, AppointmentUpdate{Status: status(models.StatusConfirmed)})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	after, err := svc.List(ctx, models.RoleSecretary, 0)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, n.changed)
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAppointmentService(store.DefaultSeed())

	_, err := svc.Update(ctx, 101, AppointmentUpdate{})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.Update(ctx, 101, AppointmentUpdate{Status: status("Done")})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
