package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/store"
)

var testPolicy = AccountPolicy{MaxSecretaries: 2, StaffCode: "TEAM2026", AdminCode: "MYCLINIC123"}

func newAccountService(policy AccountPolicy) *AccountService {
	return NewAccountService(store.NewMemoryUsers(), policy, zerolog.Nop())
}

func signup(svc *AccountService, email, role, code string) (models.User, error) {
	return svc.Signup(context.Background(), SignupRequest{
		FullName: "Test " + role, Email: email, Password: "password1", Role: role, AccessCode: code,
	})
}

func TestSignupDefaultsToPatient(t *testing.T) {
	svc := newAccountService(testPolicy)
	u, err := signup(svc, "Ann@Example.com ", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, u.Role)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEqual(t, "password1", u.Password)
}

func TestSignupMissingFields(t *testing.T) {
	svc := newAccountService(testPolicy)
	_, err := svc.Signup(context.Background(), SignupRequest{FullName: "A", Email: "a@x.io"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newAccountService(testPolicy)
	_, err := signup(svc, "a@x.io", models.RolePatient, "")
	require.NoError(t, err)

	_, err = signup(svc, "A@x.io", models.RolePatient, "")
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateIdentity))
}

func TestSecondDentistRejectedRegardlessOfCode(t *testing.T) {
	svc := newAccountService(testPolicy)
	_, err := signup(svc, "doc1@x.io", models.RoleDentist, "MYCLINIC123")
	require.NoError(t, err)

	for _, code := range []string{"MYCLINIC123", "wrong", ""} {
		_, err = signup(svc, "doc2"+code+"@x.io", models.RoleDentist, code)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrAuthorization))
		assert.Equal(t, "Only 1 Dentist allowed.", apperrors.PublicMessage(err))
	}
}

func TestDentistNeedsAdminCode(t *testing.T) {
	svc := newAccountService(testPolicy)
	_, err := signup(svc, "doc@x.io", models.RoleDentist, "TEAM2026")
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthorization))
	assert.Equal(t, "Invalid Admin Code!", apperrors.PublicMessage(err))
}

func TestSecretaryCodeAndCap(t *testing.T) {
	svc := newAccountService(testPolicy)

	_, err := signup(svc, "s0@x.io", models.RoleSecretary, "nope")
	assert.Equal(t, "Invalid Staff Code!", apperrors.PublicMessage(err))

	for _, email := range []string{"s1@x.io", "s2@x.io"} {
		_, err := signup(svc, email, models.RoleSecretary, "TEAM2026")
		require.NoError(t, err)
	}
	_, err = signup(svc, "s3@x.io", models.RoleSecretary, "TEAM2026")
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthorization))
	assert.Equal(t, "Secretary limit reached.", apperrors.PublicMessage(err))
}

func TestSignupUnknownRole(t *testing.T) {
	svc := newAccountService(testPolicy)
	_, err := signup(svc, "x@x.io", "janitor", "")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService(testPolicy)
	created, err := signup(svc, "ann@x.io", models.RolePatient, "")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ANN@x.io", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Login(ctx, "ann@x.io", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
}

func TestDemoLoginsOnlyWhenEnabled(t *testing.T) {
	ctx := context.Background()

	_, err := newAccountService(testPolicy).Login(ctx, "admin@clinic.io", "x")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))

	policy := testPolicy
	policy.DemoLogins = true
	svc := newAccountService(policy)

	cases := map[string]string{
		"admin@clinic.io":   models.RoleSecretary,
		"doc@clinic.io":     models.RoleDentist,
		"patient@clinic.io": models.RolePatient,
	}
	for email, role := range cases {
		u, err := svc.Login(ctx, email, "anything")
		require.NoError(t, err, email)
		assert.Equal(t, role, u.Role, email)
		assert.Negative(t, u.ID, email)
	}

	_, err = svc.Login(ctx, "nobody@clinic.io", "x")
	assert.Error(t, err)
}

func concurrentSignups(svc *AccountService, n int, role, code string) (ok, refused int64) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := signup(svc, fmt.Sprintf("%s%d@x.io", role, i), role, code)
			switch {
			case err == nil:
				atomic.AddInt64(&ok, 1)
			case apperrors.Is(err, apperrors.ErrAuthorization):
				atomic.AddInt64(&refused, 1)
			}
		}(i)
	}
	wg.Wait()
	return ok, refused
}

func TestSecretaryCapHoldsUnderConcurrentSignups(t *testing.T) {
	policy := testPolicy
	policy.MaxSecretaries = 4
	svc := newAccountService(policy)

	ok, refused := concurrentSignups(svc, 10, models.RoleSecretary, "TEAM2026")
	assert.Equal(t, int64(4), ok)
	assert.Equal(t, int64(6), refused)

	secretaries, err := svc.users.List(context.Background(), store.UserFilter{Role: models.RoleSecretary})
	require.NoError(t, err)
	assert.Len(t, secretaries, 4)
}

func TestSingleDentistUnderConcurrentSignups(t *testing.T) {
	svc := newAccountService(testPolicy)

	ok, refused := concurrentSignups(svc, 2, models.RoleDentist, "MYCLINIC123")
	assert.Equal(t, int64(1), ok)
	assert.Equal(t, int64(1), refused)
}
