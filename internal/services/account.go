package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
	"github.com/harentsoaR/dentaflow-api/internal/models"
	"github.com/harentsoaR/dentaflow-api/internal/store"
	"github.com/harentsoaR/dentaflow-api/internal/utils"
)

// AccountPolicy holds the admission rules for staff roles.
type AccountPolicy struct {
	MaxSecretaries int
	StaffCode      string
	AdminCode      string
	// DemoLogins lets any email containing "admin", "doc" or "pat" in as a
	// canned secretary, dentist or patient. Development only.
	DemoLogins bool
}

type SignupRequest struct {
	FullName   string
	Email      string
	Password   string
	Role       string
	AccessCode string
}

type AccountService struct {
	// mu serializes signups so the role caps hold under concurrent requests.
	mu     sync.Mutex
	users  store.UserStore
	policy AccountPolicy
	log    zerolog.Logger
}

func NewAccountService(users store.UserStore, policy AccountPolicy, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, policy: policy, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account. Staff roles need the matching admission code;
// the dentist seat is unique and the secretary seats are capped.
func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (models.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := normalizeEmail(req.Email)
	if fullName == "" || email == "" || req.Password == "" {
		return models.User{}, apperrors.Validation("Missing fields!")
	}
	role := req.Role
	if role == "" {
		role = models.RolePatient
	}
	if role != models.RolePatient && !models.IsStaff(role) {
		return models.User{}, apperrors.Validation("Unknown role " + role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.users.List(ctx, store.UserFilter{Email: email})
	if err != nil {
		return models.User{}, apperrors.Internal(err)
	}
	if len(existing) > 0 {
		return models.User{}, apperrors.DuplicateIdentity("Email taken!")
	}

	if err := s.admit(ctx, role, req.AccessCode); err != nil {
		s.log.Warn().Str("role", role).Str("reason", apperrors.PublicMessage(err)).Msg("signup refused")
		return models.User{}, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return models.User{}, apperrors.Internal(err)
	}
	user := models.User{
		FullName:  fullName,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, &user); err != nil {
		return models.User{}, apperrors.Internal(err)
	}
	s.log.Info().Int64("userId", user.ID).Str("role", role).Msg("account created")
	return user, nil
}

func (s *AccountService) admit(ctx context.Context, role, code string) error {
	switch role {
	case models.RoleDentist:
		dentists, err := s.users.List(ctx, store.UserFilter{Role: models.RoleDentist})
		if err != nil {
			return apperrors.Internal(err)
		}
		if len(dentists) > 0 {
			return apperrors.Authorization("Only 1 Dentist allowed.")
		}
		if code != s.policy.AdminCode {
			return apperrors.Authorization("Invalid Admin Code!")
		}
	case models.RoleSecretary:
		if code != s.policy.StaffCode {
			return apperrors.Authorization("Invalid Staff Code!")
		}
		secretaries, err := s.users.List(ctx, store.UserFilter{Role: models.RoleSecretary})
		if err != nil {
			return apperrors.Internal(err)
		}
		if len(secretaries) >= s.policy.MaxSecretaries {
			return apperrors.Authorization("Secretary limit reached.")
		}
	}
	return nil
}

// Login checks credentials and returns the matching user.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, apperrors.Validation("Missing fields!")
	}

	users, err := s.users.List(ctx, store.UserFilter{Email: email})
	if err != nil {
		return models.User{}, apperrors.Internal(err)
	}
	if len(users) == 1 && utils.CheckPasswordHash(password, users[0].Password) {
		return users[0], nil
	}

	if s.policy.DemoLogins {
		if demo, ok := demoUser(email); ok {
			s.log.Warn().Str("email", email).Str("role", demo.Role).Msg("demo login used")
			return demo, nil
		}
	}
	return models.User{}, apperrors.Unauthenticated("Invalid credentials")
}

// Demo identities use negative ids so they never alias stored users.
func demoUser(email string) (models.User, bool) {
	switch {
	case strings.Contains(email, "admin"):
		return models.User{ID: -999, FullName: "Demo Secretary", Email: email, Role: models.RoleSecretary}, true
	case strings.Contains(email, "doc"):
		return models.User{ID: -888, FullName: "Dr. Dentist", Email: email, Role: models.RoleDentist}, true
	case strings.Contains(email, "pat"):
		return models.User{ID: -777, FullName: "Demo Patient", Email: email, Role: models.RolePatient}, true
	}
	return models.User{}, false
}
