package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

const msgProfileNotFound = "User not found in database"

// DemoAccount is one of the identities provisioned by InitDemo.
type DemoAccount struct {
	Email    string
	Password string
	Name     string
	Role     string
}

var DemoAccounts = []DemoAccount{
	{Email: "doctor@clinic.com", Password: "doctor123", Name: "Dr. John Smith", Role: models.RoleDoctor},
	{Email: "receptionist@clinic.com", Password: "receptionist123", Name: "Sarah Johnson", Role: models.RoleReceptionist},
}

const (
	DemoCreated       = "created"
	DemoAlreadyExists = "already exists"
	DemoError         = "error"
)

type DemoResult struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ProfileInput struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type AuthService struct {
	provider identity.Provider
	users    repository.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(provider identity.Provider, users repository.UserRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		logger:   logger.With().Str("service", "auth").Logger(),
		now:      time.Now,
	}
}

// VerifyToken checks a bearer credential with the identity provider.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*identity.Identity, error) {
	id, err := s.provider.VerifyToken(ctx, token)
	if err == nil {
		return id, nil
	}
	switch {
	case errors.Is(err, identity.ErrTokenExpired):
		return nil, &Error{Kind: KindUnauthenticated, Title: "Token Expired", Message: "Authentication token has expired", Err: err}
	case errors.Is(err, identity.ErrInvalidToken):
		return nil, &Error{Kind: KindUnauthenticated, Title: "Invalid Token", Message: "Invalid authentication token format", Err: err}
	}
	return nil, &Error{Kind: KindUnauthenticated, Title: "Authentication Failed", Message: "Failed to authenticate user", Err: err}
}

// Principal loads the staff profile for a verified identity. The verified
// email wins over the stored one.
func (s *AuthService) Principal(ctx context.Context, id *identity.Identity) (*models.User, error) {
	u, err := s.users.Get(ctx, id.UID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(msgProfileNotFound)
	}
	if err != nil {
		return nil, Internal("Failed to load user profile", err)
	}
	if id.Email != "" {
		u.Email = id.Email
	}
	return u, nil
}

// CreateProfile stores the staff profile of a freshly registered identity.
// A role is assigned once; an existing profile is never overwritten.
func (s *AuthService) CreateProfile(ctx context.Context, id *identity.Identity, in ProfileInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Role == "" {
		return nil, BadRequest("Name and role are required")
	}
	if !models.ValidRole(in.Role) {
		return nil, BadRequest("Invalid role. Must be doctor or receptionist")
	}
	if _, err := s.users.Get(ctx, id.UID); err == nil {
		return nil, BadRequest("User profile already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, Internal("Failed to create user profile", err)
	}

	u := &models.User{ID: id.UID, Name: name, Email: id.Email, Role: in.Role, CreatedAt: s.now()}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, Internal("Failed to create user profile", err)
	}
	s.logger.Info().Str("uid", u.ID).Str("role", u.Role).Msg("user profile created")
	return u, nil
}

// InitDemo provisions the demo accounts. Accounts that already exist are
// reported and left alone, so it is safe to call repeatedly.
func (s *AuthService) InitDemo(ctx context.Context) []DemoResult {
	results := make([]DemoResult, 0, len(DemoAccounts))
	for _, acct := range DemoAccounts {
		res := DemoResult{Email: acct.Email, Role: acct.Role}
		uid, err := s.provider.CreateUser(ctx, acct.Email, acct.Password, acct.Name)
		switch {
		case errors.Is(err, identity.ErrEmailExists):
			res.Status = DemoAlreadyExists
		case err != nil:
			res.Status = DemoError
			res.Error = err.Error()
		default:
			u := &models.User{ID: uid, Name: acct.Name, Email: acct.Email, Role: acct.Role, CreatedAt: s.now()}
			if err := s.users.Put(ctx, u); err != nil {
				res.Status = DemoError
				res.Error = err.Error()
				break
			}
			res.Status = DemoCreated
		}
		if res.Status == DemoError {
			s.logger.Error().Str("email", acct.Email).Str("error", res.Error).Msg("demo user not provisioned")
		}
		results = append(results, res)
	}
	return results
}

// Login exchanges an email and password for a session token. Only providers
// that manage passwords on this side support it.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	pa, ok := s.provider.(identity.PasswordAuthenticator)
	if !ok {
		return "", nil, BadRequest("Password login is handled by the identity provider")
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, BadRequest("Email and password are required")
	}
	token, id, err := pa.Login(ctx, email, password)
	if errors.Is(err, identity.ErrBadCredentials) {
		return "", nil, Unauthenticated("Authentication Failed", "Invalid credentials")
	}
	if err != nil {
		return "", nil, Internal("Login failed", err)
	}
	u, err := s.Principal(ctx, id)
	if err != nil {
		var se *Error
		if errors.As(err, &se) && se.Kind == KindNotFound {
			return "", nil, Unauthenticated("Authentication Failed", msgProfileNotFound)
		}
		return "", nil, err
	}
	return token, u, nil
}
