package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/model"
	"driver_dashboard/internal/repository"
	"driver_dashboard/internal/utils"
)

const minPasswordLength = 6

// DemoPasswords are the fixed credentials accepted by the demo authenticator.
var DemoPasswords = map[string]string{
	"admin":   "admin123",
	"partner": "partner123",
}

// Authenticator checks a username/password pair.
// Every failure that is not a storage error is reported as ErrInvalidCredentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.Identity, error)
}

type demoAuthenticator struct {
	users     repository.UserRepository
	passwords map[string]string
}

// NewDemoAuthenticator compares passwords against fixed literals. Not for production.
func NewDemoAuthenticator(users repository.UserRepository, passwords map[string]string) Authenticator {
	return &demoAuthenticator{users: users, passwords: passwords}
}

func (a *demoAuthenticator) Authenticate(ctx context.Context, username, password string) (*model.Identity, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	expected, ok := a.passwords[user.Username]
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	identity := user.Identity()
	return &identity, nil
}

type bcryptAuthenticator struct {
	users repository.UserRepository
}

// NewBcryptAuthenticator compares passwords against the stored bcrypt hash.
func NewBcryptAuthenticator(users repository.UserRepository) Authenticator {
	return &bcryptAuthenticator{users: users}
}

func (a *bcryptAuthenticator) Authenticate(ctx context.Context, username, password string) (*model.Identity, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	identity := user.Identity()
	return &identity, nil
}

// AuthService provides authentication related services
type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.Identity, error)
	IssueToken(identity model.Identity) (string, error)
	CreateUser(ctx context.Context, username, name, role, password string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	authn    Authenticator
	jwtUtil  *utils.JWTUtil
	log      logger.ILogger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, authn Authenticator, jwtUtil *utils.JWTUtil, log logger.ILogger) AuthService {
	return &authService{
		userRepo: userRepo,
		authn:    authn,
		jwtUtil:  jwtUtil,
		log:      log,
	}
}

// Login authenticates a user and returns the identity to attach to a session or token
func (s *authService) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	identity, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Warning("failed login attempt", logger.String("username", username))
		}
		return nil, err
	}
	s.log.Info("user logged in", logger.String("username", identity.Username), logger.String("role", identity.Role))
	return identity, nil
}

func (s *authService) IssueToken(identity model.Identity) (string, error) {
	token, err := s.jwtUtil.GenerateToken(identity)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// CreateUser hashes the password and stores a new user account
func (s *authService) CreateUser(ctx context.Context, username, name, role, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, newValidationError("username", "username is required")
	}
	if !model.ValidRole(role) {
		return nil, newValidationError("role", fmt.Sprintf("invalid role %q: must be admin or partner", role))
	}
	if len(password) < minPasswordLength {
		return nil, newValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if user.Name == "" {
		user.Name = username
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	s.log.Info("user created", logger.Int("user_id", user.ID), logger.String("role", role))
	return user, nil
}
