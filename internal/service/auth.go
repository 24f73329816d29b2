package service

import (
	"context"
	"errors"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"
	"estate-intake/internal/transport/auth"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type UserRepositoryIface interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type AuthService struct {
	users   UserRepositoryIface
	manager *auth.Manager
}

func NewAuthService(users UserRepositoryIface, manager *auth.Manager) *AuthService {
	return &AuthService{
		users:   users,
		manager: manager,
	}
}

// Login verifies credentials and returns a signed session token. A wrong
// username and a wrong password produce the same error so the endpoint
// does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.manager.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
