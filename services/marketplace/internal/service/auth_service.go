package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Session, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.Session, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	users  repository.UserRepository
	config *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{users: users, config: cfg}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Session, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	role, _ := auth.ParseRole(req.Role)
	if bootstrap := strings.ToLower(s.config.Auth.AdminBootstrap); bootstrap != "" && bootstrap == req.Email {
		role = auth.RoleAdmin
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name, role)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Session, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *authService) issue(user *domain.User) (*domain.Session, error) {
	ttl := s.config.Auth.SessionTTL
	token, err := auth.NewSessionToken(user.Principal(), s.config.Auth.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &domain.Session{
		User:      user.Principal(),
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}
