package service

import (
	"context"
	"errors"
	"fmt"

	"shop-api/internal/auth"
	"shop-api/internal/database"
	"shop-api/internal/domain"
	"shop-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user with this email or username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// Session is what a successful register or login hands back to the client
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// UserService defines the interface for account business logic
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenManager) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register creates an account and signs the user in
func (s *userService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing == nil {
		existing, err = s.userRepo.FindByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	// The lookup above can race with a concurrent registration; the unique
	// constraints decide in that case
	user, err := s.userRepo.Create(ctx, username, email, password)
	if err != nil {
		if errors.Is(err, database.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token
func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.userRepo.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return &Session{Token: token, User: user}, nil
}

// GetProfile returns the account without its password hash
func (s *userService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
