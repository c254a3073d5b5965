package repository

import (
	"context"
	"fmt"

	"shop-api/internal/database"
	"shop-api/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored password
const PasswordCost = 10

// UserRepository defines the interface for user data access.
// Lookups return (nil, nil) when no account matches.
type UserRepository interface {
	Create(ctx context.Context, username, email, password string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	VerifyPassword(plaintext, hash string) bool
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type userRepository struct {
	ex database.Executor
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(ex database.Executor) UserRepository {
	return &userRepository{ex: ex}
}

// Create hashes the password and inserts the account. A duplicate username
// or email yields an error matching database.ErrUniqueViolation.
func (r *userRepository) Create(ctx context.Context, username, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := r.ex.Execute(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
	`, username, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", database.Classify(err))
	}

	return &domain.User{
		ID:       res.ID,
		Username: username,
		Email:    email,
	}, nil
}

func (r *userRepository) findWithHash(ctx context.Context, column, value string) (*domain.User, error) {
	user := &domain.User{}
	found, err := r.ex.FetchOne(ctx, func(row database.RowScanner) error {
		return row.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.CreatedAt,
		)
	}, `SELECT id, username, email, password_hash, created_at FROM users WHERE `+column+` = ?`, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}
	if !found {
		return nil, nil
	}
	return user, nil
}

// FindByEmail retrieves a user, including the password hash, by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findWithHash(ctx, "email", email)
}

// FindByUsername retrieves a user, including the password hash, by username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findWithHash(ctx, "username", username)
}

func scanPublicUser(row database.RowScanner) (*domain.User, error) {
	user := &domain.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a user without the password hash
func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	found, err := r.ex.FetchOne(ctx, func(row database.RowScanner) error {
		u, err := scanPublicUser(row)
		user = u
		return err
	}, `SELECT id, username, email, created_at FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	if !found {
		return nil, nil
	}
	return user, nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt hash
func (r *userRepository) VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// List returns all accounts, newest first, without password hashes
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	err := r.ex.FetchMany(ctx, func(row database.RowScanner) error {
		u, err := scanPublicUser(row)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	}, `SELECT id, username, email, created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Delete removes an account and reports whether anything was deleted
func (r *userRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.ex.Execute(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll removes every account
func (r *userRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.ex.Execute(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}
	return res.RowsAffected, nil
}
