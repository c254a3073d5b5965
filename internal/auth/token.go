package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultExpiry is used when no token lifetime is configured
const DefaultExpiry = 24 * time.Hour

// ErrEmptySecret is returned when a token would be signed or verified with
// an empty key
var ErrEmptySecret = errors.New("jwt secret is empty")

// Claims represents the JWT claims carried by a session token
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a TokenManager signing with secret
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry}
}

// Expiry returns the lifetime of issued tokens
func (m *TokenManager) Expiry() time.Duration {
	return m.expiry
}

// Generate issues a token for user
func (m *TokenManager) Generate(user *domain.User) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrEmptySecret
	}

	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Parse verifies signature and expiry. Failures are *Error values with
// reason ExpiredToken or InvalidToken.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, &Error{Reason: ReasonInvalidToken, Err: ErrEmptySecret}
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &Error{Reason: ReasonExpiredToken, Err: err}
		}
		return nil, &Error{Reason: ReasonInvalidToken, Err: err}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &Error{Reason: ReasonInvalidToken}
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value. An
// empty header, or a bare "Bearer" scheme, is a missing token.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", &Error{Reason: ReasonInvalidToken, Err: errors.New("authorization scheme is not Bearer")}
	}

	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}
