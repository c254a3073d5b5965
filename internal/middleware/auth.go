package middleware

import (
	"context"
	"errors"
	"net/http"

	"shop-api/internal/auth"

	"go.uber.org/zap"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Authenticator verifies bearer tokens and attaches their claims to the
// request context. It never touches the database.
type Authenticator struct {
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthenticator creates an Authenticator backed by tokens
func NewAuthenticator(tokens *auth.TokenManager, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

func (a *Authenticator) authenticate(r *http.Request) (*auth.Claims, error) {
	tokenString, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return a.tokens.Parse(tokenString)
}

// Required rejects requests without a valid token with 401
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.authenticate(r)
		if err != nil {
			var authErr *auth.Error
			if !errors.As(err, &authErr) {
				authErr = &auth.Error{Reason: auth.ReasonInvalidToken, Err: err}
			}

			a.logger.Debug("Authentication failed",
				zap.String("reason", string(authErr.Reason)),
				zap.Error(err),
			)
			RespondWithAuthError(w, authErr)
			return
		}

		a.logger.Debug("User authenticated",
			zap.Int64("user_id", claims.UserID),
			zap.String("username", claims.Username),
		)

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Optional attaches claims when a valid token is present and otherwise
// proceeds with no identity attached
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.authenticate(r)
		if err != nil {
			if !errors.Is(err, auth.ErrMissingToken) {
				a.logger.Debug("Ignoring unusable token", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ClaimsFromContext extracts the authenticated identity, if any
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// GetUserID extracts the authenticated user ID from request context
func GetUserID(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
