package transport

import (
	"errors"
	"net/http"

	"shop-api/internal/auth"
	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles account registration, login and profile lookups
type AuthHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes mounts /api/auth. limiter guards the credential endpoints
// and may be nil.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authn *middleware.Authenticator, limiter func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.With(authn.Required).Get("/me", h.Me)
	})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err, "Please provide username, email and password")
		return
	}

	session, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusBadRequest, "User already exists")
			return
		}
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	h.logger.Info("User registered successfully", zap.Int64("user_id", session.User.ID))
	middleware.RespondWithData(w, http.StatusCreated, "User registered successfully", session)
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err, "Please provide email and password")
		return
	}

	session, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	h.logger.Info("User logged in successfully", zap.Int64("user_id", session.User.ID))
	middleware.RespondWithData(w, http.StatusOK, "Login successful", session)
}

// Me returns the profile of the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithAuthError(w, auth.ErrMissingToken)
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		middleware.RespondWithStoreError(w, err, h.logger)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", user)
}
