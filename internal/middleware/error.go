package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/database"

	"go.uber.org/zap"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Count   *int         `json:"count,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse is the shape of a failed response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// RespondWithAuthError sends a 401 whose message depends on the failure reason
func RespondWithAuthError(w http.ResponseWriter, err *auth.Error) {
	RespondWithErrorDetails(w, http.StatusUnauthorized, err.Message(), map[string]interface{}{
		"reason": string(err.Reason),
	})
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithStoreError maps a store error onto a status code. Constraint
// violations are client errors; connectivity faults are 503; anything else
// is logged and reported as a generic 500.
func RespondWithStoreError(w http.ResponseWriter, err error, logger *zap.Logger) {
	err = database.Classify(err)

	switch {
	case errors.Is(err, database.ErrUniqueViolation):
		RespondWithError(w, http.StatusBadRequest, "Duplicate entry. This record already exists.")
	case errors.Is(err, database.ErrForeignKeyViolation):
		RespondWithError(w, http.StatusBadRequest, "Invalid reference. Related record does not exist.")
	case errors.Is(err, database.ErrConstraintViolation):
		RespondWithError(w, http.StatusBadRequest, "Invalid data. A constraint was violated.")
	case errors.Is(err, database.ErrStoreUnavailable):
		logger.Error("Store unavailable", zap.Error(err))
		RespondWithError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		logger.Error("Unexpected store error", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondWithData sends a successful envelope carrying data
func RespondWithData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	RespondWithJSON(w, statusCode, Response{Success: true, Message: message, Data: data})
}

// RespondWithList sends a successful envelope carrying a collection and its size
func RespondWithList(w http.ResponseWriter, data interface{}, count int) {
	RespondWithJSON(w, http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

// RespondWithMessage sends a successful envelope with only a message
func RespondWithMessage(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, Response{Success: true, Message: message})
}
