package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"circlecrates/internal/engine"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error      string  `json:"error"`
	Message    string  `json:"message,omitempty"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after_seconds,omitempty"`
}

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// EngineError maps engine error kinds to HTTP statuses. A partial open
// still carries a result body; callers pass it through as data.
func EngineError(w http.ResponseWriter, err error) {
	var cooldown *engine.CooldownError
	var claimed *engine.AlreadyClaimedError

	switch {
	case errors.As(err, &cooldown):
		JSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:      http.StatusText(http.StatusTooManyRequests),
			Message:    err.Error(),
			Code:       http.StatusTooManyRequests,
			RetryAfter: cooldown.Remaining.Seconds(),
		})
	case errors.As(err, &claimed):
		JSON(w, http.StatusConflict, ErrorResponse{
			Error:      http.StatusText(http.StatusConflict),
			Message:    err.Error(),
			Code:       http.StatusConflict,
			RetryAfter: claimed.UntilReset.Seconds(),
		})
	case errors.Is(err, engine.ErrInvalidArgument), errors.Is(err, engine.ErrUnknownCrate):
		BadRequest(w, err)
	case errors.Is(err, engine.ErrInsufficientCrates), errors.Is(err, engine.ErrInsufficientFunds):
		Error(w, http.StatusConflict, err)
	case errors.Is(err, engine.ErrNotFound):
		NotFound(w, err)
	case errors.Is(err, engine.ErrForbidden):
		Error(w, http.StatusForbidden, err)
	case errors.Is(err, engine.ErrLeaderboardUnavailable):
		Error(w, http.StatusServiceUnavailable, err)
	default:
		InternalError(w, err)
	}
}
