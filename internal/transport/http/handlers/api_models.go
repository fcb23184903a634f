package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error payload with the request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Get("request_id")
	requestIDStr, _ := requestID.(string)

	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestIDStr,
	}
}

// SignupRequest defines the payload for the signup endpoint. Fields are
// validated by the service so missing values get specific messages instead
// of a generic binding error.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse describes a successful signup.
type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// SigninRequest defines the payload for the signin endpoint.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse carries the issued token pair.
type SigninResponse struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
