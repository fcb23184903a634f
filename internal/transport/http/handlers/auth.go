package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/2003abdulhadi/clypsy-website/internal/infra/logger"
	"github.com/2003abdulhadi/clypsy-website/internal/infra/security"
	"github.com/2003abdulhadi/clypsy-website/internal/usecase"
)

// AuthHandler exposes the signup and signin endpoints.
type AuthHandler struct {
	auth   *usecase.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: auth, logger: log}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.signup)
	r.POST("/signin", h.signin)
}

func (h *AuthHandler) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid request payload."))
		return
	}

	user, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var vErr *security.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, vErr.Message))
			return
		}

		h.logger.Error("signup failed",
			zap.String("email", logger.MaskEmail(req.Email)),
			zap.Error(err),
		)

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "Email already in use."},
			{Err: usecase.ErrEmailLookup, Status: http.StatusInternalServerError, Message: "Database error while validating email."},
		}, http.StatusInternalServerError, "Error creating user.")
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		Message: "User created successfully.",
		UserID:  user.ID,
	})
}

func (h *AuthHandler) signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid request payload."))
		return
	}

	user, pair, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var vErr *security.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, vErr.Message))
			return
		}

		if !errors.Is(err, usecase.ErrInvalidCredentials) {
			h.logger.Error("signin failed",
				zap.String("email", logger.MaskEmail(req.Email)),
				zap.Error(err),
			)
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid credentials."},
		}, http.StatusInternalServerError, "Error during sign in.")
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
