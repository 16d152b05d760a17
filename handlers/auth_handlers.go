package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lensfolio/api-gateway/internal/auth"
	"lensfolio/api-gateway/internal/timeout"
	"lensfolio/api-gateway/middleware"
	"lensfolio/api-gateway/utils"
)

// LoginRequest defines the expected request body for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest defines the expected request body for refreshing a session.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Login godoc
// @Summary Sign in
// @Description Signs in an administrator with email and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse "data: Session"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Wrong email or password"
// @Failure 502 {object} ErrorResponse "Auth service unavailable"
// @Failure 504 {object} ErrorResponse "Auth service timeout"
// @Router /auth/login [post]
func (h *ApplicationHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse login JSON: %v", err))
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	session, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondAuthError(c, err)
	}
	h.Logger.WithField("user", session.User.ID).Info("Admin signed in")
	return utils.RespondWithJSON(c, fiber.StatusOK, session)
}

// Refresh godoc
// @Summary Refresh a session
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} SuccessResponse "data: Session"
// @Failure 401 {object} ErrorResponse "Refresh token rejected"
// @Router /auth/refresh [post]
func (h *ApplicationHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse refresh JSON: %v", err))
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	session, err := h.Auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondAuthError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, session)
}

// Logout godoc
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Router /auth/logout [post]
func (h *ApplicationHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), middleware.AccessToken(c)); err != nil {
		return respondAuthError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"signedOut": true})
}

// GetSession godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse "data: Session"
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Router /auth/session [get]
func (h *ApplicationHandler) GetSession(c *fiber.Ctx) error {
	return utils.RespondWithJSON(c, fiber.StatusOK, middleware.CurrentSession(c))
}

// GetCurrentUser godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse "data: User"
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Router /auth/user [get]
func (h *ApplicationHandler) GetCurrentUser(c *fiber.Ctx) error {
	user, err := h.Auth.CurrentUser(c.UserContext(), middleware.AccessToken(c))
	if err != nil {
		return respondAuthError(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}

func respondAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, timeout.ErrTimeout):
		return utils.RespondWithError(c, fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		return utils.RespondWithError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUnavailable):
		return utils.RespondWithError(c, fiber.StatusBadGateway, "Authentication service unavailable")
	default:
		return utils.RespondWithError(c, fiber.StatusBadGateway, err.Error())
	}
}
