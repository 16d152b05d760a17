package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"lensfolio/api-gateway/internal/auth"
	"lensfolio/api-gateway/internal/health"
	"lensfolio/api-gateway/internal/media"
	"lensfolio/api-gateway/internal/repository"
	"lensfolio/api-gateway/internal/timeout"
	"lensfolio/api-gateway/internal/worker"
	"lensfolio/api-gateway/middleware"
	"lensfolio/api-gateway/utils"
)

// Store error codes that mean the caller may not perform the write.
const (
	codeInsufficientPrivilege = "42501"
	codeJWTInvalid            = "PGRST301"
)

// RestClientFactory builds a store client that acts as the holder of accessToken.
type RestClientFactory func(accessToken string) (*postgrest.Client, error)

// JobSubmitter queues background work.
type JobSubmitter interface {
	SubmitJob(job worker.Job) error
}

// AuthService is what the auth handlers and session gate need.
type AuthService interface {
	middleware.SessionChecker
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
	Logout(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*auth.User, error)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Repo       *repository.Repository
	RestClient RestClientFactory
	Auth       AuthService
	Media      *media.Store
	Jobs       JobSubmitter
	Health     *health.Reporter
	Logger     *logrus.Logger

	validate *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
// Media, Jobs, Health and RestClient may be left nil on the returned value.
func NewApplicationHandler(repo *repository.Repository, authService AuthService, logger *logrus.Logger) *ApplicationHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ApplicationHandler{
		Repo:     repo,
		Auth:     authService,
		Logger:   logger,
		validate: validator.New(),
	}
}

// writer returns the repository to use for admin writes: bound to the
// caller's session when a client factory is configured.
func (h *ApplicationHandler) writer(c *fiber.Ctx) (*repository.Repository, error) {
	token := middleware.AccessToken(c)
	if h.RestClient == nil || token == "" {
		return h.Repo, nil
	}
	client, err := h.RestClient(token)
	if err != nil {
		return nil, err
	}
	return h.Repo.WithClient(client), nil
}

// validateBody runs struct validation and writes a 400 on failure.
func (h *ApplicationHandler) validateBody(c *fiber.Ctx, v interface{}) (bool, error) {
	if err := h.validate.Struct(v); err != nil {
		return false, utils.RespondWithErrors(c, fiber.StatusBadRequest, "Validation failed", utils.FormatValidationErrors(err))
	}
	return true, nil
}

// respondStoreError maps a repository failure onto an HTTP status.
func (h *ApplicationHandler) respondStoreError(c *fiber.Ctx, what string, err error) error {
	var se *repository.StoreError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.RespondWithError(c, fiber.StatusNotFound, what+" not found")
	case errors.Is(err, timeout.ErrTimeout):
		return utils.RespondWithError(c, fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return utils.RespondWithError(c, fiber.StatusGatewayTimeout, "Request deadline exceeded")
	case errors.As(err, &se) && (se.Code == codeInsufficientPrivilege || se.Code == codeJWTInvalid):
		return utils.RespondWithError(c, fiber.StatusForbidden, se.Error())
	case errors.As(err, &se):
		return utils.RespondWithError(c, fiber.StatusBadGateway, se.Error())
	default:
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
}

// cleanup queues removal of media that is no longer referenced.
func (h *ApplicationHandler) cleanup(projectID string, urls []string) {
	if h.Media == nil || h.Jobs == nil || len(urls) == 0 {
		return
	}
	job := media.CleanupJob{Store: h.Media, Project: projectID, URLs: urls}
	if h.Repo != nil {
		job.Refs = h.Repo
	}
	if err := h.Jobs.SubmitJob(job); err != nil {
		h.Logger.WithField("project", projectID).Warnf("Media cleanup not queued: %v", err)
	}
}
