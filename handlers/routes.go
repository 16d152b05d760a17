package handlers

import (
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"lensfolio/api-gateway/middleware"
)

// RegisterRoutes mounts every endpoint on app.
func (h *ApplicationHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	apiV1 := app.Group("/api/v1")

	apiV1.Get("/projects", h.GetProjects)
	apiV1.Get("/projects/:id", h.GetProject)
	apiV1.Get("/content/hero", h.GetHeroContent)
	apiV1.Get("/content/footer", h.GetFooterContent)

	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)

	requireSession := middleware.RequireSession(h.Auth)
	authRoutes.Get("/session", requireSession, h.GetSession)
	authRoutes.Get("/user", requireSession, h.GetCurrentUser)
	authRoutes.Post("/logout", requireSession, h.Logout)

	admin := apiV1.Group("/admin", requireSession)
	admin.Post("/projects", h.CreateProject)
	admin.Patch("/projects/:id", h.UpdateProject)
	admin.Delete("/projects/:id", h.DeleteProject)
	admin.Patch("/content/hero", h.UpdateHeroContent)
	admin.Patch("/content/footer", h.UpdateFooterContent)
	admin.Post("/media", h.UploadMedia)
}
