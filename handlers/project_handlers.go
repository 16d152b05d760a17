package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lensfolio/api-gateway/internal/media"
	"lensfolio/api-gateway/models"
	"lensfolio/api-gateway/utils"
)

// ProjectSuccessResponse defines the structure for a successful response for a single project.
type ProjectSuccessResponse struct {
	Status string         `json:"status"`
	Data   models.Project `json:"data"`
}

// ProjectListSuccessResponse defines the structure for a successful response when listing projects.
type ProjectListSuccessResponse struct {
	Status string           `json:"status"`
	Data   []models.Project `json:"data"`
}

// SuccessResponse is the envelope of every other successful response.
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// GetProjects godoc
// @Summary List projects
// @Description Lists every project, newest first. view=summary (default) omits images and videos; view=full includes them.
// @Tags projects
// @Produce json
// @Param view query string false "summary or full" Enums(summary, full)
// @Success 200 {object} ProjectListSuccessResponse
// @Failure 400 {object} ErrorResponse "Unknown view"
// @Failure 502 {object} ErrorResponse "Store failure"
// @Failure 504 {object} ErrorResponse "Store timeout"
// @Router /projects [get]
func (h *ApplicationHandler) GetProjects(c *fiber.Ctx) error {
	var (
		projects []models.Project
		err      error
	)
	switch view := c.Query("view", "summary"); view {
	case "summary":
		projects, err = h.Repo.ListProjectSummaries(c.UserContext())
	case "full":
		projects, err = h.Repo.ListProjectsFull(c.UserContext())
	default:
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown view %q, use summary or full", view))
	}
	if err != nil {
		return h.respondStoreError(c, "Projects", err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, projects)
}

// GetProject godoc
// @Summary Get a project
// @Description Returns one project with its images and videos in display order.
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectSuccessResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 502 {object} ErrorResponse "Store failure"
// @Failure 504 {object} ErrorResponse "Store timeout"
// @Router /projects/{id} [get]
func (h *ApplicationHandler) GetProject(c *fiber.Ctx) error {
	projectID := c.Params("id")
	project, err := h.Repo.GetProject(c.UserContext(), projectID)
	if err != nil {
		return h.respondStoreError(c, "Project", err)
	}
	if project == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// CreateProject godoc
// @Summary Create a project
// @Description Creates a project together with its ordered images and videos.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project body models.NewProject true "Project to create"
// @Success 201 {object} ProjectSuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Failure 502 {object} ErrorResponse "Store failure"
// @Router /admin/projects [post]
func (h *ApplicationHandler) CreateProject(c *fiber.Ctx) error {
	var in models.NewProject
	if err := c.BodyParser(&in); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse project JSON: %v", err))
	}
	sanitizeNewProject(&in)
	if ok, err := h.validateBody(c, &in); !ok {
		return err
	}

	repo, err := h.writer(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	project, err := repo.CreateProject(c.UserContext(), in)
	if err != nil {
		return h.respondStoreError(c, "Project", err)
	}
	h.Logger.WithField("project", project.ID).Info("Project created")
	return utils.RespondWithJSON(c, fiber.StatusCreated, project)
}

// UpdateProject godoc
// @Summary Update a project
// @Description Applies the given fields. images or videos, when present, replace the whole collection.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param project body models.ProjectUpdate true "Fields to change"
// @Success 200 {object} ProjectSuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 502 {object} ErrorResponse "Store failure"
// @Router /admin/projects/{id} [patch]
func (h *ApplicationHandler) UpdateProject(c *fiber.Ctx) error {
	projectID := c.Params("id")

	var u models.ProjectUpdate
	if err := c.BodyParser(&u); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse project JSON: %v", err))
	}
	sanitizeProjectUpdate(&u)
	if ok, err := h.validateBody(c, &u); !ok {
		return err
	}

	var before *models.Project
	if touchesMedia(u) && h.Media != nil {
		if p, err := h.Repo.GetProject(c.UserContext(), projectID); err == nil {
			before = p
		}
	}

	repo, err := h.writer(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	project, err := repo.UpdateProject(c.UserContext(), projectID, u)
	if err != nil {
		return h.respondStoreError(c, "Project", err)
	}
	if project == nil {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
	}

	if before != nil {
		h.cleanup(projectID, media.Unreferenced(mediaOf(before), mediaOf(project)))
	}
	h.Logger.WithField("project", projectID).Info("Project updated")
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Deletes a project; its images and videos go with it.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 502 {object} ErrorResponse "Store failure"
// @Router /admin/projects/{id} [delete]
func (h *ApplicationHandler) DeleteProject(c *fiber.Ctx) error {
	projectID := c.Params("id")

	var before *models.Project
	if h.Media != nil {
		if p, err := h.Repo.GetProject(c.UserContext(), projectID); err == nil {
			before = p
		}
	}

	repo, err := h.writer(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	deleted, err := repo.DeleteProject(c.UserContext(), projectID)
	if err != nil {
		return h.respondStoreError(c, "Project", err)
	}
	if !deleted {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Project not found")
	}

	if before != nil {
		h.cleanup(projectID, mediaOf(before))
	}
	h.Logger.WithField("project", projectID).Info("Project deleted")
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"id": projectID, "deleted": true})
}

func touchesMedia(u models.ProjectUpdate) bool {
	return u.Images != nil || u.Videos != nil || u.CoverImage != nil
}

// mediaOf lists every media URL a project refers to.
func mediaOf(p *models.Project) []string {
	urls := make([]string, 0, 1+len(p.Images)+len(p.Videos))
	if p.CoverImage != "" {
		urls = append(urls, p.CoverImage)
	}
	urls = append(urls, p.Images...)
	return append(urls, p.Videos...)
}

func sanitizeNewProject(p *models.NewProject) {
	p.Title = utils.SanitizeInput(p.Title)
	p.TitleEn = utils.SanitizeInput(p.TitleEn)
	p.Tag = utils.SanitizeInput(p.Tag)
	p.TagEn = utils.SanitizeInput(p.TagEn)
	p.Description = utils.SanitizeInput(p.Description)
	p.DescriptionEn = utils.SanitizeInput(p.DescriptionEn)
	p.Icon = utils.SanitizeInput(p.Icon)
	p.CoverImage = strings.TrimSpace(p.CoverImage)
	p.Images = trimAll(p.Images)
	p.Videos = trimAll(p.Videos)
}

func sanitizeProjectUpdate(u *models.ProjectUpdate) {
	u.Title = utils.SanitizeOptional(u.Title)
	u.TitleEn = utils.SanitizeOptional(u.TitleEn)
	u.Tag = utils.SanitizeOptional(u.Tag)
	u.TagEn = utils.SanitizeOptional(u.TagEn)
	u.Description = utils.SanitizeOptional(u.Description)
	u.DescriptionEn = utils.SanitizeOptional(u.DescriptionEn)
	u.Icon = utils.SanitizeOptional(u.Icon)
	if u.CoverImage != nil {
		v := strings.TrimSpace(*u.CoverImage)
		u.CoverImage = &v
	}
	if u.Images != nil {
		v := trimAll(*u.Images)
		u.Images = &v
	}
	if u.Videos != nil {
		v := trimAll(*u.Videos)
		u.Videos = &v
	}
}

func trimAll(urls []string) []string {
	if urls == nil {
		return nil
	}
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = strings.TrimSpace(u)
	}
	return out
}
