package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lensfolio/api-gateway/models"
	"lensfolio/api-gateway/utils"
)

// GetHeroContent godoc
// @Summary Get hero content
// @Tags content
// @Produce json
// @Success 200 {object} SuccessResponse "data: HeroContent"
// @Failure 404 {object} ErrorResponse "No hero content yet"
// @Failure 504 {object} ErrorResponse "Store timeout"
// @Router /content/hero [get]
func (h *ApplicationHandler) GetHeroContent(c *fiber.Ctx) error {
	hero, err := h.Repo.GetHeroContent(c.UserContext())
	if err != nil {
		return h.respondStoreError(c, "Hero content", err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, hero)
}

// UpdateHeroContent godoc
// @Summary Update hero content
// @Description Only the fields present are written. The row is created on first update.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param content body models.HeroContentUpdate true "Fields to change"
// @Success 200 {object} SuccessResponse "data: HeroContent"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Router /admin/content/hero [patch]
func (h *ApplicationHandler) UpdateHeroContent(c *fiber.Ctx) error {
	var u models.HeroContentUpdate
	if err := c.BodyParser(&u); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse hero content JSON: %v", err))
	}
	for _, f := range []**string{
		&u.Badge, &u.BadgeEn, &u.Title, &u.TitleEn, &u.TitleBreak, &u.TitleBreakEn,
		&u.Description, &u.DescriptionEn, &u.CtaPrimary, &u.CtaPrimaryEn, &u.CtaSecondary, &u.CtaSecondaryEn,
	} {
		*f = utils.SanitizeOptional(*f)
	}

	repo, err := h.writer(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	hero, err := repo.UpdateHeroContent(c.UserContext(), u)
	if err != nil {
		return h.respondStoreError(c, "Hero content", err)
	}
	h.Logger.Info("Hero content updated")
	return utils.RespondWithJSON(c, fiber.StatusOK, hero)
}

// GetFooterContent godoc
// @Summary Get footer content
// @Tags content
// @Produce json
// @Success 200 {object} SuccessResponse "data: FooterContent"
// @Failure 404 {object} ErrorResponse "No footer content yet"
// @Failure 504 {object} ErrorResponse "Store timeout"
// @Router /content/footer [get]
func (h *ApplicationHandler) GetFooterContent(c *fiber.Ctx) error {
	footer, err := h.Repo.GetFooterContent(c.UserContext())
	if err != nil {
		return h.respondStoreError(c, "Footer content", err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, footer)
}

// UpdateFooterContent godoc
// @Summary Update footer content
// @Description Only the fields present are written. The row is created on first update.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param content body models.FooterContentUpdate true "Fields to change"
// @Success 200 {object} SuccessResponse "data: FooterContent"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Not signed in"
// @Router /admin/content/footer [patch]
func (h *ApplicationHandler) UpdateFooterContent(c *fiber.Ctx) error {
	var u models.FooterContentUpdate
	if err := c.BodyParser(&u); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse footer content JSON: %v", err))
	}
	for _, f := range []**string{&u.Title, &u.TitleEn, &u.Description, &u.DescriptionEn, &u.Cta, &u.CtaEn} {
		*f = utils.SanitizeOptional(*f)
	}

	repo, err := h.writer(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	footer, err := repo.UpdateFooterContent(c.UserContext(), u)
	if err != nil {
		return h.respondStoreError(c, "Footer content", err)
	}
	h.Logger.Info("Footer content updated")
	return utils.RespondWithJSON(c, fiber.StatusOK, footer)
}
