package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lensfolio/api-gateway/internal/media"
	"lensfolio/api-gateway/utils"
)

// UploadMedia godoc
// @Summary Upload project media
// @Description Stores an image or video in the media bucket and returns its public URL.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image or video"
// @Success 201 {object} SuccessResponse "data: {url}"
// @Failure 400 {object} ErrorResponse "No file"
// @Failure 415 {object} ErrorResponse "Not an image or video"
// @Failure 502 {object} ErrorResponse "Storage failure"
// @Router /admin/media [post]
func (h *ApplicationHandler) UploadMedia(c *fiber.Ctx) error {
	if h.Media == nil {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Media storage is not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.Logger.Errorf("Error getting file from request: %v", err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Error getting file: %v", err))
	}

	fileHandle, err := file.Open()
	if err != nil {
		h.Logger.Errorf("Error opening file: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error opening file: %v", err))
	}
	defer fileHandle.Close()

	url, err := h.Media.Upload(c.UserContext(), file.Filename, file.Header.Get(fiber.HeaderContentType), fileHandle)
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return utils.RespondWithError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case err != nil:
		return h.respondStoreError(c, "Media", err)
	}

	h.Logger.WithField("url", url).Infof("Uploaded %s (%d bytes)", file.Filename, file.Size)
	return utils.RespondWithJSON(c, fiber.StatusCreated, fiber.Map{"url": url})
}
