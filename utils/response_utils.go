package utils

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

// RespondWithError sends a JSON error response.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// RespondWithErrors sends a JSON error response listing every problem found.
func RespondWithErrors(c *fiber.Ctx, statusCode int, message string, details []string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"errors":  details,
	})
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// FormatValidationErrors formats validation errors from validator/v10.
// Any other error is returned as its message.
func FormatValidationErrors(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		element := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			element = fmt.Sprintf("%s (value: %s)", element, fe.Param())
		}
		messages = append(messages, element)
	}
	return messages
}

var strict = bluemonday.StrictPolicy()

// SanitizeInput trims s and strips any HTML from it. Entities produced by the
// stripping are decoded again so plain text round-trips unchanged.
func SanitizeInput(s string) string {
	return html.UnescapeString(strict.Sanitize(strings.TrimSpace(s)))
}

// SanitizeOptional applies SanitizeInput to a present value.
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeInput(*s)
	return &v
}
