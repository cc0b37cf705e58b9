package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/middleware"
	"github.com/noah-isme/planner-go-api/internal/models"
	"github.com/noah-isme/planner-go-api/internal/repository"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

// fieldError is the detail payload of a rejected request.
type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func currentUser(c *fiber.Ctx) string {
	return middleware.UserID(c)
}

func idParam(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return "", errors.New("invalid identifier")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", errors.New("invalid identifier")
		}
	}
	return id, nil
}

// respondError maps service and repository errors onto HTTP statuses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		validationErr  *models.ValidationError
		validationErrs validator.ValidationErrors
		fiberErr       *fiber.Error
	)

	switch {
	case errors.Is(err, repository.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrSemesterNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &validationErr):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid request", fieldError{Field: validationErr.Field, Reason: validationErr.Reason})
	case errors.As(err, &validationErrs):
		details := make([]fieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fieldError{Field: fe.Field(), Reason: fe.Tag()})
		}
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", details)
	case errors.As(err, &fiberErr):
		return utils.SendError(c, fiberErr.Code, fiberErr.Message)
	default:
		reqLogger := middleware.RequestLogger(logger, c)
		reqLogger.Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func invalidBody(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
}
