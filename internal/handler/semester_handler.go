package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

// SemesterHandler wires semester HTTP routes, including the calendar feed.
type SemesterHandler struct {
	service  service.SemesterService
	calendar service.CalendarService
	logger   zerolog.Logger
}

// NewSemesterHandler constructs the handler.
func NewSemesterHandler(semesters service.SemesterService, calendar service.CalendarService, logger zerolog.Logger) *SemesterHandler {
	return &SemesterHandler{
		service:  semesters,
		calendar: calendar,
		logger:   logger.With().Str("component", "semester_handler").Logger(),
	}
}

// Register attaches semester endpoints to the router group.
func (h *SemesterHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/calendar.ics", h.calendarFeed)
}

func (h *SemesterHandler) list(c *fiber.Ctx) error {
	semesters, err := h.service.List(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "semesters retrieved", semesters)
}

func (h *SemesterHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	semester, err := h.service.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "semester retrieved", semester)
}

func (h *SemesterHandler) create(c *fiber.Ctx) error {
	var payload dto.SemesterCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	semester, err := h.service.Create(c.UserContext(), currentUser(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "semester created", semester)
}

func (h *SemesterHandler) update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SemesterUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	semester, err := h.service.Update(c.UserContext(), currentUser(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "semester updated", semester)
}

func (h *SemesterHandler) delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "semester deleted", fiber.Map{"id": id})
}

func (h *SemesterHandler) calendarFeed(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feed, err := h.calendar.Export(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "semester-"+id+".ics"))
	return c.SendString(feed)
}
