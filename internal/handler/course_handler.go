package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

// CourseHandler wires course HTTP routes.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: courses,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.UserContext(), currentUser(c), c.Query("semester_id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	course, err := h.service.Create(c.UserContext(), currentUser(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	course, err := h.service.Update(c.UserContext(), currentUser(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}
