package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: assignments,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/cycle-status", h.cycleStatus)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	var query dto.AssignmentListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	assignments, err := h.service.List(c.UserContext(), currentUser(c), query)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	assignment, err := h.service.Create(c.UserContext(), currentUser(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	assignment, err := h.service.Update(c.UserContext(), currentUser(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) cycleStatus(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.CycleStatus(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment status changed", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}
