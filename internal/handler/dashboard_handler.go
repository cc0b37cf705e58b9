package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/dto"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

// DashboardHandler serves the planner overview and schedule views.
type DashboardHandler struct {
	dashboard service.DashboardService
	schedule  service.ScheduleService
	logger    zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard service.DashboardService, schedule service.ScheduleService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		schedule:  schedule,
		logger:    logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the overview to dashboard and the week and next class
// views to schedule.
func (h *DashboardHandler) Register(dashboard, schedule fiber.Router) {
	dashboard.Get("", h.overview)
	schedule.Get("/week", h.week)
	schedule.Get("/next-class", h.nextClass)
}

func (h *DashboardHandler) overview(c *fiber.Ctx) error {
	response, err := h.dashboard.Get(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "dashboard retrieved", response)
}

func (h *DashboardHandler) week(c *fiber.Ctx) error {
	var query dto.WeekQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	layout, err := h.schedule.Week(c.UserContext(), currentUser(c), query)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "week retrieved", layout)
}

func (h *DashboardHandler) nextClass(c *fiber.Ctx) error {
	next, err := h.schedule.NextClass(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if next == nil {
		return utils.SendSuccess(c, "no upcoming class", nil)
	}
	return utils.SendSuccess(c, "next class retrieved", next)
}
