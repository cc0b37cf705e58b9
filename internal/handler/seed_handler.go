package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

// SeedHandler exposes development tooling that fills a planner with demo data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/demo", h.demo)
}

func (h *SeedHandler) demo(c *fiber.Ctx) error {
	result, err := h.service.SeedDemo(c.UserContext(), c.Get("X-Seed-Token"), currentUser(c))
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "demo planner seeded", result)
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	default:
		return respondError(c, h.logger, err)
	}
}
