package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/planner-go-api/internal/config"
	"github.com/noah-isme/planner-go-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// HealthProbe checks one backing dependency, such as the document store.
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Store       string            `json:"store"`
	Checks      map[string]string `json:"checks"`
}

// HealthCheck reports the configured store driver and the result of every
// probe. Any failing probe turns the answer into a 503 with status "degraded".
func HealthCheck(cfg config.Config, probes ...HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Store:       cfg.StoreDriver,
			Checks:      make(map[string]string, len(probes)),
		}

		for _, probe := range probes {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
			err := probe.Check(ctx)
			cancel()

			if err != nil {
				payload.Status = "degraded"
				payload.Checks[probe.Name] = err.Error()
				continue
			}
			payload.Checks[probe.Name] = "ok"
		}

		if payload.Status != "ok" {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
