package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/planner-go-api/internal/config"
	"github.com/noah-isme/planner-go-api/internal/handler"
	"github.com/noah-isme/planner-go-api/internal/store"
)

type healthEnvelope struct {
	Success bool                   `json:"success"`
	Data    handler.HealthResponse `json:"data"`
	Details handler.HealthResponse `json:"details"`
}

func healthRequest(t *testing.T, cfg config.Config, probes ...handler.HealthProbe) (int, healthEnvelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg, probes...))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to execute request: %v", err)
	}

	var payload healthEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{
		AppName:     "Planner API",
		AppEnv:      "test",
		StoreDriver: config.StoreDriverSQLite,
	}

	db, err := gorm.Open(sqlite.Open("file:health?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	docs := store.Instrument(store.NewGormStore(db), nil)
	pinger, ok := docs.(store.Pinger)
	require.True(t, ok)

	status, payload := healthRequest(t, cfg, handler.HealthProbe{Name: "store", Check: pinger.Ping})

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Data.Status)
	assert.Equal(t, cfg.AppName, payload.Data.Service)
	assert.Equal(t, cfg.AppEnv, payload.Data.Environment)
	assert.Equal(t, "sqlite", payload.Data.Store)
	assert.Equal(t, map[string]string{"store": "ok"}, payload.Data.Checks)
	assert.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestHealthCheckReportsFailingDependency(t *testing.T) {
	cfg := config.Config{AppName: "Planner API", StoreDriver: config.StoreDriverMongo}

	status, payload := healthRequest(t, cfg,
		handler.HealthProbe{Name: "store", Check: func(context.Context) error { return nil }},
		handler.HealthProbe{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.False(t, payload.Success)
	assert.Equal(t, "degraded", payload.Details.Status)
	assert.Equal(t, "mongo", payload.Details.Store)
	assert.Equal(t, "ok", payload.Details.Checks["store"])
	assert.Equal(t, "connection refused", payload.Details.Checks["redis"])
}
