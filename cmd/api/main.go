package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/config"
	"github.com/noah-isme/planner-go-api/internal/database"
	"github.com/noah-isme/planner-go-api/internal/events"
	"github.com/noah-isme/planner-go-api/internal/handler"
	"github.com/noah-isme/planner-go-api/internal/middleware"
	"github.com/noah-isme/planner-go-api/internal/observability"
	"github.com/noah-isme/planner-go-api/internal/repository"
	"github.com/noah-isme/planner-go-api/internal/router"
	"github.com/noah-isme/planner-go-api/internal/scheduler"
	"github.com/noah-isme/planner-go-api/internal/service"
	"github.com/noah-isme/planner-go-api/internal/store"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open document store")
	}
	defer closeStore()
	docs = store.Instrument(docs, observability.StoreMetrics{})

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("redis url not configured; dashboard cache disabled")
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	repos := repository.NewFactory(docs, logger)
	broker := events.NewBroker(natsConn, redisClient, cfg.NATSSubjectPrefix, logger)

	dashboardService := service.NewDashboardService(repos, redisClient, cfg.DashboardCacheTTL, cfg.GradeScale, cfg.Location, logger)
	semesterService := service.NewSemesterService(repos, validate, cfg.GradeScale, cfg.Location, broker, dashboardService, logger)
	courseService := service.NewCourseService(repos, validate, cfg.GradeScale, broker, dashboardService, logger)
	assignmentService := service.NewAssignmentService(repos, validate, broker, dashboardService, logger)
	scheduleService := service.NewScheduleService(repos, cfg.Location, logger)
	calendarService := service.NewCalendarService(repos, cfg.Location, logger)
	seedService := service.NewSeedService(semesterService, courseService, assignmentService, cfg.SeedEnabled, cfg.SeedToken, logger)

	if err := broker.Subscribe(ctx, "planner-dashboard", func(event events.Event) {
		dashboardService.Invalidate(ctx, event.UserID)
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to subscribe to change events")
	}

	jobs := scheduler.New(cfg.Location, logger)
	if cfg.StatusRefreshCron != "" {
		if cfg.AllowedUserID == "" {
			logger.Warn().Msg("status refresh cron ignored: auth.allowed_user_id is not set")
		} else if err := jobs.AddStatusRefresh(cfg.StatusRefreshCron, cfg.AllowedUserID, semesterService); err != nil {
			logger.Fatal().Err(err).Msg("invalid status refresh schedule")
		}
	}
	jobs.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		SemesterHandler:   handler.NewSemesterHandler(semesterService, calendarService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, scheduleService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		RateLimiter:       middleware.RateLimit("planner", cfg.RateLimitMax, cfg.RateLimitWindow),
		HealthProbes:      healthProbes(docs, redisClient, natsConn),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("store", cfg.StoreDriver).Msg("planner api listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	shutdown(app, jobs, logger)
}

func openStore(ctx context.Context, cfg config.Config) (store.DocumentStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return store.NewMongoStore(db), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		connect := database.ConnectSQLite
		if cfg.StoreDriver == config.StoreDriverPostgres {
			connect = database.ConnectPostgres
		}
		db, err := connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		gormStore := store.NewGormStore(db)
		if err := gormStore.Migrate(); err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return gormStore, closeDB, nil
	}
}

func healthProbes(docs store.DocumentStore, redisClient *redis.Client, natsConn *nats.Conn) []handler.HealthProbe {
	var probes []handler.HealthProbe
	if pinger, ok := docs.(store.Pinger); ok {
		probes = append(probes, handler.HealthProbe{Name: "store", Check: pinger.Ping})
	}
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	if natsConn != nil {
		probes = append(probes, handler.HealthProbe{Name: "nats", Check: func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("nats " + natsConn.Status().String())
			}
			return nil
		}})
	}
	return probes
}

func shutdown(app *fiber.App, jobs *scheduler.Scheduler, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	jobs.Stop(ctx)
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
