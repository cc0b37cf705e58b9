package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/planner-go-api/internal/planner"
)

// Supported document store backends.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMongo    = "mongo"
)

// Config holds runtime configuration values for the planner API.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	StoreDriver       string
	DatabaseURL       string
	MongoURI          string
	MongoDatabase     string
	RedisURL          string
	DashboardCacheTTL time.Duration
	JWTSecret         string
	AllowedUserID     string
	CORSOrigins       []string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	NATSURL           string
	NATSSubjectPrefix string
	Location          *time.Location
	GradeScale        planner.GradeScale
	StatusRefreshCron string
	SeedEnabled       bool
	SeedToken         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from PLANNER_* environment variables and an
// optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PLANNER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Planner API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("database.url", "file:planner.db?_busy_timeout=5000")
	v.SetDefault("mongo.database", "planner")
	v.SetDefault("dashboard.cache_ttl", "2m")
	v.SetDefault("ratelimit.max", 120)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("nats.subject_prefix", "planner")
	v.SetDefault("planner.timezone", "UTC")
	v.SetDefault("planner.gpa_scale", planner.RoundedScale.Name)
	v.SetDefault("seed.enabled", false)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	ttl, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("ratelimit.window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("planner.timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid planner timezone: %w", err)
	}

	scale, err := planner.ParseGradeScale(v.GetString("planner.gpa_scale"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid gpa scale: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		StoreDriver:       strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		DatabaseURL:       v.GetString("database.url"),
		MongoURI:          v.GetString("mongo.uri"),
		MongoDatabase:     v.GetString("mongo.database"),
		RedisURL:          v.GetString("redis.url"),
		DashboardCacheTTL: ttl,
		JWTSecret:         v.GetString("jwt.secret"),
		AllowedUserID:     strings.TrimSpace(v.GetString("auth.allowed_user_id")),
		CORSOrigins:       splitList(v.GetString("cors.origins")),
		RateLimitMax:      v.GetInt("ratelimit.max"),
		RateLimitWindow:   window,
		NATSURL:           v.GetString("nats.url"),
		NATSSubjectPrefix: v.GetString("nats.subject_prefix"),
		Location:          location,
		GradeScale:        scale,
		StatusRefreshCron: strings.TrimSpace(v.GetString("status_refresh.cron")),
		SeedEnabled:       v.GetBool("seed.enabled"),
		SeedToken:         v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for the %s store", cfg.StoreDriver)
		}
	case StoreDriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("mongo uri must be provided for the mongo store")
		}
	default:
		return Config{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
