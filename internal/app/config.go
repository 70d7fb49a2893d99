package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":3000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	// RoutePolicy selects which of the two deployed route tables is active:
	// "disjoint" keeps the admin surface separate from the employee catalog,
	// "admin-inherits" grants admins the employee movie permissions as well.
	RoutePolicy string `envconfig:"ROUTE_POLICY" default:"disjoint"`

	UsersAPIURL   string `envconfig:"USERS_API_URL" default:"http://localhost:8080/api/users"`
	MembersAPIURL string `envconfig:"MEMBERS_API_URL" default:"http://localhost:8081/api/members"`
	CastsAPIURL   string `envconfig:"CASTS_API_URL" default:"http://localhost:8082/api/casts"`
	FilmsAPIURL   string `envconfig:"FILMS_API_URL" default:"http://localhost:8083/api/films"`

	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"10m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.RoutePolicy != "disjoint" && cfg.RoutePolicy != "admin-inherits" {
		return nil, errors.New("route policy must be disjoint or admin-inherits")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
