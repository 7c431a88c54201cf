package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "migios"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App     AppConfig
	Redis   RedisConfig
	CoreAPI CoreAPIConfig
	JWT     JWTConfig
	Draft   DraftConfig
	CORS    CORSConfig
	Search  SearchConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.CoreAPI.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MIGIOS_APP_ENV" required:"true"`
	Port         string `envconfig:"MIGIOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MIGIOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MIGIOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"MIGIOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MIGIOS_REDIS_ADDR"`
	Password     string        `envconfig:"MIGIOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MIGIOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MIGIOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MIGIOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MIGIOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MIGIOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MIGIOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CoreAPIConfig points the console at the core gym-management API.
type CoreAPIConfig struct {
	BaseURL string        `envconfig:"MIGIOS_CORE_API_BASE_URL" required:"true"`
	Token   string        `envconfig:"MIGIOS_CORE_API_TOKEN"`
	Timeout time.Duration `envconfig:"MIGIOS_CORE_API_TIMEOUT" default:"15s"`
}

func (c CoreAPIConfig) validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("core api base url is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("core api base url must be http(s)")
	}
	return nil
}

type JWTConfig struct {
	Secret string `envconfig:"MIGIOS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MIGIOS_JWT_ISSUER" default:"migios"`
}

// DraftConfig bounds the server-held checkout drafts.
type DraftConfig struct {
	TTL             time.Duration `envconfig:"MIGIOS_DRAFT_TTL" default:"168h"`
	DefaultTerminal string        `envconfig:"MIGIOS_DRAFT_DEFAULT_TERMINAL" default:"console"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MIGIOS_CORS_ALLOWED_ORIGINS" default:"*"`
}

// SearchConfig tunes typeahead behavior.
type SearchConfig struct {
	PageSize int           `envconfig:"MIGIOS_SEARCH_PAGE_SIZE" default:"10"`
	CacheTTL time.Duration `envconfig:"MIGIOS_SEARCH_CACHE_TTL" default:"30s"`
}
