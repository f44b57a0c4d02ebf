package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// HTTPCfg is configuration of http server
type HTTPCfg struct {
	Port             int           `env:"PORT" envDefault:"3000"`
	StaticDir        string        `env:"STATIC_DIR" envDefault:"public"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CorsAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
}

// MongoCfg is configuration of mongo connection
type MongoCfg struct {
	URI            string        `env:"MONGO_URI,notEmpty,unset"`
	Database       string        `env:"MONGO_DATABASE" envDefault:"contacts-api"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"contacts"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"5s"`
}

// RedisCfg is configuration of redis connection used for contact change events
type RedisCfg struct {
	Addr         string `env:"REDIS_ADDR" envDefault:""`
	Password     string `env:"REDIS_PASSWORD,unset" envDefault:""`
	DB           int    `env:"REDIS_DB" envDefault:"0"`
	Stream       string `env:"REDIS_STREAM" envDefault:"contacts:events"`
	StreamMaxLen int64  `env:"REDIS_STREAM_MAX_LEN" envDefault:"10000"`
}

// Enabled reports whether redis address is configured
func (c RedisCfg) Enabled() bool {
	return c.Addr != ""
}

// LogCfg is configuration of logger
type LogCfg struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Config is application configuration
type Config struct {
	HTTPCfg  HTTPCfg
	MongoCfg MongoCfg
	RedisCfg RedisCfg
	LogCfg   LogCfg
}

// Build reads configuration from environment variables
func Build() (Config, error) {
	var cfg Config
	opts := env.Options{RequiredIfNoDef: true}

	if err := env.Parse(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to parse environment variables - %w", err)
	}

	if cfg.HTTPCfg.Port <= 0 || cfg.HTTPCfg.Port > 65535 {
		return cfg, fmt.Errorf("port %d is out of range", cfg.HTTPCfg.Port)
	}

	switch cfg.LogCfg.Format {
	case "text", "json":
	default:
		return cfg, fmt.Errorf("unsupported log format %q", cfg.LogCfg.Format)
	}

	return cfg, nil
}
