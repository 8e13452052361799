// Package config provides configuration for the expo CLI and HTTP host.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/expo/internal/engine"
)

// Config holds every tunable of the expo binary.
type Config struct {
	Estimator EstimatorConfig `koanf:"estimator"`
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
}

// EstimatorConfig holds the service-time projection constants.
type EstimatorConfig struct {
	BaseServiceMinutes int `koanf:"base_service_minutes"`
	FireSpacingMinutes int `koanf:"fire_spacing_minutes"`
	InterCourseMinutes int `koanf:"inter_course_minutes"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `koanf:"path"` // empty: commands work from the floor file alone
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Estimator: EstimatorConfig{
			BaseServiceMinutes: engine.DefaultBaseServiceMinutes,
			FireSpacingMinutes: engine.DefaultFireSpacingMinutes,
			InterCourseMinutes: engine.DefaultInterCourseMinutes,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Any estimator constant is negative (negative spacing would break
//     estimate monotonicity)
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - Log level or format is unknown
func (c *Config) Validate() error {
	var errs []error

	if c.Estimator.BaseServiceMinutes < 0 {
		errs = append(errs, fmt.Errorf("estimator.base_service_minutes must not be negative: %d", c.Estimator.BaseServiceMinutes))
	}
	if c.Estimator.FireSpacingMinutes < 0 {
		errs = append(errs, fmt.Errorf("estimator.fire_spacing_minutes must not be negative: %d", c.Estimator.FireSpacingMinutes))
	}
	if c.Estimator.InterCourseMinutes < 0 {
		errs = append(errs, fmt.Errorf("estimator.inter_course_minutes must not be negative: %d", c.Estimator.InterCourseMinutes))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Engine converts the estimator section for the engine.
func (c EstimatorConfig) Engine() engine.Estimator {
	return engine.Estimator{
		BaseServiceMinutes: c.BaseServiceMinutes,
		FireSpacingMinutes: c.FireSpacingMinutes,
		InterCourseMinutes: c.InterCourseMinutes,
	}
}

// Addr returns host:port for net/http.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
}
