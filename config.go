package slidebase

import (
	"fmt"
	"time"

	"github.com/dracory/env"
	"github.com/dracory/slidebase/shared/constants"
	"github.com/dracory/slidebase/shared/types"
)

// LoadConfig reads .env and the environment with sensible defaults.
// Command-line flags are applied on top by the caller.
func LoadConfig() (types.Config, error) {
	var cfg types.Config

	// Optionally load from .env files (missing files are ignored inside the lib)
	env.Load(".env")

	cfg.HTTPPort = env.GetIntOrDefault("HTTP_PORT", constants.DefaultHTTPPort)
	cfg.BasePath = env.GetStringOrDefault("BASE_URL", constants.DefaultBasePath)
	cfg.SessionSecret = env.GetStringOrDefault("SESSION_SECRET", "dev-insecure-change-me")
	cfg.ActionParam = env.GetStringOrDefault("ACTION_PARAM", constants.DefaultActionParam)

	cfg.APIBaseURL = env.GetStringOrDefault("API_BASE_URL", constants.DefaultAPIBaseURL)
	cfg.APITimeout = time.Duration(env.GetIntOrDefault("API_TIMEOUT", 0)) * time.Second

	cfg.FileManagement = env.GetBoolOrDefault("FILE_MANAGEMENT", true)
	cfg.UnionColumns = env.GetBoolOrDefault("UNION_COLUMNS", false)
	cfg.DisplayTimezone = env.GetStringOrDefault("DISPLAY_TIMEZONE", "")

	cfg.DevAPIPort = env.GetIntOrDefault("DEVAPI_PORT", constants.DefaultDevAPIPort)
	cfg.DevAPIDriver = env.GetStringOrDefault("DEVAPI_DRIVER", constants.DefaultDevDriver)
	cfg.DevAPIDSN = env.GetStringOrDefault("DEVAPI_DSN", constants.DefaultDevDSN)

	return cfg, Validate(cfg)
}

// Validate checks the settings the admin handler cannot run without.
func Validate(cfg types.Config) error {
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.APITimeout < 0 {
		return fmt.Errorf("API_TIMEOUT must not be negative")
	}
	if cfg.DisplayTimezone != "" {
		if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
			return fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
		}
	}
	return nil
}
