package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvServicesUsersURL overrides the identity service base URL.
	EnvServicesUsersURL = "SERVICES_USERS_URL"

	// EnvServicesCommentsURL overrides the comment service base URL.
	EnvServicesCommentsURL = "SERVICES_COMMENTS_URL"

	// EnvServicesTimeout overrides the downstream call timeout.
	EnvServicesTimeout = "SERVICES_TIMEOUT"
)

// ServicesConfig contains downstream service endpoints.
type ServicesConfig struct {
	UsersURL    string `toml:"users_url"`
	CommentsURL string `toml:"comments_url"`
	Timeout     string `toml:"timeout"`
}

// TimeoutDuration parses and returns the downstream call timeout as a time.Duration.
func (c *ServicesConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the services configuration.
func (c *ServicesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ServicesConfig) Merge(overlay *ServicesConfig) {
	if overlay.UsersURL != "" {
		c.UsersURL = overlay.UsersURL
	}
	if overlay.CommentsURL != "" {
		c.CommentsURL = overlay.CommentsURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *ServicesConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
}

func (c *ServicesConfig) loadEnv() {
	if v := os.Getenv(EnvServicesUsersURL); v != "" {
		c.UsersURL = v
	}
	if v := os.Getenv(EnvServicesCommentsURL); v != "" {
		c.CommentsURL = v
	}
	if v := os.Getenv(EnvServicesTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *ServicesConfig) validate() error {
	if c.UsersURL == "" {
		return fmt.Errorf("users_url required")
	}
	if c.CommentsURL == "" {
		return fmt.Errorf("comments_url required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
