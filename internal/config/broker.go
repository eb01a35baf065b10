package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// EnvBrokerAddrs overrides the broker address list (comma-separated).
	EnvBrokerAddrs = "BROKER_ADDRS"

	// EnvBrokerTopic overrides the like event topic.
	EnvBrokerTopic = "BROKER_TOPIC"
)

// BrokerConfig contains message broker configuration for event delivery.
type BrokerConfig struct {
	Addrs          []string `toml:"addrs"`
	Topic          string   `toml:"topic"`
	Attempts       int      `toml:"attempts"`
	Backoff        string   `toml:"backoff"`
	PublishTimeout string   `toml:"publish_timeout"`
	Buffer         int      `toml:"buffer"`
}

// BackoffDuration parses and returns the retry backoff as a time.Duration.
func (c *BrokerConfig) BackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.Backoff)
	return d
}

// PublishTimeoutDuration parses and returns the per-publish timeout as a time.Duration.
func (c *BrokerConfig) PublishTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PublishTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the broker configuration.
func (c *BrokerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *BrokerConfig) Merge(overlay *BrokerConfig) {
	if len(overlay.Addrs) > 0 {
		c.Addrs = overlay.Addrs
	}
	if overlay.Topic != "" {
		c.Topic = overlay.Topic
	}
	if overlay.Attempts != 0 {
		c.Attempts = overlay.Attempts
	}
	if overlay.Backoff != "" {
		c.Backoff = overlay.Backoff
	}
	if overlay.PublishTimeout != "" {
		c.PublishTimeout = overlay.PublishTimeout
	}
	if overlay.Buffer != 0 {
		c.Buffer = overlay.Buffer
	}
}

func (c *BrokerConfig) loadDefaults() {
	if len(c.Addrs) == 0 {
		c.Addrs = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "likes"
	}
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.Backoff == "" {
		c.Backoff = "1s"
	}
	if c.PublishTimeout == "" {
		c.PublishTimeout = "5s"
	}
	if c.Buffer == 0 {
		c.Buffer = 256
	}
}

func (c *BrokerConfig) loadEnv() {
	if v := os.Getenv(EnvBrokerAddrs); v != "" {
		c.Addrs = strings.Split(v, ",")
	}
	if v := os.Getenv(EnvBrokerTopic); v != "" {
		c.Topic = v
	}
}

func (c *BrokerConfig) validate() error {
	if c.Topic == "" {
		return fmt.Errorf("topic required")
	}
	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be positive")
	}
	for name, value := range map[string]string{
		"backoff":         c.Backoff,
		"publish_timeout": c.PublishTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
