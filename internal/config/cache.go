package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// EnvCacheRedisAddr overrides the Redis address.
	EnvCacheRedisAddr = "CACHE_REDIS_ADDR"

	// EnvCacheRedisPassword overrides the Redis password.
	EnvCacheRedisPassword = "CACHE_REDIS_PASSWORD"

	// EnvCacheRedisDB overrides the Redis database index.
	EnvCacheRedisDB = "CACHE_REDIS_DB"
)

// CacheConfig contains two-tier cache configuration. The local tier is an
// in-process LRU; the remote tier is Redis shared across instances.
type CacheConfig struct {
	LocalSize     int    `toml:"local_size"`
	LocalTTL      string `toml:"local_ttl"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	UserTTL       string `toml:"user_ttl"`
	URLTTL        string `toml:"url_ttl"`
}

// LocalTTLDuration parses and returns the local tier TTL as a time.Duration.
func (c *CacheConfig) LocalTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.LocalTTL)
	return d
}

// UserTTLDuration parses and returns the user entry TTL as a time.Duration.
func (c *CacheConfig) UserTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.UserTTL)
	return d
}

// URLTTLDuration parses and returns the signed URL entry TTL as a time.Duration.
func (c *CacheConfig) URLTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.URLTTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the cache configuration.
func (c *CacheConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *CacheConfig) Merge(overlay *CacheConfig) {
	if overlay.LocalSize != 0 {
		c.LocalSize = overlay.LocalSize
	}
	if overlay.LocalTTL != "" {
		c.LocalTTL = overlay.LocalTTL
	}
	if overlay.RedisAddr != "" {
		c.RedisAddr = overlay.RedisAddr
	}
	if overlay.RedisPassword != "" {
		c.RedisPassword = overlay.RedisPassword
	}
	if overlay.RedisDB != 0 {
		c.RedisDB = overlay.RedisDB
	}
	if overlay.UserTTL != "" {
		c.UserTTL = overlay.UserTTL
	}
	if overlay.URLTTL != "" {
		c.URLTTL = overlay.URLTTL
	}
}

func (c *CacheConfig) loadDefaults() {
	if c.LocalSize == 0 {
		c.LocalSize = 1024
	}
	if c.LocalTTL == "" {
		c.LocalTTL = "5m"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.UserTTL == "" {
		c.UserTTL = "10m"
	}
	if c.URLTTL == "" {
		c.URLTTL = "90m"
	}
}

func (c *CacheConfig) loadEnv() {
	if v := os.Getenv(EnvCacheRedisAddr); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv(EnvCacheRedisPassword); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv(EnvCacheRedisDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
}

func (c *CacheConfig) validate() error {
	if c.LocalSize < 1 {
		return fmt.Errorf("local_size must be positive")
	}
	for name, value := range map[string]string{
		"local_ttl": c.LocalTTL,
		"user_ttl":  c.UserTTL,
		"url_ttl":   c.URLTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
