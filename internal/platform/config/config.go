package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the ingest binary reads from the environment.
type Config struct {
	// Addr is the ops HTTP surface (health, metrics).
	Addr string

	DatabaseURL string
	Redis       RedisConfig

	CBSO CBSOConfig

	// CacheDir is the on-disk payload cache used when Redis is not
	// configured.
	CacheDir string

	// Workers bounds the company worker pool.
	Workers int
}

// CBSOConfig points the fetch client at the registry.
type CBSOConfig struct {
	BaseURL         string
	SubscriptionKey string
}

// RedisConfig mirrors the go-redis connection knobs we tune.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PayloadCacheTTL bounds how long fetched registry payloads are kept.
// Filed documents are immutable, but corrections append new references, so
// the reference lists must expire.
var PayloadCacheTTL = 24 * time.Hour

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("CBSO_OPS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	baseURL := os.Getenv("CBSO_BASE_URL")
	if baseURL == "" {
		baseURL = "https://ws.cbso.nbb.be"
	}

	cacheDir := os.Getenv("CBSO_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "payload-cache"
	}

	workers := 4
	if v := os.Getenv("CBSO_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("CBSO_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("CBSO_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		CBSO: CBSOConfig{
			BaseURL:         baseURL,
			SubscriptionKey: os.Getenv("CBSO_SUBSCRIPTION_KEY"),
		},
		CacheDir: cacheDir,
		Workers:  workers,
	}
}
