package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Volunteer backend serving /time and /getVolunteerLocations.
	BackendURL     string
	BackendTimeout time.Duration

	// MapSettleDelay holds fetched locations back before they are committed to
	// the map so markers never precede the viewport. Zero commits immediately.
	MapSettleDelay time.Duration

	// RenderTimeout bounds how long a page load waits for both fetches.
	RenderTimeout time.Duration

	// PageCacheSize is the number of page instances kept for callbacks.
	PageCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	backendTimeout, err := parsePositiveDuration("BACKEND_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	renderTimeout, err := parsePositiveDuration("RENDER_TIMEOUT", "3s")
	if err != nil {
		return nil, err
	}

	settleDelay, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAP_SETTLE_DELAY", "500ms"))
	if err != nil || settleDelay < 0 {
		return nil, errors.New("invalid MAP_SETTLE_DELAY")
	}

	cacheSize, err := parsePageCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		BackendURL:      sharedcfg.EnvOrDefault("BACKEND_URL", "http://localhost:5000"),
		BackendTimeout:  backendTimeout,
		MapSettleDelay:  settleDelay,
		RenderTimeout:   renderTimeout,
		PageCacheSize:   cacheSize,
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid BACKEND_URL %q", cfg.BackendURL)
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePageCacheSize() (int, error) {
	s := os.Getenv("PAGE_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid PAGE_CACHE_SIZE")
	}
	return n, nil
}
