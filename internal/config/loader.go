package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/steamscout/internal/mcp"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals. An empty reader yields the all-defaults config.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills unset fields. Raw duration strings are left for
// [Validate] to parse; defaults go straight into the parsed fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = mcp.TransportStdio
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Steam.RequestIntervalRaw == "" {
		cfg.Steam.RequestInterval = 1500 * time.Millisecond
	}
	if cfg.Steam.RequestTimeoutRaw == "" {
		cfg.Steam.RequestTimeout = 30 * time.Second
	}
	if cfg.Steam.CacheTTLRaw == "" {
		cfg.Steam.CacheTTL = 5 * time.Minute
	}
	if cfg.Steam.ScanLimit == 0 {
		cfg.Steam.ScanLimit = 1000
	}
	if cfg.Steam.HydrateConcurrency == 0 {
		cfg.Steam.HydrateConcurrency = 4
	}
	if cfg.Steam.BreakerMaxRequests == 0 {
		cfg.Steam.BreakerMaxRequests = 3
	}
	if cfg.Steam.BreakerIntervalRaw == "" {
		cfg.Steam.BreakerInterval = time.Minute
	}
	if cfg.Steam.BreakerTimeoutRaw == "" {
		cfg.Steam.BreakerTimeout = 2 * time.Minute
	}
	if cfg.Engine.DefaultLimit == 0 {
		cfg.Engine.DefaultLimit = 10
	}
	if cfg.Engine.MaxLimit == 0 {
		cfg.Engine.MaxLimit = 50
	}
}

// Validate checks that cfg contains a coherent set of values and parses the
// raw duration strings. It returns a joined error listing all validation
// failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.Transport.IsValid() {
		errs = append(errs, fmt.Errorf("server.transport %q is invalid; valid values: stdio, streamable-http", cfg.Server.Transport))
	}
	if cfg.Server.Transport == mcp.TransportStreamableHTTP && cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required when transport is streamable-http"))
	}
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	errs = append(errs, validateBaseURL("steam.api_base_url", cfg.Steam.APIBaseURL)...)
	errs = append(errs, validateBaseURL("steam.store_base_url", cfg.Steam.StoreBaseURL)...)

	errs = append(errs, parseDuration("steam.request_interval", cfg.Steam.RequestIntervalRaw, &cfg.Steam.RequestInterval)...)
	errs = append(errs, parseDuration("steam.request_timeout", cfg.Steam.RequestTimeoutRaw, &cfg.Steam.RequestTimeout)...)
	errs = append(errs, parseDuration("steam.cache_ttl", cfg.Steam.CacheTTLRaw, &cfg.Steam.CacheTTL)...)
	errs = append(errs, parseDuration("steam.breaker_interval", cfg.Steam.BreakerIntervalRaw, &cfg.Steam.BreakerInterval)...)
	errs = append(errs, parseDuration("steam.breaker_timeout", cfg.Steam.BreakerTimeoutRaw, &cfg.Steam.BreakerTimeout)...)

	if cfg.Steam.RequestInterval < 0 {
		errs = append(errs, fmt.Errorf("steam.request_interval %s must not be negative", cfg.Steam.RequestInterval))
	}
	if cfg.Steam.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("steam.request_timeout %s must be positive", cfg.Steam.RequestTimeout))
	}
	if cfg.Steam.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("steam.cache_ttl %s must be positive", cfg.Steam.CacheTTL))
	}
	if cfg.Steam.ScanLimit < 0 {
		errs = append(errs, fmt.Errorf("steam.scan_limit %d must not be negative", cfg.Steam.ScanLimit))
	}
	if cfg.Steam.HydrateConcurrency < 1 {
		errs = append(errs, fmt.Errorf("steam.hydrate_concurrency %d must be at least 1", cfg.Steam.HydrateConcurrency))
	}
	if cfg.Steam.BreakerInterval <= 0 {
		errs = append(errs, fmt.Errorf("steam.breaker_interval %s must be positive", cfg.Steam.BreakerInterval))
	}
	if cfg.Steam.BreakerTimeout <= 0 {
		errs = append(errs, fmt.Errorf("steam.breaker_timeout %s must be positive", cfg.Steam.BreakerTimeout))
	}

	if cfg.Engine.DefaultLimit < 1 {
		errs = append(errs, fmt.Errorf("engine.default_limit %d must be at least 1", cfg.Engine.DefaultLimit))
	}
	if cfg.Engine.MaxLimit < cfg.Engine.DefaultLimit {
		errs = append(errs, fmt.Errorf("engine.max_limit %d must not be below engine.default_limit %d", cfg.Engine.MaxLimit, cfg.Engine.DefaultLimit))
	}

	return errors.Join(errs...)
}

// parseDuration parses raw into out when raw is non-empty. Defaults have
// already filled out for empty raw strings.
func parseDuration(field, raw string, out *time.Duration) []error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return []error{fmt.Errorf("%s %q is not a valid duration: %w", field, raw, err)}
	}
	*out = d
	return nil
}

// validateBaseURL rejects non-empty URLs that are not absolute http(s).
func validateBaseURL(field, raw string) []error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return []error{fmt.Errorf("%s %q is not a valid URL: %w", field, raw, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []error{fmt.Errorf("%s %q must use http or https", field, raw)}
	}
	if u.Host == "" {
		return []error{fmt.Errorf("%s %q is missing a host", field, raw)}
	}
	return nil
}
