// Package config provides the configuration schema and loader for the
// steamscout server.
package config

import (
	"time"

	"github.com/MrWong99/steamscout/internal/mcp"
)

// LogLevel controls log verbosity for the steamscout server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Steam  SteamConfig  `yaml:"steam"`
	Engine EngineConfig `yaml:"engine"`
}

// ServerConfig holds transport, network, and logging settings.
type ServerConfig struct {
	// Transport selects how the tool server is exposed. Default: stdio.
	Transport mcp.Transport `yaml:"transport"`

	// ListenAddr is the TCP address of the ops listener serving /metrics,
	// /healthz, /readyz, and — with the streamable-http transport — /mcp.
	// Empty disables the listener; stdio mode works without it.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// SteamConfig holds the Steam Web API client settings. The duration fields
// are YAML strings in [time.ParseDuration] syntax ("1500ms", "5m"); they are
// parsed into the exported Duration fields during validation.
type SteamConfig struct {
	// APIBaseURL overrides the Steam Web API endpoint. Empty uses the
	// public default.
	APIBaseURL string `yaml:"api_base_url"`

	// StoreBaseURL overrides the Steam storefront API endpoint. Empty uses
	// the public default.
	StoreBaseURL string `yaml:"store_base_url"`

	// RequestIntervalRaw paces upstream requests. "0" disables pacing.
	RequestIntervalRaw string `yaml:"request_interval"`

	// RequestTimeoutRaw bounds a single upstream request.
	RequestTimeoutRaw string `yaml:"request_timeout"`

	// CacheTTLRaw is how long cached app lists and details stay fresh.
	CacheTTLRaw string `yaml:"cache_ttl"`

	// ScanLimit bounds how many apps a full-catalog browse considers.
	ScanLimit int `yaml:"scan_limit"`

	// HydrateConcurrency bounds parallel detail lookups during a browse.
	HydrateConcurrency int `yaml:"hydrate_concurrency"`

	// BreakerMaxRequests is how many probe requests the circuit breaker's
	// half-open state admits.
	BreakerMaxRequests uint32 `yaml:"breaker_max_requests"`

	// BreakerIntervalRaw is the breaker's closed-state counting window.
	BreakerIntervalRaw string `yaml:"breaker_interval"`

	// BreakerTimeoutRaw is how long an open circuit waits before probing.
	BreakerTimeoutRaw string `yaml:"breaker_timeout"`

	// RequestInterval is parsed from RequestIntervalRaw during validation.
	RequestInterval time.Duration `yaml:"-"`
	// RequestTimeout is parsed from RequestTimeoutRaw during validation.
	RequestTimeout time.Duration `yaml:"-"`
	// CacheTTL is parsed from CacheTTLRaw during validation.
	CacheTTL time.Duration `yaml:"-"`
	// BreakerInterval is parsed from BreakerIntervalRaw during validation.
	BreakerInterval time.Duration `yaml:"-"`
	// BreakerTimeout is parsed from BreakerTimeoutRaw during validation.
	BreakerTimeout time.Duration `yaml:"-"`
}

// EngineConfig holds recommendation defaults applied at the tool boundary.
type EngineConfig struct {
	// DefaultLimit is the result count used when a tool call omits limit.
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps the result count a tool call may request.
	MaxLimit int `yaml:"max_limit"`
}
