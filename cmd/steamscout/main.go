// Command steamscout serves the Steam catalog query and recommendation
// tools over the Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/steamscout/internal/config"
	"github.com/MrWong99/steamscout/internal/health"
	scoutmcp "github.com/MrWong99/steamscout/internal/mcp"
	"github.com/MrWong99/steamscout/internal/observe"
	"github.com/MrWong99/steamscout/internal/recommend"
	"github.com/MrWong99/steamscout/internal/steam"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (built-in defaults when omitted)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("steamscout " + version)
		return 0
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// Logs go to stderr: in stdio mode stdout belongs to the MCP session. The
	// level lives in a LevelVar so a config reload can adjust it at runtime.
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// ── Load configuration ────────────────────────────────────────────────────
	var (
		cfg     *config.Config
		watcher *config.Watcher
	)
	if *configPath == "" {
		cfg = config.Default()
	} else {
		var err error
		watcher, err = config.NewWatcher(*configPath, func(old, new *config.Config) {
			d := config.Compare(old, new)
			if d.LogLevelChanged {
				logLevel.Set(slogLevel(d.NewLogLevel))
				slog.Info("log level changed", "level", d.NewLogLevel)
			}
			if d.LimitsChanged || d.RestartRequired {
				slog.Warn("config change requires a restart to take effect")
			}
		})
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "steamscout: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
			} else {
				fmt.Fprintf(os.Stderr, "steamscout: %v\n", err)
			}
			return 1
		}
		defer watcher.Stop()
		cfg = watcher.Current()
	}
	logLevel.Set(slogLevel(cfg.Server.LogLevel))

	slog.Info("steamscout starting",
		"version", version,
		"transport", cfg.Server.Transport,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "steamscout",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Steam client, engine, tool server ─────────────────────────────────────
	client := steam.New(
		steam.WithBaseURLs(cfg.Steam.APIBaseURL, cfg.Steam.StoreBaseURL),
		steam.WithRequestInterval(cfg.Steam.RequestInterval),
		steam.WithTimeout(cfg.Steam.RequestTimeout),
		steam.WithCacheTTL(cfg.Steam.CacheTTL),
		steam.WithScanLimit(cfg.Steam.ScanLimit),
		steam.WithHydrateConcurrency(cfg.Steam.HydrateConcurrency),
		steam.WithBreaker(cfg.Steam.BreakerMaxRequests, cfg.Steam.BreakerInterval, cfg.Steam.BreakerTimeout),
		steam.WithMetrics(metrics),
	)
	engine := recommend.New(client)
	server := scoutmcp.NewServer(engine, version,
		scoutmcp.WithMetrics(metrics),
		scoutmcp.WithLimits(cfg.Engine.DefaultLimit, cfg.Engine.MaxLimit),
	)

	// ── Ops listener ──────────────────────────────────────────────────────────
	var opsServer *http.Server
	opsDone := make(chan error, 1)
	if cfg.Server.ListenAddr != "" {
		checker := health.New(version, health.Checker{Name: "steam", Check: client.Ready})

		mux := http.NewServeMux()
		checker.Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())
		if cfg.Server.Transport == scoutmcp.TransportStreamableHTTP {
			mux.Handle("/mcp", mcpsdk.NewStreamableHTTPHandler(
				func(*http.Request) *mcpsdk.Server { return server }, nil))
		}

		opsServer = &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           observe.Middleware(metrics)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("ops listener started", "addr", cfg.Server.ListenAddr)
			opsDone <- opsServer.ListenAndServe()
		}()
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	exitCode := 0
	switch cfg.Server.Transport {
	case scoutmcp.TransportStdio:
		slog.Info("serving MCP session over stdio")
		if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("stdio session error", "err", err)
			exitCode = 1
		}

	case scoutmcp.TransportStreamableHTTP:
		slog.Info("serving MCP over streamable HTTP", "endpoint", cfg.Server.ListenAddr+"/mcp")
		select {
		case <-ctx.Done():
		case err := <-opsDone:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("ops listener error", "err", err)
				exitCode = 1
			}
		}
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutting down")
	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("ops listener shutdown error", "err", err)
		}
	}
	slog.Info("goodbye")
	return exitCode
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
