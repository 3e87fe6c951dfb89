package mcp

import (
	"context"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/steamscout/internal/catalog"
	"github.com/MrWong99/steamscout/internal/observe"
	"github.com/MrWong99/steamscout/internal/recommend"
)

// Defaults applied at the tool boundary when a caller omits an optional
// parameter.
const (
	DefaultLimit       = 10
	DefaultMinDiscount = 50
	DefaultRecentDays  = 30

	// defaultMaxLimit caps the limit a caller may request. Every result
	// beyond it costs paced Steam requests during hydration.
	defaultMaxLimit = 50
)

// server carries the per-tool handler state: the engine, optional metrics,
// and the limit policy.
type server struct {
	engine       *recommend.Engine
	metrics      *observe.Metrics
	defaultLimit int
	maxLimit     int
}

// Option configures the tool server.
type Option func(*server)

// WithMetrics wires tool-call instruments. Nil disables recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *server) { s.metrics = m }
}

// WithLimits overrides the default and maximum result limits. Non-positive
// values keep the defaults.
func WithLimits(def, max int) Option {
	return func(s *server) {
		if def > 0 {
			s.defaultLimit = def
		}
		if max > 0 {
			s.maxLimit = max
		}
	}
}

// NewServer builds the MCP server with all catalog tools registered. The
// caller owns running it over a transport ([mcpsdk.Server.Run] for stdio,
// [mcpsdk.NewStreamableHTTPHandler] for HTTP).
func NewServer(engine *recommend.Engine, version string, opts ...Option) *mcpsdk.Server {
	s := &server{
		engine:       engine,
		defaultLimit: DefaultLimit,
		maxLimit:     defaultMaxLimit,
	}
	for _, o := range opts {
		o(s)
	}

	srv := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "steamscout",
		Title:   "Steam game recommender",
		Version: version,
	}, nil)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "search_games",
		Description: "Search the Steam catalog by game name. Returns matching games with their app ids, most relevant first.",
	}, s.searchGames)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "get_game_details",
		Description: "Look up one game by Steam app id: price, discount, genres, rating, release date, developers.",
	}, s.gameDetails)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "get_sale_recommendations",
		Description: "Recommend games from the current Steam sale listing, best rated first. Filters by minimum discount, price cap, and genre.",
	}, s.saleRecommendations)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "top_games_by_budget",
		Description: "Recommend the best games at or under a price budget, sorted by rating, release_date, or popularity.",
	}, s.topGamesByBudget)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "recommend_by_taste",
		Description: "Recommend games similar to ones the user already likes, based on shared genres and tags plus optional extra preference terms.",
	}, s.recommendByTaste)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "get_recent_releases",
		Description: "List games released in the last N days, newest first. Filters by genre and a minimum rating.",
	}, s.recentReleases)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        "recommend_genre_blend",
		Description: "Recommend the best-rated games carrying every listed genre, e.g. action plus RPG.",
	}, s.genreBlend)

	return srv
}

// resolveLimit applies the default for an absent limit and the cap for an
// oversized one. Explicit non-positive limits pass through; the engine
// answers those with empty results.
func (s *server) resolveLimit(limit *int) int {
	switch {
	case limit == nil:
		return s.defaultLimit
	case *limit > s.maxLimit:
		return s.maxLimit
	default:
		return *limit
	}
}

// observeCall records one tool invocation outcome.
func (s *server) observeCall(ctx context.Context, tool string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordToolCall(ctx, tool, statusLabel(err), time.Since(start))
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, catalog.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found"
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}
