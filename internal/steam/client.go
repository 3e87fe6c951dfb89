// Package steam implements the catalog accessor against the Steam Web and
// Store APIs. It owns every network concern the engine must not know about:
// request pacing, circuit breaking, TTL caching, the coercion of Steam's
// loosely-typed JSON into [catalog.Record], and name-search relevance.
//
// Three upstream endpoints are consumed:
//
//   - GET {api}/ISteamApps/GetAppList/v2/ — the full id+name universe
//   - GET {store}/appdetails?appids=N     — per-app details
//   - GET {store}/featuredcategories     — the current sale listing
//
// Failures of the upstream surface as errors wrapping
// [catalog.ErrUpstreamUnavailable]; an app the store does not know surfaces
// as [catalog.ErrNotFound].
package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MrWong99/steamscout/internal/catalog"
	"github.com/MrWong99/steamscout/internal/observe"
	"github.com/MrWong99/steamscout/internal/recommend"
)

// Defaults mirror the conservative numbers Steam's unofficial rate limits
// tolerate: one request every 1.5 seconds, five-minute cache freshness, a
// thousand-app sample for full-catalog browsing.
const (
	DefaultAPIBaseURL   = "https://api.steampowered.com"
	DefaultStoreBaseURL = "https://store.steampowered.com/api"

	DefaultRequestInterval = 1500 * time.Millisecond
	DefaultCacheTTL        = 5 * time.Minute
	DefaultScanLimit       = 1000
	DefaultTimeout         = 30 * time.Second

	// defaultHydrateConcurrency bounds concurrent appdetails fetches during
	// Browse. The rate limiter still paces individual requests.
	defaultHydrateConcurrency = 4
)

// Compile-time check: Client must implement recommend.Accessor.
var _ recommend.Accessor = (*Client)(nil)

// Client talks to the Steam APIs and serves coerced records. It is safe for
// concurrent use; the caches, limiter, and breaker synchronise internally.
type Client struct {
	httpClient   *http.Client
	apiBaseURL   string
	storeBaseURL string

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]

	scanLimit          int
	hydrateConcurrency int

	appList  *ttlCache[[]appEntry]
	details  *ttlCache[catalog.Record]
	specials *ttlCache[[]catalog.AppID]

	metrics *observe.Metrics
	logger  *slog.Logger
}

// config holds optional configuration collected from functional options.
type config struct {
	httpClient         *http.Client
	apiBaseURL         string
	storeBaseURL       string
	requestInterval    time.Duration
	cacheTTL           time.Duration
	timeout            time.Duration
	scanLimit          int
	hydrateConcurrency int
	breakerMaxRequests uint32
	breakerInterval    time.Duration
	breakerTimeout     time.Duration
	metrics            *observe.Metrics
	logger             *slog.Logger
	now                func() time.Time
}

// Option is a functional option for [Client].
type Option func(*config)

// WithHTTPClient replaces the underlying HTTP client. Tests pair this with
// httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// WithBaseURLs overrides the Steam Web API and Store API base URLs. Empty
// strings keep the defaults.
func WithBaseURLs(api, store string) Option {
	return func(c *config) {
		if api != "" {
			c.apiBaseURL = api
		}
		if store != "" {
			c.storeBaseURL = store
		}
	}
}

// WithRequestInterval sets the minimum spacing between upstream requests.
// Zero or negative disables pacing (used by tests).
func WithRequestInterval(d time.Duration) Option {
	return func(c *config) { c.requestInterval = d }
}

// WithCacheTTL sets how long the app list, per-app details, and the sale
// listing stay fresh.
func WithCacheTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.cacheTTL = d
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithScanLimit bounds how many app-list entries a full-catalog Browse
// hydrates.
func WithScanLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.scanLimit = n
		}
	}
}

// WithHydrateConcurrency bounds concurrent detail fetches during Browse.
func WithHydrateConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.hydrateConcurrency = n
		}
	}
}

// WithBreaker tunes the upstream circuit breaker: how many probe requests
// the half-open state admits, the closed-state counting window, and how
// long an open circuit waits before probing again.
func WithBreaker(maxRequests uint32, interval, timeout time.Duration) Option {
	return func(c *config) {
		c.breakerMaxRequests = maxRequests
		c.breakerInterval = interval
		c.breakerTimeout = timeout
	}
}

// WithMetrics wires observability instruments into the client. Nil disables
// recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithLogger replaces the client's logger (default: slog.Default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// withNow pins the cache clock in tests.
func withNow(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New constructs a Client with the given options applied over defaults.
func New(opts ...Option) *Client {
	cfg := &config{
		apiBaseURL:         DefaultAPIBaseURL,
		storeBaseURL:       DefaultStoreBaseURL,
		requestInterval:    DefaultRequestInterval,
		cacheTTL:           DefaultCacheTTL,
		timeout:            DefaultTimeout,
		scanLimit:          DefaultScanLimit,
		hydrateConcurrency: defaultHydrateConcurrency,
		breakerMaxRequests: 3,
		breakerInterval:    time.Minute,
		breakerTimeout:     2 * time.Minute,
		logger:             slog.Default(),
		now:                time.Now,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: cfg.timeout}
	}

	limit := rate.Inf
	if cfg.requestInterval > 0 {
		limit = rate.Every(cfg.requestInterval)
	}

	logger := cfg.logger
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "steam-api",
		MaxRequests: cfg.breakerMaxRequests,
		Interval:    cfg.breakerInterval,
		Timeout:     cfg.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Statistical significance before tripping.
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("steam circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient:         cfg.httpClient,
		apiBaseURL:         cfg.apiBaseURL,
		storeBaseURL:       cfg.storeBaseURL,
		limiter:            rate.NewLimiter(limit, 1),
		breaker:            breaker,
		scanLimit:          cfg.scanLimit,
		hydrateConcurrency: cfg.hydrateConcurrency,
		appList:            newTTLCache[[]appEntry](cfg.cacheTTL, cfg.now),
		details:            newTTLCache[catalog.Record](cfg.cacheTTL, cfg.now),
		specials:           newTTLCache[[]catalog.AppID](cfg.cacheTTL, cfg.now),
		metrics:            cfg.metrics,
		logger:             cfg.logger,
	}
}

// SearchByName implements [recommend.Accessor]. It matches the query as a
// case-insensitive substring over the cached app list and orders hits by
// relevance (exact, prefix, then Jaro-Winkler similarity). The returned
// records are shallow: ID and name only, the way the app list carries them.
func (c *Client) SearchByName(ctx context.Context, query string) ([]catalog.Record, error) {
	entries, err := c.fetchAppList(ctx)
	if err != nil {
		return nil, err
	}
	hits := rankMatches(query, entries)
	records := make([]catalog.Record, len(hits))
	for i, h := range hits {
		records[i] = catalog.Record{ID: h.AppID, Name: h.Name}
	}
	return records, nil
}

// GetByID implements [recommend.Accessor]. Results are cached per app for
// the configured TTL.
func (c *Client) GetByID(ctx context.Context, id catalog.AppID) (catalog.Record, error) {
	key := strconv.FormatInt(int64(id), 10)
	if rec, ok := c.details.get(key); ok {
		c.recordCacheLookup(ctx, "details", true)
		return rec, nil
	}
	c.recordCacheLookup(ctx, "details", false)

	url := fmt.Sprintf("%s/appdetails?appids=%d", c.storeBaseURL, id)
	var envelope map[string]appDetailsEnvelope
	if err := c.getJSON(ctx, "appdetails", url, &envelope); err != nil {
		return catalog.Record{}, err
	}

	entry, ok := envelope[key]
	if !ok || !entry.Success {
		return catalog.Record{}, fmt.Errorf("steam: app %d: %w", id, catalog.ErrNotFound)
	}
	rec := toRecord(id, entry.Data)
	c.details.set(key, rec)
	return rec, nil
}

// Browse implements [recommend.Accessor]. The sale listing hydrates the ids
// of the store's current specials; the full-catalog sample hydrates the
// first scan-limit entries of the app list. Apps the store will not detail
// (delisted, region-locked) are skipped; upstream outages abort the browse.
func (c *Client) Browse(ctx context.Context, f recommend.BrowseFilter) ([]catalog.Record, error) {
	var ids []catalog.AppID
	if f.SaleOnly {
		specials, err := c.fetchSpecials(ctx)
		if err != nil {
			return nil, err
		}
		ids = specials
	} else {
		entries, err := c.fetchAppList(ctx)
		if err != nil {
			return nil, err
		}
		if len(entries) > c.scanLimit {
			entries = entries[:c.scanLimit]
		}
		ids = make([]catalog.AppID, len(entries))
		for i, e := range entries {
			ids[i] = e.AppID
		}
	}
	return c.hydrate(ctx, ids)
}

// hydrate resolves ids to full records, bounded-concurrently, preserving
// the input order among the apps that resolve.
func (c *Client) hydrate(ctx context.Context, ids []catalog.AppID) ([]catalog.Record, error) {
	slots := make([]*catalog.Record, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.hydrateConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := c.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					c.logger.Debug("skipping app without store details", "appid", id)
					return nil
				}
				return err
			}
			slots[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]catalog.Record, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// Ready probes the upstream for readiness checks by ensuring a fresh app
// list can be served. A warm cache answers without a network round trip.
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.fetchAppList(ctx)
	return err
}

func (c *Client) fetchAppList(ctx context.Context) ([]appEntry, error) {
	if entries, ok := c.appList.get("all"); ok {
		c.recordCacheLookup(ctx, "applist", true)
		return entries, nil
	}
	c.recordCacheLookup(ctx, "applist", false)

	var resp appListResponse
	if err := c.getJSON(ctx, "applist", c.apiBaseURL+"/ISteamApps/GetAppList/v2/", &resp); err != nil {
		return nil, err
	}
	c.appList.set("all", resp.AppList.Apps)
	return resp.AppList.Apps, nil
}

func (c *Client) fetchSpecials(ctx context.Context) ([]catalog.AppID, error) {
	if ids, ok := c.specials.get("specials"); ok {
		c.recordCacheLookup(ctx, "specials", true)
		return ids, nil
	}
	c.recordCacheLookup(ctx, "specials", false)

	var resp featuredResponse
	if err := c.getJSON(ctx, "featuredcategories", c.storeBaseURL+"/featuredcategories", &resp); err != nil {
		return nil, err
	}
	ids := make([]catalog.AppID, len(resp.Specials.Items))
	for i, item := range resp.Specials.Items {
		ids[i] = item.ID
	}
	c.specials.set("specials", ids)
	return ids, nil
}

// getJSON performs one paced, breaker-guarded GET and decodes the body.
// endpoint is the short name used in logs and metric attributes.
func (c *Client) getJSON(ctx context.Context, endpoint, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("steam: wait for rate limit: %w", err)
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doGet(ctx, url)
	})
	c.recordUpstreamRequest(ctx, endpoint, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("steam: %s: circuit open: %w", endpoint, catalog.ErrUpstreamUnavailable)
		}
		return fmt.Errorf("steam: %s: %w", endpoint, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("steam: %s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %v: %w", err, catalog.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %w", resp.StatusCode, catalog.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, catalog.ErrUpstreamUnavailable)
	}
	return body, nil
}

func (c *Client) recordCacheLookup(ctx context.Context, cache string, hit bool) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCacheLookup(ctx, cache, hit)
}

func (c *Client) recordUpstreamRequest(ctx context.Context, endpoint string, d time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordUpstreamRequest(ctx, endpoint, d, err)
}
