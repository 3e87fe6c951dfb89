package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/steamscout/internal/catalog"
	"github.com/MrWong99/steamscout/internal/recommend"
	"github.com/MrWong99/steamscout/internal/recommend/mock"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// newSession connects an in-memory client to a tool server backed by the
// given accessor and returns the client session.
func newSession(t *testing.T, acc *mock.Accessor, opts ...Option) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	engine := recommend.New(acc,
		recommend.WithNow(func() time.Time { return testNow }),
		recommend.WithLogger(slog.New(slog.DiscardHandler)),
	)
	srv := NewServer(engine, "test", opts...)

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := srv.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server Connect: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Wait() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "steamscout-test", Version: "0.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client Connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// callTool invokes a tool and decodes its structured content into T.
func callTool[T any](t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) T {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		t.Fatalf("CallTool(%s) returned tool error: %+v", name, res.Content)
	}
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

// callToolExpectError invokes a tool and asserts the call failed at the tool
// level.
func callToolExpectError(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		// Transport-level failure also counts as an error surfaced to the
		// caller.
		return
	}
	if !res.IsError {
		t.Fatalf("CallTool(%s) succeeded, want tool error", name)
	}
}

func testCatalog() []catalog.Record {
	return []catalog.Record{
		{
			ID: 10, Name: "Portal 2",
			Genres:     []string{"Puzzle", "Action"},
			Tags:       []string{"Co-op"},
			PriceCents: 499, InitialPriceCents: 999, DiscountPercent: 50,
			Rating:      ptr(95.0),
			ReleaseDate: date(2011, time.April, 19),
			Popularity:  ptr(int64(250000)),
			Summary:     "Mind-bending puzzle sequel.",
			Developers:  []string{"Valve"},
			Publishers:  []string{"Valve"},
		},
		{
			ID: 20, Name: "Hades",
			Genres:     []string{"Action", "RPG"},
			Tags:       []string{"Roguelike"},
			PriceCents: 2499, InitialPriceCents: 2499,
			Rating:      ptr(93.0),
			ReleaseDate: date(2020, time.September, 17),
			Popularity:  ptr(int64(180000)),
		},
		{
			ID: 30, Name: "Dwarf Keep",
			Genres:     []string{"Strategy"},
			PriceCents: 1499, InitialPriceCents: 1499,
			ReleaseDate: date(2025, time.June, 1),
		},
	}
}

func TestServer_ListsAllTools(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{})

	want := map[string]bool{
		"search_games":             false,
		"get_game_details":         false,
		"get_sale_recommendations": false,
		"top_games_by_budget":      false,
		"recommend_by_taste":       false,
		"get_recent_releases":      false,
		"recommend_genre_blend":    false,
	}
	for tool, err := range session.Tools(context.Background(), nil) {
		if err != nil {
			t.Fatalf("Tools: %v", err)
		}
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("unexpected tool %q", tool.Name)
			continue
		}
		want[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestSearchGames_RoundTrip(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	out := callTool[searchGamesResult](t, session, "search_games", map[string]any{
		"query": "portal",
	})

	if out.Query != "portal" {
		t.Errorf("query = %q, want %q", out.Query, "portal")
	}
	if out.TotalFound != 1 || len(out.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(out.Results))
	}
	got := out.Results[0]
	if got.AppID != 10 || got.Name != "Portal 2" {
		t.Errorf("result = %+v, want Portal 2 (appid 10)", got)
	}
	if got.Price != 4.99 {
		t.Errorf("price = %v dollars, want 4.99", got.Price)
	}
	if got.OriginalPrice == nil || *got.OriginalPrice != 9.99 {
		t.Errorf("original price = %v, want 9.99", got.OriginalPrice)
	}
	if got.ReleaseDate != "Apr 19, 2011" {
		t.Errorf("release date = %q, want %q", got.ReleaseDate, "Apr 19, 2011")
	}
}

func TestSearchGames_DefaultLimit(t *testing.T) {
	t.Parallel()
	var records []catalog.Record
	for i := range 25 {
		records = append(records, catalog.Record{
			ID:   catalog.AppID(100 + i),
			Name: "Sequel Saga",
		})
	}
	session := newSession(t, &mock.Accessor{Catalog: records})

	out := callTool[searchGamesResult](t, session, "search_games", map[string]any{
		"query": "sequel",
	})
	if len(out.Results) != DefaultLimit {
		t.Errorf("got %d results, want default limit %d", len(out.Results), DefaultLimit)
	}
}

func TestGameDetails_IncludesStoreFields(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	out := callTool[gameDetailsResult](t, session, "get_game_details", map[string]any{
		"appid": 10,
	})
	if out.Name != "Portal 2" {
		t.Errorf("name = %q, want Portal 2", out.Name)
	}
	if out.Summary == "" {
		t.Error("summary missing")
	}
	if len(out.Developers) != 1 || out.Developers[0] != "Valve" {
		t.Errorf("developers = %v, want [Valve]", out.Developers)
	}
}

func TestGameDetails_UnknownApp(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	callToolExpectError(t, session, "get_game_details", map[string]any{
		"appid": 999999,
	})
}

func TestSaleRecommendations_DefaultDiscount(t *testing.T) {
	t.Parallel()
	sale := []catalog.Record{
		{ID: 1, Name: "Deep Cut", PriceCents: 500, DiscountPercent: 75, Rating: ptr(80.0)},
		{ID: 2, Name: "Shallow Cut", PriceCents: 900, DiscountPercent: 40, Rating: ptr(90.0)},
	}
	session := newSession(t, &mock.Accessor{Sale: sale})

	out := callTool[saleRecommendationsResult](t, session, "get_sale_recommendations", nil)

	if out.MinDiscount != DefaultMinDiscount {
		t.Errorf("min_discount = %d, want default %d", out.MinDiscount, DefaultMinDiscount)
	}
	if len(out.Results) != 1 || out.Results[0].Name != "Deep Cut" {
		t.Fatalf("results = %+v, want only Deep Cut", out.Results)
	}
}

func TestSaleRecommendations_PriceCapInDollars(t *testing.T) {
	t.Parallel()
	sale := []catalog.Record{
		{ID: 1, Name: "Cheap", PriceCents: 499, DiscountPercent: 60, Rating: ptr(70.0)},
		{ID: 2, Name: "Pricey", PriceCents: 1999, DiscountPercent: 60, Rating: ptr(99.0)},
	}
	session := newSession(t, &mock.Accessor{Sale: sale})

	out := callTool[saleRecommendationsResult](t, session, "get_sale_recommendations", map[string]any{
		"max_price": 5.00,
	})
	if len(out.Results) != 1 || out.Results[0].Name != "Cheap" {
		t.Fatalf("results = %+v, want only Cheap", out.Results)
	}
}

func TestTopGamesByBudget_DefaultSort(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	out := callTool[topGamesByBudgetResult](t, session, "top_games_by_budget", map[string]any{
		"max_price": 30.00,
	})
	if out.SortBy != string(catalog.SortByRating) {
		t.Errorf("sort_by = %q, want %q", out.SortBy, catalog.SortByRating)
	}
	if len(out.Results) < 2 || out.Results[0].Name != "Portal 2" || out.Results[1].Name != "Hades" {
		t.Errorf("results order = %+v, want Portal 2 then Hades", out.Results)
	}
}

func TestTopGamesByBudget_InvalidSortKey(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	callToolExpectError(t, session, "top_games_by_budget", map[string]any{
		"max_price": 30.00,
		"sort_by":   "vibes",
	})
}

func TestRecommendByTaste_ReportsUnresolved(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	out := callTool[recommendByTasteResult](t, session, "recommend_by_taste", map[string]any{
		"liked_games": []string{"Hades", "No Such Game"},
	})
	if len(out.Unresolved) != 1 || out.Unresolved[0] != "No Such Game" {
		t.Errorf("unresolved = %v, want [No Such Game]", out.Unresolved)
	}
	for _, r := range out.Results {
		if r.Name == "Hades" {
			t.Error("liked game appeared in its own suggestions")
		}
	}
}

func TestRecommendByTaste_EmptyLikedList(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	callToolExpectError(t, session, "recommend_by_taste", map[string]any{
		"liked_games": []string{},
	})
}

func TestRecentReleases_DefaultWindow(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	out := callTool[recentReleasesResult](t, session, "get_recent_releases", nil)

	if out.Days != DefaultRecentDays {
		t.Errorf("days = %d, want default %d", out.Days, DefaultRecentDays)
	}
	if len(out.Results) != 1 || out.Results[0].Name != "Dwarf Keep" {
		t.Fatalf("results = %+v, want only Dwarf Keep", out.Results)
	}
}

func TestGenreBlend_RequiresAllGenres(t *testing.T) {
	t.Parallel()
	session := newSession(t, &mock.Accessor{Catalog: testCatalog()})

	out := callTool[genreBlendResult](t, session, "recommend_genre_blend", map[string]any{
		"genres": []string{"Action", "RPG"},
	})
	if len(out.Results) != 1 || out.Results[0].Name != "Hades" {
		t.Fatalf("results = %+v, want only Hades", out.Results)
	}
}

func TestResolveLimit(t *testing.T) {
	t.Parallel()
	s := &server{defaultLimit: 10, maxLimit: 50}

	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"absent uses default", nil, 10},
		{"explicit value passes through", ptr(5), 5},
		{"oversized is capped", ptr(500), 50},
		{"zero passes through", ptr(0), 0},
		{"negative passes through", ptr(-3), -3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := s.resolveLimit(tc.limit); got != tc.want {
				t.Errorf("resolveLimit(%v) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"invalid argument", catalog.ErrInvalidArgument, "invalid_argument"},
		{"not found", catalog.ErrNotFound, "not_found"},
		{"upstream unavailable", catalog.ErrUpstreamUnavailable, "upstream_unavailable"},
		{"other", context.DeadlineExceeded, "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := statusLabel(tc.err); got != tc.want {
				t.Errorf("statusLabel(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
