package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/steamscout/internal/catalog"
	"github.com/MrWong99/steamscout/internal/recommend"
)

// gameResult is the per-game payload shared by every tool response. Prices
// are dollars; fields the store never reported are omitted rather than
// rendered as zero values.
type gameResult struct {
	AppID           int64    `json:"appid" jsonschema:"Steam app id"`
	Name            string   `json:"name" jsonschema:"game title"`
	Price           float64  `json:"price" jsonschema:"current price in dollars, 0 for free games"`
	OriginalPrice   *float64 `json:"original_price,omitempty" jsonschema:"price before discount in dollars"`
	DiscountPercent int      `json:"discount_percent,omitempty" jsonschema:"current discount percentage"`
	IsFree          bool     `json:"is_free,omitempty" jsonschema:"whether the game is free to play"`
	Genres          []string `json:"genres,omitempty" jsonschema:"store genres"`
	Tags            []string `json:"tags,omitempty" jsonschema:"store category tags"`
	Rating          *float64 `json:"rating,omitempty" jsonschema:"review score out of 100"`
	ReleaseDate     string   `json:"release_date,omitempty" jsonschema:"release date as shown on the store page"`
	Recommendations *int64   `json:"recommendations,omitempty" jsonschema:"total user recommendations"`
}

// toGameResult renders a record for a tool response.
func toGameResult(r catalog.Record) gameResult {
	out := gameResult{
		AppID:           int64(r.ID),
		Name:            r.Name,
		Price:           catalog.CentsToDollars(r.PriceCents),
		DiscountPercent: r.DiscountPercent,
		IsFree:          r.IsFree,
		Genres:          r.Genres,
		Tags:            r.Tags,
		Rating:          r.Rating,
		Recommendations: r.Popularity,
	}
	if r.DiscountPercent > 0 {
		orig := catalog.CentsToDollars(r.InitialPriceCents)
		out.OriginalPrice = &orig
	}
	if r.HasReleaseDate() {
		out.ReleaseDate = r.ReleaseDate.Format("Jan 2, 2006")
	}
	return out
}

func toGameResults(records []catalog.Record) []gameResult {
	out := make([]gameResult, 0, len(records))
	for _, r := range records {
		out = append(out, toGameResult(r))
	}
	return out
}

type searchGamesArgs struct {
	Query string `json:"query" jsonschema:"name of the game to search for"`
	Limit *int   `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

type searchGamesResult struct {
	Query      string       `json:"query"`
	TotalFound int          `json:"total_found"`
	Results    []gameResult `json:"results"`
}

func (s *server) searchGames(ctx context.Context, _ *mcpsdk.CallToolRequest, args searchGamesArgs) (_ *mcpsdk.CallToolResult, out searchGamesResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "search_games", start, err) }()

	records, err := s.engine.SearchGames(ctx, args.Query, s.resolveLimit(args.Limit))
	if err != nil {
		return nil, out, err
	}
	out = searchGamesResult{
		Query:      args.Query,
		TotalFound: len(records),
		Results:    toGameResults(records),
	}
	return nil, out, nil
}

type gameDetailsArgs struct {
	AppID int64 `json:"appid" jsonschema:"Steam app id of the game"`
}

type gameDetailsResult struct {
	gameResult
	Summary    string   `json:"summary,omitempty" jsonschema:"short store description"`
	Developers []string `json:"developers,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
}

func (s *server) gameDetails(ctx context.Context, _ *mcpsdk.CallToolRequest, args gameDetailsArgs) (_ *mcpsdk.CallToolResult, out gameDetailsResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "get_game_details", start, err) }()

	rec, err := s.engine.GameDetails(ctx, catalog.AppID(args.AppID))
	if err != nil {
		return nil, out, err
	}
	out = gameDetailsResult{
		gameResult: toGameResult(rec),
		Summary:    rec.Summary,
		Developers: rec.Developers,
		Publishers: rec.Publishers,
	}
	return nil, out, nil
}

type saleRecommendationsArgs struct {
	MinDiscount *int     `json:"min_discount,omitempty" jsonschema:"minimum discount percentage, default 50"`
	MaxPrice    *float64 `json:"max_price,omitempty" jsonschema:"maximum discounted price in dollars"`
	Genre       string   `json:"genre,omitempty" jsonschema:"restrict results to this genre"`
	Limit       *int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

type saleRecommendationsResult struct {
	MinDiscount int          `json:"min_discount"`
	MaxPrice    *float64     `json:"max_price,omitempty"`
	Genre       string       `json:"genre,omitempty"`
	TotalFound  int          `json:"total_found"`
	Results     []gameResult `json:"results"`
}

func (s *server) saleRecommendations(ctx context.Context, _ *mcpsdk.CallToolRequest, args saleRecommendationsArgs) (_ *mcpsdk.CallToolResult, out saleRecommendationsResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "get_sale_recommendations", start, err) }()

	p := recommend.SaleParams{
		MinDiscount: DefaultMinDiscount,
		Genre:       args.Genre,
		Limit:       s.resolveLimit(args.Limit),
	}
	if args.MinDiscount != nil {
		p.MinDiscount = *args.MinDiscount
	}
	if args.MaxPrice != nil {
		cents := catalog.DollarsToCents(*args.MaxPrice)
		p.MaxPriceCents = &cents
	}

	records, err := s.engine.SaleRecommendations(ctx, p)
	if err != nil {
		return nil, out, err
	}
	out = saleRecommendationsResult{
		MinDiscount: p.MinDiscount,
		MaxPrice:    args.MaxPrice,
		Genre:       args.Genre,
		TotalFound:  len(records),
		Results:     toGameResults(records),
	}
	return nil, out, nil
}

type topGamesByBudgetArgs struct {
	MaxPrice float64 `json:"max_price" jsonschema:"budget cap in dollars"`
	Genre    string  `json:"genre,omitempty" jsonschema:"restrict results to this genre"`
	SortBy   string  `json:"sort_by,omitempty" jsonschema:"ranking to use: rating (default), release_date, or popularity"`
	Limit    *int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

type topGamesByBudgetResult struct {
	MaxPrice   float64      `json:"max_price"`
	Genre      string       `json:"genre,omitempty"`
	SortBy     string       `json:"sort_by"`
	TotalFound int          `json:"total_found"`
	Results    []gameResult `json:"results"`
}

func (s *server) topGamesByBudget(ctx context.Context, _ *mcpsdk.CallToolRequest, args topGamesByBudgetArgs) (_ *mcpsdk.CallToolResult, out topGamesByBudgetResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "top_games_by_budget", start, err) }()

	sortBy := catalog.SortKey(args.SortBy)
	if args.SortBy == "" {
		sortBy = catalog.SortByRating
	}
	records, err := s.engine.TopGamesByBudget(ctx, recommend.BudgetParams{
		MaxPriceCents: catalog.DollarsToCents(args.MaxPrice),
		Genre:         args.Genre,
		SortBy:        sortBy,
		Limit:         s.resolveLimit(args.Limit),
	})
	if err != nil {
		return nil, out, err
	}
	out = topGamesByBudgetResult{
		MaxPrice:   args.MaxPrice,
		Genre:      args.Genre,
		SortBy:     string(sortBy),
		TotalFound: len(records),
		Results:    toGameResults(records),
	}
	return nil, out, nil
}

type recommendByTasteArgs struct {
	LikedGames  []string `json:"liked_games" jsonschema:"names of games the user already enjoys"`
	Preferences []string `json:"preferences,omitempty" jsonschema:"extra genre or tag terms, e.g. roguelike or co-op"`
	Limit       *int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

type recommendByTasteResult struct {
	LikedGames []string     `json:"liked_games"`
	Unresolved []string     `json:"unresolved,omitempty" jsonschema:"liked names that could not be matched to a game"`
	TotalFound int          `json:"total_found"`
	Results    []gameResult `json:"results"`
}

func (s *server) recommendByTaste(ctx context.Context, _ *mcpsdk.CallToolRequest, args recommendByTasteArgs) (_ *mcpsdk.CallToolResult, out recommendByTasteResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "recommend_by_taste", start, err) }()

	res, err := s.engine.RecommendByTaste(ctx, recommend.TasteParams{
		LikedGames:  args.LikedGames,
		Preferences: args.Preferences,
		Limit:       s.resolveLimit(args.Limit),
	})
	if err != nil {
		return nil, out, err
	}
	out = recommendByTasteResult{
		LikedGames: args.LikedGames,
		Unresolved: res.Unresolved,
		TotalFound: len(res.Games),
		Results:    toGameResults(res.Games),
	}
	return nil, out, nil
}

type recentReleasesArgs struct {
	Days      *int     `json:"days,omitempty" jsonschema:"release window in days counted back from today, default 30"`
	Genre     string   `json:"genre,omitempty" jsonschema:"restrict results to this genre"`
	MinRating *float64 `json:"min_rating,omitempty" jsonschema:"drop games rated below this score out of 100"`
	Limit     *int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

type recentReleasesResult struct {
	Days       int          `json:"days"`
	Genre      string       `json:"genre,omitempty"`
	MinRating  *float64     `json:"min_rating,omitempty"`
	TotalFound int          `json:"total_found"`
	Results    []gameResult `json:"results"`
}

func (s *server) recentReleases(ctx context.Context, _ *mcpsdk.CallToolRequest, args recentReleasesArgs) (_ *mcpsdk.CallToolResult, out recentReleasesResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "get_recent_releases", start, err) }()

	days := DefaultRecentDays
	if args.Days != nil {
		days = *args.Days
	}
	records, err := s.engine.RecentReleases(ctx, recommend.RecentParams{
		Days:      days,
		Genre:     args.Genre,
		MinRating: args.MinRating,
		Limit:     s.resolveLimit(args.Limit),
	})
	if err != nil {
		return nil, out, err
	}
	out = recentReleasesResult{
		Days:       days,
		Genre:      args.Genre,
		MinRating:  args.MinRating,
		TotalFound: len(records),
		Results:    toGameResults(records),
	}
	return nil, out, nil
}

type genreBlendArgs struct {
	Genres []string `json:"genres" jsonschema:"genres a game must carry all of, e.g. [\"Action\", \"RPG\"]"`
	Limit  *int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

type genreBlendResult struct {
	Genres     []string     `json:"genres"`
	TotalFound int          `json:"total_found"`
	Results    []gameResult `json:"results"`
}

func (s *server) genreBlend(ctx context.Context, _ *mcpsdk.CallToolRequest, args genreBlendArgs) (_ *mcpsdk.CallToolResult, out genreBlendResult, err error) {
	start := time.Now()
	defer func() { s.observeCall(ctx, "recommend_genre_blend", start, err) }()

	records, err := s.engine.GenreBlend(ctx, recommend.BlendParams{
		Genres: args.Genres,
		Limit:  s.resolveLimit(args.Limit),
	})
	if err != nil {
		return nil, out, err
	}
	out = genreBlendResult{
		Genres:     args.Genres,
		TotalFound: len(records),
		Results:    toGameResults(records),
	}
	return nil, out, nil
}
