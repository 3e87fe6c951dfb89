// Package recommend orchestrates the catalog query operations: it pulls a
// candidate set from the accessor, applies filter predicates, ranks, and
// truncates to the requested limit. The engine performs no I/O of its own,
// holds no mutable state, and never retries — accessor failures surface
// unchanged so the caller sees the accessor's own error taxonomy.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrWong99/steamscout/internal/catalog"
)

// BrowseFilter narrows a bulk catalog fetch. SaleOnly selects the store's
// current sale listing instead of the bounded full-catalog sample.
type BrowseFilter struct {
	SaleOnly bool
}

// Accessor is the engine's only collaborator: it resolves names, looks up
// single records, and provides bulk candidate sets. Implementations own all
// network concerns (rate limiting, retries, caching); the engine treats
// every call as either a usable snapshot or a terminal error.
type Accessor interface {
	// SearchByName returns records whose name matches the query, most
	// relevant first. Results may be shallow (ID and name only).
	SearchByName(ctx context.Context, query string) ([]catalog.Record, error)

	// GetByID returns the full record for one app, or an error wrapping
	// [catalog.ErrNotFound] when the store does not know the ID.
	GetByID(ctx context.Context, id catalog.AppID) (catalog.Record, error)

	// Browse returns a bulk candidate set selected by f.
	Browse(ctx context.Context, f BrowseFilter) ([]catalog.Record, error)
}

// Engine answers the query operations over whatever the accessor returns.
// It is stateless apart from the accessor handle and an injectable clock, so
// concurrent calls need no synchronisation.
type Engine struct {
	accessor Accessor
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithNow replaces the engine's clock. Tests use this to pin "today" for
// the recent-releases window.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger replaces the engine's logger (default: slog.Default).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine on top of the given accessor.
func New(accessor Accessor, opts ...Option) *Engine {
	e := &Engine{
		accessor: accessor,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SearchGames resolves a free-text name query. The accessor's relevance
// order is preserved; no filtering or re-ranking happens here. An empty or
// whitespace-only query yields an empty result, not an error.
func (e *Engine) SearchGames(ctx context.Context, query string, limit int) ([]catalog.Record, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []catalog.Record{}, nil
	}
	records, err := e.accessor.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("recommend: search %q: %w", query, err)
	}
	return truncate(records, limit), nil
}

// GameDetails looks up a single record by app ID.
func (e *Engine) GameDetails(ctx context.Context, id catalog.AppID) (catalog.Record, error) {
	rec, err := e.accessor.GetByID(ctx, id)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("recommend: details for app %d: %w", id, err)
	}
	return rec, nil
}

// SaleParams parameterises [Engine.SaleRecommendations].
type SaleParams struct {
	// MinDiscount is the minimum discount percentage a record must carry.
	MinDiscount int

	// MaxPriceCents caps the discounted price. Nil means no cap.
	MaxPriceCents *int64

	// Genre restricts results to one genre. Empty means no restriction.
	Genre string

	Limit int
}

// SaleRecommendations returns discounted games from the store's sale
// listing, best rated first.
func (e *Engine) SaleRecommendations(ctx context.Context, p SaleParams) ([]catalog.Record, error) {
	if p.Limit <= 0 {
		return []catalog.Record{}, nil
	}
	candidates, err := e.accessor.Browse(ctx, BrowseFilter{SaleOnly: true})
	if err != nil {
		return nil, fmt.Errorf("recommend: browse sale listing: %w", err)
	}

	preds := []catalog.Predicate{catalog.MinDiscount(p.MinDiscount)}
	if p.MaxPriceCents != nil {
		preds = append(preds, catalog.MaxPrice(*p.MaxPriceCents))
	}
	if p.Genre != "" {
		preds = append(preds, catalog.GenreMatch(p.Genre))
	}

	matched := catalog.Filter(candidates, catalog.And(preds...))
	return truncate(catalog.RankByRating(matched), p.Limit), nil
}

// BudgetParams parameterises [Engine.TopGamesByBudget].
type BudgetParams struct {
	// MaxPriceCents is the budget cap. Required; must not be negative.
	MaxPriceCents int64

	// Genre restricts results to one genre. Empty means no restriction.
	Genre string

	// SortBy selects the ranking: rating, release_date, or popularity.
	SortBy catalog.SortKey

	Limit int
}

// TopGamesByBudget returns the best games at or under a price cap, ordered
// by the chosen sort key.
func (e *Engine) TopGamesByBudget(ctx context.Context, p BudgetParams) ([]catalog.Record, error) {
	if p.MaxPriceCents < 0 {
		return nil, fmt.Errorf("recommend: max price must not be negative, got %d cents: %w",
			p.MaxPriceCents, catalog.ErrInvalidArgument)
	}
	if !p.SortBy.IsValid() {
		return nil, fmt.Errorf("recommend: unknown sort key %q: %w", p.SortBy, catalog.ErrInvalidArgument)
	}
	if p.Limit <= 0 {
		return []catalog.Record{}, nil
	}

	candidates, err := e.accessor.Browse(ctx, BrowseFilter{})
	if err != nil {
		return nil, fmt.Errorf("recommend: browse catalog: %w", err)
	}

	preds := []catalog.Predicate{catalog.MaxPrice(p.MaxPriceCents)}
	if p.Genre != "" {
		preds = append(preds, catalog.GenreMatch(p.Genre))
	}

	matched := catalog.Filter(candidates, catalog.And(preds...))
	ranked, err := catalog.Rank(matched, p.SortBy)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return truncate(ranked, p.Limit), nil
}

// TasteParams parameterises [Engine.RecommendByTaste].
type TasteParams struct {
	// LikedGames are names of games the player enjoyed. Must not be empty.
	LikedGames []string

	// Preferences are extra genre or tag terms widening the taste profile.
	Preferences []string

	Limit int
}

// TasteResult is the outcome of a taste recommendation: the ranked
// suggestions plus any liked names that could not be resolved to a record.
type TasteResult struct {
	Games      []catalog.Record
	Unresolved []string
}

// RecommendByTaste suggests games similar to the ones the player already
// likes. Each liked name is resolved through the accessor; names that
// resolve to nothing are reported in [TasteResult.Unresolved] and logged at
// warn level, never treated as fatal. When no name resolves the result is
// empty. Liked games themselves are excluded from the suggestions.
func (e *Engine) RecommendByTaste(ctx context.Context, p TasteParams) (TasteResult, error) {
	if len(p.LikedGames) == 0 {
		return TasteResult{}, fmt.Errorf("recommend: liked games list is empty: %w", catalog.ErrInvalidArgument)
	}

	liked, unresolved, err := e.resolveLiked(ctx, p.LikedGames)
	if err != nil {
		return TasteResult{}, err
	}
	if len(liked) == 0 {
		return TasteResult{Games: []catalog.Record{}, Unresolved: unresolved}, nil
	}
	if p.Limit <= 0 {
		return TasteResult{Games: []catalog.Record{}, Unresolved: unresolved}, nil
	}

	candidates, err := e.accessor.Browse(ctx, BrowseFilter{})
	if err != nil {
		return TasteResult{}, fmt.Errorf("recommend: browse catalog: %w", err)
	}

	likedIDs := make(map[catalog.AppID]struct{}, len(liked))
	for _, r := range liked {
		likedIDs[r.ID] = struct{}{}
	}
	eligible := catalog.Filter(candidates, func(r catalog.Record) bool {
		_, isLiked := likedIDs[r.ID]
		return !isLiked
	})

	ref := catalog.NewReferenceSet(liked, p.Preferences...)
	ranked := catalog.RankBySimilarity(eligible, ref)
	return TasteResult{Games: truncate(ranked, p.Limit), Unresolved: unresolved}, nil
}

// resolveLiked maps liked names to full records: best search hit per name,
// hydrated by ID. A name with no hit (or whose hit vanished between search
// and lookup) lands in the unresolved list. Accessor outages abort the
// whole resolution.
func (e *Engine) resolveLiked(ctx context.Context, names []string) (liked []catalog.Record, unresolved []string, err error) {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		hits, err := e.accessor.SearchByName(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("recommend: resolve liked game %q: %w", name, err)
		}
		if len(hits) == 0 {
			e.logger.Warn("liked game not found in catalog, skipping", "name", name)
			unresolved = append(unresolved, name)
			continue
		}
		rec, err := e.accessor.GetByID(ctx, hits[0].ID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				e.logger.Warn("liked game has no store details, skipping", "name", name, "appid", hits[0].ID)
				unresolved = append(unresolved, name)
				continue
			}
			return nil, nil, fmt.Errorf("recommend: resolve liked game %q: %w", name, err)
		}
		liked = append(liked, rec)
	}
	return liked, unresolved, nil
}

// RecentParams parameterises [Engine.RecentReleases].
type RecentParams struct {
	// Days is the size of the release window counted back from today.
	Days int

	// Genre restricts results to one genre. Empty means no restriction.
	Genre string

	// MinRating drops records rated below the floor. Nil means no floor;
	// with a floor set, unrated records are dropped too.
	MinRating *float64

	Limit int
}

// RecentReleases returns games released within the window, newest first.
// Records without a known release date never qualify.
func (e *Engine) RecentReleases(ctx context.Context, p RecentParams) ([]catalog.Record, error) {
	if p.Limit <= 0 {
		return []catalog.Record{}, nil
	}
	candidates, err := e.accessor.Browse(ctx, BrowseFilter{})
	if err != nil {
		return nil, fmt.Errorf("recommend: browse catalog: %w", err)
	}

	preds := []catalog.Predicate{catalog.ReleasedWithin(p.Days, e.now())}
	if p.Genre != "" {
		preds = append(preds, catalog.GenreMatch(p.Genre))
	}
	if p.MinRating != nil {
		preds = append(preds, catalog.MinRating(*p.MinRating))
	}

	matched := catalog.Filter(candidates, catalog.And(preds...))
	return truncate(catalog.RankByReleaseDate(matched), p.Limit), nil
}

// BlendParams parameterises [Engine.GenreBlend].
type BlendParams struct {
	// Genres are the genres a result must carry all of. Must not be empty.
	Genres []string

	Limit int
}

// GenreBlend returns the best-rated games carrying every requested genre,
// for queries like "action RPGs".
func (e *Engine) GenreBlend(ctx context.Context, p BlendParams) ([]catalog.Record, error) {
	if len(p.Genres) == 0 {
		return nil, fmt.Errorf("recommend: genre list is empty: %w", catalog.ErrInvalidArgument)
	}
	if p.Limit <= 0 {
		return []catalog.Record{}, nil
	}
	candidates, err := e.accessor.Browse(ctx, BrowseFilter{})
	if err != nil {
		return nil, fmt.Errorf("recommend: browse catalog: %w", err)
	}
	matched := catalog.Filter(candidates, catalog.GenresAll(p.Genres))
	return truncate(catalog.RankByRating(matched), p.Limit), nil
}

// truncate caps records at limit without mutating the input.
func truncate(records []catalog.Record, limit int) []catalog.Record {
	if limit <= 0 {
		return []catalog.Record{}
	}
	if len(records) <= limit {
		return records
	}
	return records[:limit]
}
