// Package catalog defines the game record model shared by every layer of
// the server together with the pure pieces of the recommendation pipeline:
// filter predicates, deterministic rankings and taste similarity scoring.
// Nothing in this package performs I/O; upstream fetching lives in
// internal/steam and orchestration in internal/recommend.
package catalog

import (
	"math"
	"strings"
	"time"
)

// AppID identifies a game in the Steam catalog.
type AppID int64

// Record is a normalized snapshot of one catalog entry. Optional upstream
// fields keep their absence observable: Rating and Popularity are nil when
// the store reports nothing, ReleaseDate is the zero time when unknown or
// unparseable. Prices are integer cents so arithmetic stays exact.
type Record struct {
	ID   AppID
	Name string

	Genres []string
	Tags   []string

	// PriceCents is the current (discounted) price. Free games carry 0
	// with IsFree set.
	PriceCents        int64
	InitialPriceCents int64
	DiscountPercent   int
	IsFree            bool

	Rating      *float64
	ReleaseDate time.Time
	Popularity  *int64

	Summary    string
	Developers []string
	Publishers []string
}

// HasGenre reports whether the record carries the given genre,
// compared case-insensitively.
func (r Record) HasGenre(genre string) bool {
	for _, g := range r.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// HasRating reports whether the store provided a review score.
func (r Record) HasRating() bool { return r.Rating != nil }

// HasReleaseDate reports whether the release date is known.
func (r Record) HasReleaseDate() bool { return !r.ReleaseDate.IsZero() }

// HasPopularity reports whether the store provided a popularity signal.
func (r Record) HasPopularity() bool { return r.Popularity != nil }

// Features returns the lowercased union of genres and tags. Duplicates
// collapse, so the result is a set in slice form.
func (r Record) Features() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Genres)+len(r.Tags))
	for _, g := range r.Genres {
		set[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}
	for _, t := range r.Tags {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	delete(set, "")
	return set
}

// DollarsToCents converts a dollar amount from the tool boundary into
// integer cents, rounding half away from zero.
func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// CentsToDollars renders integer cents as a dollar amount for responses.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}
