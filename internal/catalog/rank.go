package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects one of the caller-facing rankings.
type SortKey string

const (
	SortByRating      SortKey = "rating"
	SortByPopularity  SortKey = "popularity"
	SortByReleaseDate SortKey = "release_date"
)

// IsValid reports whether the key names a known ranking.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByRating, SortByPopularity, SortByReleaseDate:
		return true
	}
	return false
}

// Rank returns a copy of records ordered by the given key. An unknown key
// yields ErrInvalidArgument.
func Rank(records []Record, key SortKey) ([]Record, error) {
	switch key {
	case SortByRating:
		return RankByRating(records), nil
	case SortByPopularity:
		return RankByPopularity(records), nil
	case SortByReleaseDate:
		return RankByReleaseDate(records), nil
	}
	return nil, fmt.Errorf("catalog: unknown sort key %q: %w", key, ErrInvalidArgument)
}

// RankByRating orders by rating descending. Records without a rating sort
// after every rated record. Ties fall back to name, then ID.
func RankByRating(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, compareRating)
	return out
}

// RankByReleaseDate orders newest first. Records without a known release
// date sort last. Ties fall back to name, then ID.
func RankByReleaseDate(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, compareReleaseDate)
	return out
}

// RankByPopularity orders by popularity descending. Records without a
// popularity signal sort last. Ties fall back to name, then ID.
func RankByPopularity(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, comparePopularity)
	return out
}

// RankBySimilarity orders by similarity against ref, descending. Ties fall
// back to name, then ID. Scores are computed once per record, not per
// comparison.
func RankBySimilarity(records []Record, ref ReferenceSet) []Record {
	type scored struct {
		rec   Record
		score float64
	}
	rows := make([]scored, len(records))
	for i, r := range records {
		rows[i] = scored{rec: r, score: ref.Score(r)}
	}
	slices.SortStableFunc(rows, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return compareNameID(a.rec, b.rec)
	})
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = row.rec
	}
	return out
}

func compareRating(a, b Record) int {
	switch {
	case a.Rating == nil && b.Rating == nil:
		return compareNameID(a, b)
	case a.Rating == nil:
		return 1
	case b.Rating == nil:
		return -1
	}
	if c := cmp.Compare(*b.Rating, *a.Rating); c != 0 {
		return c
	}
	return compareNameID(a, b)
}

func compareReleaseDate(a, b Record) int {
	switch {
	case !a.HasReleaseDate() && !b.HasReleaseDate():
		return compareNameID(a, b)
	case !a.HasReleaseDate():
		return 1
	case !b.HasReleaseDate():
		return -1
	}
	if c := b.ReleaseDate.Compare(a.ReleaseDate); c != 0 {
		return c
	}
	return compareNameID(a, b)
}

func comparePopularity(a, b Record) int {
	switch {
	case a.Popularity == nil && b.Popularity == nil:
		return compareNameID(a, b)
	case a.Popularity == nil:
		return 1
	case b.Popularity == nil:
		return -1
	}
	if c := cmp.Compare(*b.Popularity, *a.Popularity); c != 0 {
		return c
	}
	return compareNameID(a, b)
}

// compareNameID is the universal tie-break: name ascending, then ID
// ascending. IDs are unique, so every ranking is a total order and repeat
// queries over the same records return identical sequences.
func compareNameID(a, b Record) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
