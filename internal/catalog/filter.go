package catalog

import "time"

// Predicate reports whether a record survives one filter condition.
// Predicates are pure: they read the record and nothing else, so any
// conjunction can be evaluated in any order with the same outcome.
type Predicate func(Record) bool

// And combines predicates into their conjunction. With no arguments the
// result accepts everything.
func And(preds ...Predicate) Predicate {
	return func(r Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// MinDiscount keeps records discounted by at least percent.
func MinDiscount(percent int) Predicate {
	return func(r Record) bool {
		return r.DiscountPercent >= percent
	}
}

// MaxPrice keeps records whose current price does not exceed the cap.
// Free games always pass.
func MaxPrice(cents int64) Predicate {
	return func(r Record) bool {
		return r.PriceCents <= cents
	}
}

// GenreMatch keeps records carrying the genre, compared case-insensitively.
func GenreMatch(genre string) Predicate {
	return func(r Record) bool {
		return r.HasGenre(genre)
	}
}

// GenresAll keeps records carrying every listed genre.
func GenresAll(genres []string) Predicate {
	return func(r Record) bool {
		for _, g := range genres {
			if !r.HasGenre(g) {
				return false
			}
		}
		return true
	}
}

// MinRating keeps records with a known rating of at least min. Records
// without a rating never pass.
func MinRating(min float64) Predicate {
	return func(r Record) bool {
		return r.Rating != nil && *r.Rating >= min
	}
}

// ReleasedWithin keeps records released in the closed window
// [now-days*24h, now]. Records without a known release date never pass,
// and neither do dates in the future.
func ReleasedWithin(days int, now time.Time) Predicate {
	cutoff := now.AddDate(0, 0, -days)
	return func(r Record) bool {
		if !r.HasReleaseDate() {
			return false
		}
		return !r.ReleaseDate.Before(cutoff) && !r.ReleaseDate.After(now)
	}
}

// Filter returns the records accepted by p, preserving input order.
// The input slice is never mutated.
func Filter(records []Record, p Predicate) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}
