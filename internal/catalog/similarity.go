package catalog

import "strings"

// ReferenceSet is a taste profile: the lowercased union of genres and tags
// gathered from the games a player likes, optionally widened with free-form
// preference terms.
type ReferenceSet map[string]struct{}

// NewReferenceSet builds the profile from liked records plus extra terms.
// Everything is lowercased and trimmed so matching is case-insensitive.
func NewReferenceSet(liked []Record, extra ...string) ReferenceSet {
	set := make(ReferenceSet)
	for _, r := range liked {
		for f := range r.Features() {
			set[f] = struct{}{}
		}
	}
	for _, term := range extra {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			set[term] = struct{}{}
		}
	}
	return set
}

// Empty reports whether the profile carries no terms at all.
func (s ReferenceSet) Empty() bool { return len(s) == 0 }

// Score measures how much of the profile a candidate covers: the fraction
// of reference terms present among the candidate's genres and tags. A
// candidate sharing every term scores 1.0, one sharing nothing scores 0.
// An empty profile scores every candidate 0.
func (s ReferenceSet) Score(r Record) float64 {
	if len(s) == 0 {
		return 0
	}
	hits := 0
	for f := range r.Features() {
		if _, ok := s[f]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(s))
}
