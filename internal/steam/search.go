package steam

import (
	"cmp"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// matchClass orders the coarse relevance bands: an exact name match beats a
// prefix match beats any other substring hit.
type matchClass int

const (
	classExact matchClass = iota
	classPrefix
	classSubstring
)

type scoredEntry struct {
	entry appEntry
	class matchClass
	jw    float64
}

// rankMatches returns the app-list entries whose name contains the query
// (case-insensitive), most relevant first. Within a relevance band, ties
// order by Jaro-Winkler similarity descending, then name, then id, so the
// same query over the same app list always yields the same sequence.
func rankMatches(query string, entries []appEntry) []appEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var scored []scoredEntry
	for _, e := range entries {
		name := strings.ToLower(e.Name)
		if !strings.Contains(name, q) {
			continue
		}
		class := classSubstring
		switch {
		case name == q:
			class = classExact
		case strings.HasPrefix(name, q):
			class = classPrefix
		}
		scored = append(scored, scoredEntry{
			entry: e,
			class: class,
			jw:    matchr.JaroWinkler(q, name, false),
		})
	}

	slices.SortStableFunc(scored, func(a, b scoredEntry) int {
		if c := cmp.Compare(a.class, b.class); c != 0 {
			return c
		}
		if c := cmp.Compare(b.jw, a.jw); c != 0 {
			return c
		}
		if c := strings.Compare(a.entry.Name, b.entry.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.entry.AppID, b.entry.AppID)
	})

	out := make([]appEntry, len(scored))
	for i, s := range scored {
		out[i] = s.entry
	}
	return out
}
