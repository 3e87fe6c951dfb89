package catalog

import (
	"errors"
	"testing"
	"time"
)

func ids(records []Record) []AppID {
	out := make([]AppID, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func assertOrder(t *testing.T, got []Record, want []AppID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ranked %d records, want %d: %v", len(got), len(want), ids(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("rank order = %v, want %v", ids(got), want)
		}
	}
}

func TestRankByRating(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Name: "Mid", Rating: ptr(70.0)},
		{ID: 2, Name: "Unrated"},
		{ID: 3, Name: "Top", Rating: ptr(95.0)},
		{ID: 4, Name: "Also Mid", Rating: ptr(70.0)},
	}

	got := RankByRating(records)

	// Descending by rating, ties by name, unrated last.
	assertOrder(t, got, []AppID{3, 4, 1, 2})
}

func TestRankByRatingIDBreaksNameTie(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 9, Name: "Same", Rating: ptr(80.0)},
		{ID: 2, Name: "Same", Rating: ptr(80.0)},
	}

	got := RankByRating(records)
	assertOrder(t, got, []AppID{2, 9})
}

func TestRankByReleaseDate(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Name: "Old", ReleaseDate: date(2019, time.March, 1)},
		{ID: 2, Name: "Undated"},
		{ID: 3, Name: "New", ReleaseDate: date(2024, time.January, 5)},
		{ID: 4, Name: "A Same Day", ReleaseDate: date(2019, time.March, 1)},
	}

	got := RankByReleaseDate(records)

	// Newest first, same-day ties by name, undated last.
	assertOrder(t, got, []AppID{3, 4, 1, 2})
}

func TestRankByPopularity(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Name: "Niche", Popularity: ptr(int64(120))},
		{ID: 2, Name: "Hit", Popularity: ptr(int64(250000))},
		{ID: 3, Name: "Unknown"},
	}

	got := RankByPopularity(records)
	assertOrder(t, got, []AppID{2, 1, 3})
}

func TestRankBySimilarity(t *testing.T) {
	t.Parallel()

	ref := NewReferenceSet(nil, "action", "roguelike", "co-op")
	records := []Record{
		{ID: 1, Name: "Partial", Genres: []string{"Action"}},
		{ID: 2, Name: "Full", Genres: []string{"Action", "Roguelike"}, Tags: []string{"Co-op"}},
		{ID: 3, Name: "None", Genres: []string{"Sports"}},
		{ID: 4, Name: "Also Partial", Genres: []string{"Action"}},
	}

	got := RankBySimilarity(records, ref)

	// Full coverage first, equal scores tie on name, zero overlap last.
	assertOrder(t, got, []AppID{2, 4, 1, 3})

	if score := ref.Score(records[1]); score != 1.0 {
		t.Errorf("full-coverage candidate scored %v, want 1.0", score)
	}
}

func TestRankDispatch(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Name: "B", Rating: ptr(50.0)},
		{ID: 2, Name: "A", Rating: ptr(90.0)},
	}

	got, err := Rank(records, SortByRating)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}
	assertOrder(t, got, []AppID{2, 1})

	if _, err := Rank(records, SortKey("alphabetical")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Rank with unknown key returned %v, want ErrInvalidArgument", err)
	}
}

func TestSortKeyIsValid(t *testing.T) {
	t.Parallel()

	for _, k := range []SortKey{SortByRating, SortByPopularity, SortByReleaseDate} {
		if !k.IsValid() {
			t.Errorf("SortKey %q should be valid", k)
		}
	}
	if SortKey("similarity").IsValid() {
		t.Error("similarity is not a caller-facing sort key")
	}
}

func TestRankIsDeterministicAcrossInputOrder(t *testing.T) {
	t.Parallel()

	a := Record{ID: 1, Name: "Alpha", Rating: ptr(80.0)}
	b := Record{ID: 2, Name: "Beta", Rating: ptr(80.0)}
	c := Record{ID: 3, Name: "Gamma"}

	permutations := [][]Record{
		{a, b, c},
		{c, b, a},
		{b, c, a},
	}
	want := []AppID{1, 2, 3}
	for _, perm := range permutations {
		assertOrder(t, RankByRating(perm), want)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 2, Name: "B", Rating: ptr(10.0)},
		{ID: 1, Name: "A", Rating: ptr(90.0)},
	}

	RankByRating(records)

	if records[0].ID != 2 || records[1].ID != 1 {
		t.Errorf("RankByRating mutated its input: %v", ids(records))
	}
}
