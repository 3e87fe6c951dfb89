// Package mock provides an in-memory mock implementation of
// [recommend.Accessor] for use in unit tests.
//
// The mock serves a fixed catalog snapshot and records every method call so
// tests can assert on fetch behaviour. Per-method error fields simulate
// upstream failures. It is safe for concurrent use.
//
// Example:
//
//	acc := &mock.Accessor{
//	    Catalog: []catalog.Record{{ID: 10, Name: "Half-Life"}},
//	}
//	engine := recommend.New(acc)
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/MrWong99/steamscout/internal/catalog"
	"github.com/MrWong99/steamscout/internal/recommend"
)

// Compile-time interface assertion.
var _ recommend.Accessor = (*Accessor)(nil)

// Accessor is a mock implementation of [recommend.Accessor] backed by fixed
// record slices.
//
// SearchByName matches by case-insensitive substring over Catalog, in slice
// order. GetByID looks up Catalog by ID. Browse returns Catalog, or Sale
// when the filter asks for the sale listing. All *Err fields, when non-nil,
// take precedence over the canned data.
type Accessor struct {
	mu sync.Mutex

	// Catalog is the full candidate set served by Browse and searched by
	// SearchByName and GetByID.
	Catalog []catalog.Record

	// Sale is served by Browse when SaleOnly is set.
	Sale []catalog.Record

	// SearchErr, GetErr, and BrowseErr force the corresponding method to
	// fail.
	SearchErr error
	GetErr    error
	BrowseErr error

	// SearchCalls accumulates the queries passed to SearchByName.
	SearchCalls []string

	// GetCalls accumulates the IDs passed to GetByID.
	GetCalls []catalog.AppID

	// BrowseCalls accumulates the filters passed to Browse.
	BrowseCalls []recommend.BrowseFilter
}

// SearchByName implements [recommend.Accessor].
func (a *Accessor) SearchByName(_ context.Context, query string) ([]catalog.Record, error) {
	a.mu.Lock()
	a.SearchCalls = append(a.SearchCalls, query)
	a.mu.Unlock()

	if a.SearchErr != nil {
		return nil, a.SearchErr
	}
	var hits []catalog.Record
	for _, r := range a.Catalog {
		if strings.Contains(strings.ToLower(r.Name), strings.ToLower(query)) {
			hits = append(hits, r)
		}
	}
	return hits, nil
}

// GetByID implements [recommend.Accessor].
func (a *Accessor) GetByID(_ context.Context, id catalog.AppID) (catalog.Record, error) {
	a.mu.Lock()
	a.GetCalls = append(a.GetCalls, id)
	a.mu.Unlock()

	if a.GetErr != nil {
		return catalog.Record{}, a.GetErr
	}
	for _, r := range a.Catalog {
		if r.ID == id {
			return r, nil
		}
	}
	return catalog.Record{}, catalog.ErrNotFound
}

// Browse implements [recommend.Accessor].
func (a *Accessor) Browse(_ context.Context, f recommend.BrowseFilter) ([]catalog.Record, error) {
	a.mu.Lock()
	a.BrowseCalls = append(a.BrowseCalls, f)
	a.mu.Unlock()

	if a.BrowseErr != nil {
		return nil, a.BrowseErr
	}
	if f.SaleOnly {
		return a.Sale, nil
	}
	return a.Catalog, nil
}
