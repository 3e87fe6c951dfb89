package catalog

import "errors"

// Error taxonomy surfaced through every engine operation. Wrap these with
// fmt.Errorf("...: %w", err) so callers can branch with errors.Is.
var (
	// ErrInvalidArgument marks a caller mistake: an unknown sort key, a
	// negative budget, an empty liked list. The request must change
	// before a retry can succeed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a lookup that resolved nothing, such as an app
	// ID the store does not know.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable marks a failure of the catalog source
	// itself. Retrying later may succeed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
