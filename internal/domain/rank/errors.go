package rank

import "errors"

// Sentinel kinds for rank lookups.
var (
	ErrUnknownRank = errors.New("unknown rank")
	ErrNotFounder  = errors.New("rank is not a founder tier")
)
