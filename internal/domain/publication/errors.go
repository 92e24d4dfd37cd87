package publication

import "errors"

// Sentinel kinds for publication errors.
var (
	ErrUnknownStatus     = errors.New("unknown publication status")
	ErrIllegalTransition = errors.New("cannot perform this action")
	ErrIllegalAction     = errors.New("action not allowed in current status")
)
