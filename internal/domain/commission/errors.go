package commission

import "errors"

// ErrInvalidRequest marks a request rejected before any computation.
var ErrInvalidRequest = errors.New("invalid commission request")
