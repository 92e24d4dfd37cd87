package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidLimit      = errors.New("invalid leaderboard limit")
	ErrInvalidAward      = errors.New("invalid style credit award")
	ErrDuplicateEntry    = errors.New("ledger entry id already used by another designer")
	ErrStaleStatus       = errors.New("publication status changed concurrently")
	ErrFounderAlreadySet = errors.New("designer already holds a founder tier")
	ErrFounderSoldOut    = errors.New("founder tier has no slots left")
)
