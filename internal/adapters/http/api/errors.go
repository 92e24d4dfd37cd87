package api

import (
	"errors"
	"net/http"

	"github.com/adorzia/atelier/internal/adapters/repository"
	service "github.com/adorzia/atelier/internal/app"
	"github.com/adorzia/atelier/internal/domain/commission"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/rank"
	"github.com/adorzia/atelier/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limited")
)

// Error tags an error with the handler operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.message()
}

func (e *Error) message() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind != nil:
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// publicMessage is the message clients see: the error without its op tag.
func publicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.message()
	}
	return err.Error()
}

// illegalMove is the single message shown for refused status changes.
var illegalMove = errors.New("cannot perform this action")

// classify maps domain and repository errors to an HTTP status and error code.
// A non-nil public error replaces the message sent to the client.
func classify(err error) (status int, code string, public error) {
	switch {
	case errors.Is(err, publication.ErrIllegalTransition), errors.Is(err, publication.ErrIllegalAction):
		if errors.Is(err, service.ErrInvalidInput) {
			return http.StatusBadRequest, "bad_request", nil
		}
		return http.StatusConflict, "illegal_transition", illegalMove
	case errors.Is(err, repository.ErrStaleStatus):
		return http.StatusConflict, "stale_status", nil
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found", nil
	case errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrDuplicateEntry),
		errors.Is(err, repository.ErrFounderAlreadySet):
		return http.StatusConflict, "conflict", nil
	case errors.Is(err, repository.ErrFounderSoldOut):
		return http.StatusConflict, "sold_out", nil
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, scoring.ErrInvalidInput),
		errors.Is(err, commission.ErrInvalidRequest),
		errors.Is(err, repository.ErrInvalidAward),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, rank.ErrUnknownRank),
		errors.Is(err, rank.ErrNotFounder),
		errors.Is(err, publication.ErrUnknownStatus):
		return http.StatusBadRequest, "bad_request", nil
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", nil
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable", nil
	}
	return http.StatusInternalServerError, "internal_error", nil
}
