package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/adorzia/atelier/internal/adapters/repository"
	service "github.com/adorzia/atelier/internal/app"
	"github.com/adorzia/atelier/internal/domain/publication"
)

func TestError_Wrapping(t *testing.T) {
	Convey("Op-tagged errors keep both kind and cause", t, func() {
		cause := errors.New("boom")
		err := WrapKind("api.test", ErrBadRequest, cause)

		So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.test: bad request: boom")
		So(publicMessage(err), ShouldEqual, "bad request: boom")
		So(publicMessage(NewKind("api.test", ErrRateLimited)), ShouldEqual, "rate limited")
		So(Wrap("api.test", nil), ShouldBeNil)
	})
}

func TestClassify(t *testing.T) {
	Convey("Errors map to status codes", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("x: %w", publication.ErrIllegalTransition), http.StatusConflict, "illegal_transition"},
			{fmt.Errorf("x: %w", publication.ErrIllegalAction), http.StatusConflict, "illegal_transition"},
			{fmt.Errorf("%w: %w", service.ErrInvalidInput, publication.ErrIllegalAction), http.StatusBadRequest, "bad_request"},
			{repository.ErrStaleStatus, http.StatusConflict, "stale_status"},
			{Wrap("api.x", repository.ErrNotFound), http.StatusNotFound, "not_found"},
			{repository.ErrFounderSoldOut, http.StatusConflict, "sold_out"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
		}
		for _, c := range cases {
			status, code, _ := classify(c.err)
			So(status, ShouldEqual, c.status)
			So(code, ShouldEqual, c.code)
		}

		_, _, public := classify(publication.ErrIllegalTransition)
		So(public.Error(), ShouldEqual, "cannot perform this action")
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Status codes map to error types", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(409), ShouldEqual, "conflict")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(400), ShouldEqual, "medium")
	})
}

func TestCommissionRequest(t *testing.T) {
	Convey("Only a missing quantity defaults to one unit", t, func() {
		cost := 10.0
		zero := 0
		three := 3

		req, err := commissionRequest{DesignerID: "d", ProductionCost: &cost}.toRequest()
		So(err, ShouldBeNil)
		So(req.Quantity, ShouldEqual, 1)

		req, err = commissionRequest{DesignerID: "d", ProductionCost: &cost, SaleQuantity: &zero}.toRequest()
		So(err, ShouldBeNil)
		So(req.Quantity, ShouldEqual, 0)

		req, err = commissionRequest{DesignerID: "d", ProductionCost: &cost, SaleQuantity: &three}.toRequest()
		So(err, ShouldBeNil)
		So(req.Quantity, ShouldEqual, 3)
	})
}
