package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/adorzia/atelier/internal/adapters/repository"
	"github.com/adorzia/atelier/internal/adapters/scheduler"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/rank"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// staleStore reports every transition as stale, like a reviewer who got there first.
type staleStore struct {
	due []publication.Record
}

func (s *staleStore) ListDueForAutoApprove(context.Context, time.Time, int) ([]publication.Record, error) {
	return s.due, nil
}

func (s *staleStore) TransitionStatus(context.Context, repository.Transition) (publication.Record, error) {
	return publication.Record{}, repository.ErrStaleStatus
}

type brokenStore struct{}

func (brokenStore) ListDueForAutoApprove(context.Context, time.Time, int) ([]publication.Record, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) TransitionStatus(context.Context, repository.Transition) (publication.Record, error) {
	return publication.Record{}, nil
}

func TestAutoApprover_Sweep(t *testing.T) {
	Convey("Given projects waiting in review", t, func() {
		ctx := context.Background()
		clk := &testClock{now: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)}
		machine := publication.NewMachine()

		store, err := repository.Open(ctx, ":memory:", rank.NewLedger(), machine, repository.WithClock(clk.Now))
		So(err, ShouldBeNil)
		defer store.Close()

		for _, id := range []string{"p-1", "p-2", "p-3"} {
			_, err := store.CreateProject(ctx, id, "d-1")
			So(err, ShouldBeNil)
			_, err = store.TransitionStatus(ctx, repository.Transition{ProjectID: id, To: publication.PendingReview})
			So(err, ShouldBeNil)
		}
		clk.Advance(12 * time.Hour)
		_, err = store.CreateProject(ctx, "p-late", "d-1")
		So(err, ShouldBeNil)
		_, err = store.TransitionStatus(ctx, repository.Transition{ProjectID: "p-late", To: publication.PendingReview})
		So(err, ShouldBeNil)

		approver := scheduler.NewAutoApprover(store, machine, scheduler.WithClock(clk.Now), scheduler.WithBatchSize(2))

		Convey("When the deadline has not passed", func() {
			res, err := approver.Sweep(ctx)

			So(err, ShouldBeNil)
			So(res.Approved, ShouldEqual, 0)
		})

		Convey("When 48 hours have passed for the first three", func() {
			clk.Advance(36 * time.Hour)
			res, err := approver.Sweep(ctx)

			Convey("Then they are approved across batches", func() {
				So(err, ShouldBeNil)
				So(res.Approved, ShouldEqual, 3)

				rec, err := store.GetProject(ctx, "p-1")
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, publication.Approved)
				So(rec.ReviewedAt, ShouldNotBeNil)

				late, err := store.GetProject(ctx, "p-late")
				So(err, ShouldBeNil)
				So(late.Status, ShouldEqual, publication.PendingReview)
			})

			Convey("Then a second sweep is a no-op", func() {
				again, err := approver.Sweep(ctx)
				So(err, ShouldBeNil)
				So(again.Approved, ShouldEqual, 0)

				hist, err := store.StatusHistory(ctx, "p-1")
				So(err, ShouldBeNil)
				So(len(hist), ShouldEqual, 2)
				So(hist[1].Actor, ShouldEqual, "auto-approve")
			})
		})

		Convey("When a reviewer acted first", func() {
			_, err := store.TransitionStatus(ctx, repository.Transition{
				ProjectID: "p-2", Expected: publication.PendingReview, To: publication.Rejected,
			})
			So(err, ShouldBeNil)
			clk.Advance(36 * time.Hour)

			res, err := approver.Sweep(ctx)

			Convey("Then the reviewer's decision stands", func() {
				So(err, ShouldBeNil)
				So(res.Approved, ShouldEqual, 2)

				rec, err := store.GetProject(ctx, "p-2")
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, publication.Rejected)
			})
		})
	})
}

func TestAutoApprover_Races(t *testing.T) {
	Convey("Given a store where every transition loses the race", t, func() {
		submitted := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		store := &staleStore{due: []publication.Record{
			{ProjectID: "p-1", Status: publication.PendingReview, SubmittedAt: &submitted},
		}}
		approver := scheduler.NewAutoApprover(store, publication.NewMachine(),
			scheduler.WithClock(func() time.Time { return submitted.Add(72 * time.Hour) }))

		res, err := approver.Sweep(context.Background())

		So(err, ShouldBeNil)
		So(res.Approved, ShouldEqual, 0)
		So(res.Skipped, ShouldEqual, 1)
	})

	Convey("Given a failing store", t, func() {
		approver := scheduler.NewAutoApprover(brokenStore{}, publication.NewMachine())

		_, err := approver.Sweep(context.Background())

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "disk on fire")
	})
}

func TestAutoApprover_Lifecycle(t *testing.T) {
	Convey("Given an approver with a bad schedule", t, func() {
		approver := scheduler.NewAutoApprover(&staleStore{}, publication.NewMachine(), scheduler.WithSchedule("not a cron spec"))

		So(approver.Start(context.Background()), ShouldNotBeNil)
	})

	Convey("Given a started approver", t, func() {
		ctx := context.Background()
		approver := scheduler.NewAutoApprover(&staleStore{}, publication.NewMachine(), scheduler.WithSchedule("@every 1h"))
		So(approver.Start(ctx), ShouldBeNil)

		Convey("Then starting twice fails and shutdown stops it", func() {
			So(approver.Start(ctx), ShouldNotBeNil)

			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			So(approver.Shutdown(shutdownCtx), ShouldBeNil)
			So(approver.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}
