package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/adorzia/atelier/internal/adapters/repository"
	service "github.com/adorzia/atelier/internal/app"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/team"
)

func TestService_PublicationFlow(t *testing.T) {
	Convey("Given a project in draft", t, func() {
		ctx := context.Background()
		clk := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
		svc := newStartedService(ctx, service.WithClock(clk.now))
		Reset(func() { svc.Stop(ctx) })

		ps, err := svc.CreateProject(ctx, "p-1", "d-1")
		So(err, ShouldBeNil)
		So(ps.Status, ShouldEqual, publication.Draft)
		So(ps.Successors, ShouldResemble, []publication.Status{publication.PendingReview})
		So(ps.Info.DesignerEditable, ShouldBeTrue)

		Convey("Submitting starts the 48 hour review window", func() {
			ps, err := svc.ChangeStatus(ctx, "p-1", service.StatusChange{Status: "pending_review"})
			So(err, ShouldBeNil)
			So(ps.Status, ShouldEqual, publication.PendingReview)
			So(ps.AutoApproveAt, ShouldNotBeNil)
			So(ps.AutoApproveAt.Equal(clk.t.Add(48*time.Hour)), ShouldBeTrue)
			So(ps.AutoApproveDue, ShouldBeFalse)

			Convey("An early sweep approves nothing", func() {
				clk.advance(47 * time.Hour)
				res, err := svc.SweepAutoApprove(ctx)
				So(err, ShouldBeNil)
				So(res.Approved, ShouldEqual, 0)
			})

			Convey("After the deadline the sweep approves exactly once", func() {
				clk.advance(48 * time.Hour)
				ps, err := svc.ProjectStatus(ctx, "p-1")
				So(err, ShouldBeNil)
				So(ps.AutoApproveDue, ShouldBeTrue)

				res, err := svc.SweepAutoApprove(ctx)
				So(err, ShouldBeNil)
				So(res.Approved, ShouldEqual, 1)

				res, err = svc.SweepAutoApprove(ctx)
				So(err, ShouldBeNil)
				So(res.Approved, ShouldEqual, 0)

				ps, err = svc.ChangeStatus(ctx, "p-1", service.StatusChange{Action: "start_sampling", Actor: "ops"})
				So(err, ShouldBeNil)
				So(ps.Status, ShouldEqual, publication.Sampling)
				So(ps.StageProgress, ShouldEqual, 40)

				hist, err := svc.StatusHistory(ctx, "p-1")
				So(err, ShouldBeNil)
				So(hist, ShouldHaveLength, 3)
				So(hist[1].From, ShouldEqual, publication.PendingReview)
				So(hist[1].To, ShouldEqual, publication.Approved)
				So(hist[1].Actor, ShouldEqual, "auto-approve")
				So(hist[2].Actor, ShouldEqual, "ops")
			})

			Convey("A reviewer can reject and the designer can start over", func() {
				ps, err := svc.ChangeStatus(ctx, "p-1", service.StatusChange{Action: "reject", Notes: "off brief"})
				So(err, ShouldBeNil)
				So(ps.Status, ShouldEqual, publication.Rejected)
				So(ps.ReviewerNotes, ShouldEqual, "off brief")
				So(ps.ReviewedAt, ShouldNotBeNil)
				So(ps.StageProgress, ShouldEqual, 0)

				ps, err = svc.ChangeStatus(ctx, "p-1", service.StatusChange{Status: "draft"})
				So(err, ShouldBeNil)
				So(ps.Status, ShouldEqual, publication.Draft)
			})

			Convey("Actions not offered in the status are refused", func() {
				_, err := svc.ChangeStatus(ctx, "p-1", service.StatusChange{Action: "publish"})
				So(errors.Is(err, publication.ErrIllegalAction), ShouldBeTrue)
			})

			Convey("A stale expected status is refused", func() {
				_, err := svc.ChangeStatus(ctx, "p-1", service.StatusChange{
					Expected: "revision_requested",
					Status:   "pending_review",
				})
				So(errors.Is(err, repository.ErrStaleStatus), ShouldBeTrue)

				ps, err := svc.ProjectStatus(ctx, "p-1")
				So(err, ShouldBeNil)
				So(ps.Status, ShouldEqual, publication.PendingReview)
			})
		})

		Convey("Skipping ahead is an illegal transition", func() {
			_, err := svc.ChangeStatus(ctx, "p-1", service.StatusChange{Status: "published"})
			So(errors.Is(err, publication.ErrIllegalTransition), ShouldBeTrue)

			hist, err := svc.StatusHistory(ctx, "p-1")
			So(err, ShouldBeNil)
			So(hist, ShouldBeEmpty)
		})

		Convey("Malformed requests are invalid input", func() {
			_, err := svc.ChangeStatus(ctx, "p-1", service.StatusChange{Status: "archived"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.ChangeStatus(ctx, "p-1", service.StatusChange{Status: "pending_review", Action: "approve"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.ChangeStatus(ctx, "p-1", service.StatusChange{})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.ChangeStatus(ctx, "p-1", service.StatusChange{Action: "launch"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Unknown and duplicate projects are reported", func() {
			_, err := svc.ProjectStatus(ctx, "p-404")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = svc.CreateProject(ctx, "p-1", "d-2")
			So(errors.Is(err, repository.ErrAlreadyExists), ShouldBeTrue)
		})
	})
}

func TestService_PublicationStatuses(t *testing.T) {
	Convey("The status table is in display order with rejected last", t, func() {
		statuses := service.New().PublicationStatuses()
		So(statuses, ShouldHaveLength, 12)
		So(statuses[0].Status, ShouldEqual, publication.Draft)
		So(statuses[len(statuses)-1].Status, ShouldEqual, publication.Rejected)
	})
}

func TestService_TeamProgress(t *testing.T) {
	Convey("Given a four role team", t, func() {
		svc := service.New()
		st := service.TeamState{
			Roles:   []team.Role{"designer", "pattern_maker", "stylist", "photographer"},
			Members: []string{"ana", "ben", "cy", "dee", "eve"},
			Assignments: team.Assignments{
				"designer":      "ana",
				"pattern_maker": "ben",
				"stylist":       "cy",
				"photographer":  "dee",
			},
			Submissions: team.Submissions{
				"designer":      {Status: team.StatusSubmitted},
				"pattern_maker": {Status: team.StatusApproved},
				"stylist":       {Status: team.StatusApproved},
				"photographer":  {Status: team.StatusRevisionRequired},
			},
		}

		Convey("Three of four roles done is 75%", func() {
			out, err := svc.TeamProgress(st)
			So(err, ShouldBeNil)
			So(out.AllRolesAssigned, ShouldBeTrue)
			So(out.Progress, ShouldEqual, 75)
			So(out.DuplicateMembers, ShouldBeEmpty)
			So(out.Assignable["designer"], ShouldResemble, []string{"ana", "eve"})
		})

		Convey("A member holding two roles is reported", func() {
			st.Assignments["photographer"] = "ana"
			out, err := svc.TeamProgress(st)
			So(err, ShouldBeNil)
			So(out.AllRolesAssigned, ShouldBeFalse)
			So(out.DuplicateMembers, ShouldResemble, []string{"ana"})
		})

		Convey("Unknown submission states are rejected", func() {
			st.Submissions["stylist"] = team.RoleSubmission{Status: "done"}
			_, err := svc.TeamProgress(st)
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})
	})
}
