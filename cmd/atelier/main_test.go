package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/adorzia/atelier/internal/adapters/scheduler"
	"github.com/adorzia/atelier/internal/domain/scoring"
)

func run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	convey.Convey("Given the score command", t, func() {
		convey.Convey("When grading a hard stylebox delivered early", func() {
			out, err := run("score", "--difficulty", "hard", "--timeliness", "early",
				"--trend", "90", "--creative", "95", "--technical", "90", "--craft", "85")
			convey.So(err, convey.ShouldBeNil)

			var b scoring.Breakdown
			convey.So(json.Unmarshal([]byte(out), &b), convey.ShouldBeNil)
			convey.So(b.WeightedEvaluation, convey.ShouldEqual, 90.5)
			convey.So(b.Score, convey.ShouldEqual, 52.5)
		})

		convey.Convey("When the difficulty is unknown", func() {
			_, err := run("score", "--difficulty", "legendary")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When a score is out of range", func() {
			_, err := run("score", "--trend", "120")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSweepCommand(t *testing.T) {
	convey.Convey("Given an empty in-memory database", t, func() {
		t.Setenv("ATELIER_DATABASE_PATH", ":memory:")

		convey.Convey("Then a sweep examines nothing", func() {
			out, err := run("sweep")
			convey.So(err, convey.ShouldBeNil)

			var res scheduler.SweepResult
			convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)
			convey.So(res.Examined, convey.ShouldEqual, 0)
			convey.So(res.Approved, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv("ATELIER_MAX_LEADERBOARD_LIMIT", "0")

		convey.Convey("Then the sweep refuses to run", func() {
			_, err := run("sweep")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
