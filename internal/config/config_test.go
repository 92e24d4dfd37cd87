package config_test

import (
	"errors"
	"testing"

	"github.com/adorzia/atelier/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DatabasePath, convey.ShouldEqual, "atelier.db")
			convey.So(cfg.AutoApproveEnabled, convey.ShouldBeTrue)
			convey.So(cfg.AutoApproveSchedule, convey.ShouldEqual, "@every 5m")
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a config with an invalid field", t, func() {
		cfg := config.New()
		cfg.MaxLeaderboardLimit = 0

		convey.Convey("Then validation reports ErrInvalidConfig", func() {
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given the poller enabled without a schedule", t, func() {
		cfg := config.New()
		cfg.AutoApproveSchedule = ""

		convey.So(cfg.Validate(), convey.ShouldNotBeNil)

		convey.Convey("Then disabling the poller makes it valid", func() {
			cfg.AutoApproveEnabled = false
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
