package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register on the given registry", func() {
				So(manager, ShouldNotBeNil)
				manager.totalDesigners.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPayoutBuckets([]float64{1, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.commissionsCalculated.Inc()

			Convey("Then names and labels reflect the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_pfx_commissions_calculated_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "atelier")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording commissions", func() {
			before := testutil.ToFloat64(globalManager.commissionsCalculated)
			RecordCommission(65)
			RecordCommission(12.5)

			Convey("Then the counter advances once per sale", func() {
				So(testutil.ToFloat64(globalManager.commissionsCalculated)-before, ShouldEqual, 2)
			})
		})

		Convey("When awarding style credits", func() {
			c := globalManager.styleCreditsAwarded.WithLabelValues("stylebox")
			before := testutil.ToFloat64(c)
			RecordStyleCreditsAwarded("stylebox", 52.5)
			RecordStyleCreditsAwarded("stylebox", 0)

			Convey("Then the amount is added and empty awards are skipped", func() {
				So(testutil.ToFloat64(c)-before, ShouldEqual, 52.5)
			})
		})

		Convey("When recording transitions", func() {
			c := globalManager.statusTransitions.WithLabelValues("draft", "pending_review")
			before := testutil.ToFloat64(c)
			RecordStatusTransition("draft", "pending_review")

			rejected := globalManager.transitionsRejected.WithLabelValues("stale")
			beforeRejected := testutil.ToFloat64(rejected)
			RecordTransitionRejected("stale")

			So(testutil.ToFloat64(c)-before, ShouldEqual, 1)
			So(testutil.ToFloat64(rejected)-beforeRejected, ShouldEqual, 1)
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordReconciliationFailure()
				RecordStyleCreditDuplicate()
				RecordStyleboxScored("hard")
				RecordRankFallback()
				RecordFounderPurchase("f1")
				UpdateTotalDesigners(42)
				RecordAutoApproval()
				RecordAutoApproveSweep(3.2)
				RecordHTTPRequest("/ranks", "GET", "200")
				RecordHTTPRequestDuration("/ranks", "GET", "200", 1.5)
				RecordRepositoryLatency("record_sale", 0.8)
				RecordErrorByComponent("http", "client_error")
				RecordErrorByEndpoint("/commission", "POST", "server_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.totalDesigners), ShouldEqual, 42)
		})
	})
}

func TestRegistryExposition(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordRankFallback()

		Convey("Then it exposes the rank fallback counter", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(strings.Join(names, ","), ShouldContainSubstring, "atelier_progression_rank_fallback_total")
		})
	})
}
