package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors should be registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.RecordCompetitorRegistered()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_competitors_registered_total")
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording tournament activity", func() {
			m.RecordCompetitorRegistered()
			m.RecordCompetitorRegistered()
			m.RecordMatchReported()
			m.RecordDuplicateReport()
			m.RecordStandingsComputed()
			m.RecordPairingsComputed()
			m.RecordReset()
			m.RecordPreconditionViolation("report_match")
			m.UpdateCompetitors(6)

			Convey("Then the collectors should hold the values", func() {
				So(testutil.ToFloat64(m.competitorsRegistered), ShouldEqual, 2)
				So(testutil.ToFloat64(m.matchesReported), ShouldEqual, 1)
				So(testutil.ToFloat64(m.duplicateReports), ShouldEqual, 1)
				So(testutil.ToFloat64(m.standingsComputed), ShouldEqual, 1)
				So(testutil.ToFloat64(m.pairingsComputed), ShouldEqual, 1)
				So(testutil.ToFloat64(m.resets), ShouldEqual, 1)
				So(testutil.ToFloat64(m.preconditionViolations.WithLabelValues("report_match")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.competitors), ShouldEqual, 6)
			})
		})

		Convey("When recording store operations", func() {
			m.RecordStoreOperation("add_competitor", 1.5, nil)
			m.RecordStoreOperation("add_competitor", 2.5, errors.New("disk full"))

			Convey("Then only failures should be counted as errors", func() {
				So(testutil.ToFloat64(m.storeErrors.WithLabelValues("add_competitor")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.storeLatency), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP traffic", func() {
			m.RecordHTTPRequest("standings", "GET", "200")
			m.RecordHTTPRequestDuration("standings", "GET", "200", 3)
			m.RecordErrorByType("client_error", "medium")
			m.RecordErrorByEndpoint("pairings", "GET", "client_error")

			Convey("Then the vectors should be populated", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("standings", "GET", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByType.WithLabelValues("client_error", "medium")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("pairings", "GET", "client_error")), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalManager(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then package helpers should not panic and the registry should gather", func() {
			So(Global(), ShouldNotBeNil)
			So(func() {
				RecordHTTPRequest("healthz", "GET", "200")
				RecordHTTPRequestDuration("healthz", "GET", "200", 1)
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("healthz", "GET", "server_error")
			}, ShouldNotPanic)
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
