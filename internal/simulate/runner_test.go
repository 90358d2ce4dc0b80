package simulate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/swiss/internal/adapters/http/api"
	service "github.com/okian/swiss/internal/app"
	"github.com/okian/swiss/internal/simulate"
	"github.com/okian/swiss/pkg/logger"
	"github.com/okian/swiss/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer() *httptest.Server {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	svc := service.New(service.WithMetrics(m))
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestRun(t *testing.T) {
	Convey("Given a running tournament server", t, func() {
		srv := newServer()
		defer srv.Close()
		ctx := context.Background()

		cfg := &simulate.Config{
			BaseURL:     srv.URL,
			Competitors: 8,
			Rounds:      3,
			Timeout:     5 * time.Second,
			Seed:        42,
		}

		Convey("When a full event is simulated", func() {
			stats, err := simulate.Run(ctx, cfg)

			Convey("Then every round verifies", func() {
				So(err, ShouldBeNil)
				So(stats.Registered, ShouldEqual, 8)
				So(stats.Rounds, ShouldEqual, 3)
				So(stats.MatchesPlayed, ShouldEqual, 12)
				So(stats.DuplicatesSeen, ShouldEqual, 3)
			})

			Convey("And a second run starts from a clean tournament", func() {
				stats, err := simulate.Run(ctx, cfg)
				So(err, ShouldBeNil)
				So(stats.Registered, ShouldEqual, 8)
			})
		})

		Convey("When no rounds are played", func() {
			cfg.Rounds = 0
			stats, err := simulate.Run(ctx, cfg)

			Convey("Then registration alone verifies", func() {
				So(err, ShouldBeNil)
				So(stats.MatchesPlayed, ShouldEqual, 0)
			})
		})

		Convey("When the competitor count is odd", func() {
			cfg.Competitors = 7
			_, err := simulate.Run(ctx, cfg)

			Convey("Then the config is rejected before any request", func() {
				So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})

	Convey("Given no server", t, func() {
		srv := newServer()
		url := srv.URL
		srv.Close()

		Convey("Then the run fails on the first request", func() {
			_, err := simulate.Run(context.Background(), &simulate.Config{
				BaseURL:     url,
				Competitors: 2,
				Rounds:      1,
				Timeout:     time.Second,
			})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given simulator configs", t, func() {
		valid := simulate.Config{BaseURL: "http://x", Competitors: 4, Rounds: 2, Timeout: time.Second}
		So(valid.Validate(), ShouldBeNil)

		for _, mutate := range []func(*simulate.Config){
			func(c *simulate.Config) { c.BaseURL = "" },
			func(c *simulate.Config) { c.Competitors = 0 },
			func(c *simulate.Config) { c.Competitors = 5 },
			func(c *simulate.Config) { c.Rounds = -1 },
			func(c *simulate.Config) { c.Timeout = 0 },
		} {
			cfg := valid
			mutate(&cfg)
			So(errors.Is(cfg.Validate(), simulate.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}
