package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/swiss/internal/adapters/repository"
	"github.com/okian/swiss/internal/adapters/repository/sqlite"
	app "github.com/okian/swiss/internal/app"
	"github.com/okian/swiss/internal/config"
	"github.com/okian/swiss/internal/domain/model"
	"github.com/okian/swiss/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given the store drivers", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the memory driver is selected", func() {
			store, err := openStore(ctx, cfg)

			convey.Convey("Then an in-memory store is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sqlite driver is selected", func() {
			cfg.StoreDriver = config.DriverSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "swiss.db")
			store, err := openStore(ctx, cfg)

			convey.Convey("Then a sqlite store is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				s, ok := store.(*sqlite.Store)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the postgres url is unreachable", func() {
			cfg.StoreDriver = config.DriverPostgres
			cfg.PostgresURL = "postgres://localhost:99999/swiss"
			_, err := openStore(ctx, cfg)

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "mongo"
			_, err := openStore(ctx, cfg)

			convey.Convey("Then it reports an invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// unstartableStore fails the startup count and records whether it was closed.
type unstartableStore struct {
	*repository.MemoryStore
	closed int
}

func (s *unstartableStore) CountCompetitors(context.Context) (int, error) {
	return 0, errors.New("connection refused")
}

func (s *unstartableStore) Close() error {
	s.closed++
	return nil
}

func TestStartService(t *testing.T) {
	convey.Convey("Given an opened store", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the service starts", func() {
			svc, err := startService(ctx, cfg, repository.NewMemoryStore())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the service reports it is running", func() {
				convey.So(svc.GetStats(ctx)["started"], convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the service fails to start", func() {
			store := &unstartableStore{MemoryStore: repository.NewMemoryStore()}
			svc, err := startService(ctx, cfg, store)

			convey.Convey("Then the store is closed and the failure returned", func() {
				convey.So(svc, convey.ShouldBeNil)
				convey.So(errors.Is(err, model.ErrStore), convey.ShouldBeTrue)
				convey.So(store.closed, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the application mux", t, func() {
		ctx := context.Background()
		mux := newMux(ctx, config.New(), app.New())

		for _, path := range []string{"/api-docs", "/openapi.yaml", "/standings", "/pairings", "/competitors/count", "/stats", "/healthz"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a service metrics updater", t, func() {
		svc := app.New()

		convey.Convey("Then it returns once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})
	})
}
