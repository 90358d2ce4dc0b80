package config_test

import (
	"testing"

	"github.com/okian/swiss/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxRequestBytes, convey.ShouldEqual, 1<<16)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
