package config_test

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/okian/swiss/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SWISS_ADDR", ":8080")
			_ = os.Setenv("SWISS_STORE_DRIVER", "sqlite")
			_ = os.Setenv("SWISS_SQLITE_PATH", "/tmp/event.db")
			_ = os.Setenv("SWISS_IDEMPOTENCY_CACHE_SIZE", "42")
			_ = os.Setenv("SWISS_LOG_JSON", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/event.db")
				convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 42)
				convey.So(cfg.LogJSON, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
store_driver: postgres
postgres_url: "postgres://localhost/swiss"
postgres_max_conns: 8
log_level: debug
`)
			_ = os.Setenv("SWISS_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverPostgres)
				convey.So(cfg.PostgresURL, convey.ShouldEqual, "postgres://localhost/swiss")
				convey.So(cfg.PostgresMaxConns, convey.ShouldEqual, 8)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 10_000) // From defaults
			})
		})

		convey.Convey("When both file and environment set a key", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nlog_level: warn\n")
			_ = os.Setenv("SWISS_CONFIG", tmpFile)
			_ = os.Setenv("SWISS_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("SWISS_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("SWISS_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("SWISS_IDEMPOTENCY_CACHE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate_PostgresMaxConns(t *testing.T) {
	convey.Convey("Given a postgres config", t, func() {
		cfg := config.New()
		cfg.StoreDriver = config.DriverPostgres
		cfg.PostgresURL = "postgres://localhost/swiss"

		convey.Convey("Then zero and the int32 maximum are accepted", func() {
			cfg.PostgresMaxConns = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			cfg.PostgresMaxConns = math.MaxInt32
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then a negative pool size is rejected", func() {
			cfg.PostgresMaxConns = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given configs that cannot start the service", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":    func(c *config.Config) { c.Addr = " " },
			"unknown store_driver":      func(c *config.Config) { c.StoreDriver = "mongo" },
			"sqlite_path is required":   func(c *config.Config) { c.StoreDriver = config.DriverSQLite; c.SQLitePath = "" },
			"postgres_url is required":  func(c *config.Config) { c.StoreDriver = config.DriverPostgres },
			"max_request_bytes must be": func(c *config.Config) { c.MaxRequestBytes = 0 },
		}

		tooManyConns := int64(math.MaxInt32) + 1
		cases["postgres_max_conns must be between"] = func(c *config.Config) { c.PostgresMaxConns = int(tooManyConns) }

		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"SWISS_CONFIG",
		"SWISS_ADDR",
		"SWISS_LOG_LEVEL",
		"SWISS_LOG_JSON",
		"SWISS_STORE_DRIVER",
		"SWISS_SQLITE_PATH",
		"SWISS_POSTGRES_URL",
		"SWISS_POSTGRES_MAX_CONNS",
		"SWISS_IDEMPOTENCY_CACHE_SIZE",
		"SWISS_MAX_REQUEST_BYTES",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "swiss-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
