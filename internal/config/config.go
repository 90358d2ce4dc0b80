// Package config defines service configuration and its layered loader.
package config

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the data store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// PostgresURL is the connection string used by the postgres driver.
	PostgresURL string `koanf:"postgres_url"`

	// PostgresMaxConns caps the postgres pool; 0 keeps the pgx default.
	PostgresMaxConns int `koanf:"postgres_max_conns"`

	// IdempotencyCacheSize bounds the remembered match-report keys.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// MaxRequestBytes caps JSON request bodies.
	MaxRequestBytes int64 `koanf:"max_request_bytes"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		StoreDriver:          DriverMemory,
		SQLitePath:           "swiss.db",
		IdempotencyCacheSize: 10_000,
		MaxRequestBytes:      1 << 16,
	}
}
