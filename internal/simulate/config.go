// Package simulate drives a running tournament server through a complete
// Swiss event and checks the standings it reports.
package simulate

import (
	"errors"
	"time"
)

// Defaults for the simulator flags.
const (
	DefaultBaseURL     = "http://localhost:9080"
	DefaultCompetitors = 16
	DefaultRounds      = 4
	DefaultTimeout     = 10 * time.Second
)

// ErrInvalidConfig reports a simulator setting that cannot run an event.
var ErrInvalidConfig = errors.New("invalid simulator config")

// Config holds configuration for a simulated event.
type Config struct {
	BaseURL     string        // Base URL of the service
	Competitors int           // Number of competitors to register; must be even
	Rounds      int           // Number of rounds to play
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Seed for the winner of each pairing
	Verbose     bool          // Log every pairing and result
}

// Validate checks that the event can be played.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("url must not be empty"))
	case c.Competitors < 2 || c.Competitors%2 != 0:
		return errors.Join(ErrInvalidConfig, errors.New("competitors must be an even number of at least 2"))
	case c.Rounds < 0:
		return errors.Join(ErrInvalidConfig, errors.New("rounds must not be negative"))
	case c.Timeout <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("timeout must be positive"))
	}
	return nil
}

// Stats summarises a simulated event.
type Stats struct {
	Registered     int
	MatchesPlayed  int
	DuplicatesSeen int
	Rounds         int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
