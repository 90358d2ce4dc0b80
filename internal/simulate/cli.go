package simulate

import (
	"context"
	"os"

	"github.com/okian/swiss/internal/domain/types"
	"github.com/okian/swiss/pkg/logger"
)

const topRows = 5

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Swiss Tournament Simulator
==========================

Plays a complete Swiss-system event against a running server and verifies
the standings and pairings it reports after every round.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -competitors int
        Number of competitors to register, must be even (default 16)
  -rounds int
        Number of rounds to play (default 4)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Seed deciding the winner of each pairing (default: current time)
  -verbose
        Log every match result
  -help
        Show this help message

Examples:
  # Eight players, three rounds
  go run ./cmd/simulate -competitors 8 -rounds 3

  # Reproducible run against another host
  go run ./cmd/simulate -url http://localhost:8080 -seed 42 -verbose
`)
}

func displayFinalStats(ctx context.Context, log logger.Logger, rows []types.Standing, stats *Stats) {
	top := min(topRows, len(rows))
	for i := 0; i < top; i++ {
		log.Info(ctx, "standing",
			logger.Int("place", i+1),
			logger.String("name", rows[i].Name),
			logger.Int("wins", rows[i].Wins),
			logger.Int("matches", rows[i].Matches),
		)
	}

	log.Info(ctx, "final statistics",
		logger.Int("registered", stats.Registered),
		logger.Int("rounds", stats.Rounds),
		logger.Int("matchesPlayed", stats.MatchesPlayed),
		logger.Int("duplicatesSeen", stats.DuplicatesSeen),
		logger.String("duration", stats.Duration.String()),
	)
}
