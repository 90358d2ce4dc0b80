package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/swiss/internal/domain/types"
	"github.com/okian/swiss/pkg/logger"
)

// Run plays a complete event against the server at cfg.BaseURL: reset,
// registration, cfg.Rounds rounds of Swiss pairings and a check of the
// standings after every round.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	log.Info(ctx, "starting swiss event simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("competitors", cfg.Competitors),
		logger.Int("rounds", cfg.Rounds),
		logger.Int64("seed", int64(cfg.Seed)),
	)

	// Step 1: Start from an empty tournament
	if err := c.reset(ctx); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	// Step 2: Register competitors
	for i := 1; i <= cfg.Competitors; i++ {
		if _, err := c.register(ctx, fmt.Sprintf("Player %03d", i)); err != nil {
			return nil, fmt.Errorf("register competitor %d: %w", i, err)
		}
		stats.Registered++
	}
	n, err := c.count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count competitors: %w", err)
	}
	if n != cfg.Competitors {
		return nil, verifyErr("server counts %d competitors, registered %d", n, cfg.Competitors)
	}

	rows, err := c.standings(ctx)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	if err := verifyStandings(rows, cfg.Competitors, 0); err != nil {
		return nil, err
	}

	// Step 3: Play the rounds
	for round := 1; round <= cfg.Rounds; round++ {
		if err := playRound(ctx, c, rng, rows, round, cfg.Verbose, stats); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		if rows, err = c.standings(ctx); err != nil {
			return nil, fmt.Errorf("standings after round %d: %w", round, err)
		}
		if err := verifyStandings(rows, cfg.Competitors, round); err != nil {
			return nil, fmt.Errorf("after round %d: %w", round, err)
		}
		stats.Rounds = round
		log.Info(ctx, "round complete",
			logger.Int("round", round),
			logger.Int("leaderWins", rows[0].Wins),
		)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, rows, stats)
	return stats, nil
}

// playRound pairs the current standings and reports a random winner for
// every pair. The first report of each round is sent twice to check that
// the server drops the duplicate.
func playRound(ctx context.Context, c *client, rng *rand.Rand, rows []types.Standing, round int, verbose bool, stats *Stats) error {
	pairs, err := c.pairings(ctx)
	if err != nil {
		return fmt.Errorf("pairings: %w", err)
	}
	if err := verifyPairings(pairs, rows); err != nil {
		return err
	}

	log := logger.Named("simulate")
	for k, p := range pairs {
		winner, loser := p.ID1, p.ID2
		if rng.IntN(2) == 1 {
			winner, loser = loser, winner
		}

		key := uuid.NewString()
		if _, err := c.report(ctx, winner, loser, key); err != nil {
			return fmt.Errorf("report pair %d: %w", k, err)
		}
		stats.MatchesPlayed++

		if k == 0 {
			duplicate, err := c.report(ctx, winner, loser, key)
			if err != nil {
				return fmt.Errorf("resend pair %d: %w", k, err)
			}
			if !duplicate {
				return verifyErr("resent report with key %s was recorded twice", key)
			}
			stats.DuplicatesSeen++
		}

		if verbose {
			log.Info(ctx, "match played",
				logger.Int("round", round),
				logger.Int64("winner", winner),
				logger.Int64("loser", loser),
			)
		}
	}
	return nil
}
