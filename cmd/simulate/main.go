package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/swiss/internal/simulate"
	"github.com/okian/swiss/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL     = flag.String("url", simulate.DefaultBaseURL, "Base URL of the service")
		competitors = flag.Int("competitors", simulate.DefaultCompetitors, "Number of competitors to register (even)")
		rounds      = flag.Int("rounds", simulate.DefaultRounds, "Number of rounds to play")
		timeout     = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		seed        = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed deciding the winner of each pairing")
		verbose     = flag.Bool("verbose", false, "Log every match result")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:     *baseURL,
		Competitors: *competitors,
		Rounds:      *rounds,
		Timeout:     *timeout,
		Seed:        *seed,
		Verbose:     *verbose,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
