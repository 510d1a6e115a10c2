// Command regatta-load drives a running regattad with generated races and
// checks the scoreboard it serves.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/regatta/internal/loadtest"
	"github.com/okian/regatta/pkg/logger"
)

// Default configuration constants.
const (
	defaultSkippers    = 30
	defaultRaces       = 12
	defaultAbsentRate  = 0.05
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "regatta-load",
		Usage: "Submit generated races to a regatta service and verify its scores",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:9080", Usage: "Base URL of the service"},
			&cli.IntFlag{Name: "skippers", Value: defaultSkippers, Usage: "Number of skippers to create"},
			&cli.IntFlag{Name: "races", Value: defaultRaces, Usage: "Number of races to submit"},
			&cli.Float64Flag{Name: "absent-rate", Value: defaultAbsentRate, Usage: "Chance of a DNS or DNF per skipper and race"},
			&cli.IntFlag{Name: "workers", Value: runtime.NumCPU() * defaultWorkers, Usage: "Number of concurrent submitters"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "HTTP request timeout"},
			&cli.DurationFlag{Name: "test-timeout", Value: defaultTestTimeout, Usage: "Overall run timeout"},
			&cli.Uint64Flag{Name: "seed", Usage: "Seed for the generated results (default: current time)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Save the generated sheet to this file"},
			&cli.BoolFlag{Name: "live", Value: true, Usage: "Follow the live feed while submitting"},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.Bool("verbose") {
				_ = logger.SetLevelString("debug")
			}
			seed := cCtx.Uint64("seed")
			if !cCtx.IsSet("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			cfg := &loadtest.Config{
				BaseURL:    cCtx.String("url"),
				Skippers:   cCtx.Int("skippers"),
				Races:      cCtx.Int("races"),
				AbsentRate: cCtx.Float64("absent-rate"),
				Workers:    cCtx.Int("workers"),
				Timeout:    cCtx.Duration("timeout"),
				Seed:       seed,
				OutputFile: cCtx.String("output"),
				Live:       cCtx.Bool("live"),
			}

			ctx, cancel := context.WithTimeout(cCtx.Context, cCtx.Duration("test-timeout"))
			defer cancel()
			_, err := loadtest.Run(ctx, cfg)
			return err
		},
	}
}
