package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/internal/checkconn"
	"github.com/okian/breezeapi/internal/config"
	"github.com/okian/breezeapi/pkg/logger"
)

const defaultTimeout = 60 * time.Second

func main() {
	var (
		limit   = flag.Int("limit", 0, "Maximum number of people to request (0 for all)")
		timeout = flag.Duration("timeout", defaultTimeout, "Bound on the whole check")
		verbose = flag.Bool("verbose", false, "Print every person found")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		checkconn.ShowHelp()
		return
	}

	os.Exit(run(*limit, *timeout, *verbose))
}

func run(limit int, timeout time.Duration, verbose bool) int {
	config.LoadDotEnv()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Error connecting to Breeze: " + err.Error() + "\n")
		return 1
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	client, err := breeze.NewHTTPClient(breeze.Options{
		BaseURL: cfg.URL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logger.Get(),
	})
	if err != nil {
		os.Stderr.WriteString("Error connecting to Breeze: " + err.Error() + "\n")
		return 1
	}

	_, err = checkconn.Run(ctx, client, checkconn.Config{
		Limit:   limit,
		Timeout: timeout,
		Verbose: verbose,
		Logger:  logger.Get(),
	}, os.Stdout)
	if err != nil {
		os.Stderr.WriteString("Error connecting to Breeze: " + err.Error() + "\n")
		return 1
	}
	return 0
}
