// Package checkconn verifies that a Breeze account is reachable with the
// configured credentials by listing its people.
package checkconn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/pkg/logger"
)

// Config holds options for a connectivity check.
type Config struct {
	Limit   int           // Maximum people to request, 0 for all
	Timeout time.Duration // Bound on the whole check
	Verbose bool          // Print each person found
	Logger  logger.Logger // Defaults to a no-op logger
}

// Result summarises a successful check.
type Result struct {
	People   []breeze.Person
	Duration time.Duration
}

// Run lists people through client and writes a short report to out.
func Run(ctx context.Context, client breeze.PeopleClient, cfg Config, out io.Writer) (*Result, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	q := breeze.PeopleQuery{}
	if cfg.Limit > 0 {
		limit := cfg.Limit
		q.Limit = &limit
	}

	start := time.Now()
	raw, err := client.GetPeople(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}

	var people []breeze.Person
	if err := json.Unmarshal(raw, &people); err != nil {
		return nil, fmt.Errorf("decoding people: %w", err)
	}

	res := &Result{People: people, Duration: time.Since(start)}
	l := cfg.Logger
	if l == nil {
		l = logger.NewNop()
	}
	l.Info(ctx, "breeze connectivity check passed",
		logger.Int("people", len(people)),
		logger.Duration("duration", res.Duration))

	fmt.Fprintln(out, "Successfully connected to Breeze!")
	fmt.Fprintf(out, "Found %d people in the database\n", len(people))
	if cfg.Verbose {
		for _, p := range people {
			fmt.Fprintf(out, "  %s\t%s %s\n", p.ID, p.FirstName, p.LastName)
		}
	}
	return res, nil
}

// ShowHelp prints usage information for the connectivity check.
func ShowHelp() {
	os.Stdout.WriteString(`Breeze connectivity check
=========================

Loads the service configuration (.env, BREEZE_CONFIG, BREEZE_* env vars),
lists people from the configured Breeze account and reports how many were found.

Usage:
  go run cmd/breeze-check/main.go [options]

Options:
  -limit int
        Maximum number of people to request (default 0, all)
  -timeout duration
        Bound on the whole check (default 60s)
  -verbose
        Print every person found
  -help
        Show this help message

Examples:
  BREEZE_URL=https://demo.breezechms.com BREEZE_API_KEY=secret go run cmd/breeze-check/main.go
  go run cmd/breeze-check/main.go -limit 10 -verbose
`)
}
