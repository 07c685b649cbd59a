// Command report prints a terminal summary of the ledger: health score,
// budget pacing, streaks, due recurring bills and the year in review.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"budgetlens/internal/config"
	"budgetlens/internal/logger"
	"budgetlens/internal/services/daterange"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/storage"
)

func main() {
	date := flag.String("date", "", "Reference date (YYYY-MM-DD), defaults to today")
	year := flag.Int("year", 0, "Year to review, defaults to the year of the reference date")
	flag.Parse()

	if err := run(*date, *year); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}

func run(date string, year int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Debug)

	now := daterange.Day(time.Now())
	if date != "" {
		if now, err = daterange.Parse(date); err != nil {
			return fmt.Errorf("invalid -date %q (expected YYYY-MM-DD)", date)
		}
	}
	if year == 0 {
		year = now.Year()
	}

	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		return err
	}
	if store.IsEncrypted() {
		password := cfg.Password
		if password == "" {
			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return fmt.Errorf("data directory is encrypted; set BUDGET_PASSWORD")
			}
			fmt.Fprint(os.Stderr, "Password: ")
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(raw)
		}
		if err := store.Unlock(password); err != nil {
			return err
		}
	}

	books, err := ledger.Open(store, log)
	if err != nil {
		return err
	}
	data, err := books.Snapshot()
	if err != nil {
		return err
	}

	return Render(os.Stdout, Build(data, cfg.Thresholds, now, year))
}
