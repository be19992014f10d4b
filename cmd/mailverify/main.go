// Command mailverify validates email addresses given as arguments or on
// standard input, one per line, and prints the results as JSON or CSV.
//
//	mailverify user@example.com other@example.org
//	mailverify -csv < list.txt > results.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/optimode/mailverify"
	"github.com/optimode/mailverify/internal/config"
	"github.com/optimode/mailverify/internal/report"
)

type validatorFactory func(cfg *config.Config, logger *zap.Logger) mailverify.AddressValidator

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newValidator := func(cfg *config.Config, logger *zap.Logger) mailverify.AddressValidator {
		return cfg.NewValidator(logger)
	}
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, newValidator); err != nil {
		fmt.Fprintln(os.Stderr, "mailverify:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, newValidator validatorFactory) error {
	var asCSV bool
	cfg, err := config.Load("mailverify", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&asCSV, "csv", false, "print a CSV table instead of JSON")
	})
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	emails := cfg.Args
	if len(emails) == 0 {
		if emails, err = report.ReadAddresses(stdin); err != nil {
			return err
		}
	}
	if len(emails) == 0 {
		return errors.New("no email addresses given")
	}

	set := mailverify.NewBulk(newValidator(cfg, logger), cfg.BulkOptions(logger)).
		Run(ctx, emails, mailverify.DefaultChunkSize(len(emails)), cfg.MaxRetries)

	if asCSV {
		return report.WriteCSV(stdout, set)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}
