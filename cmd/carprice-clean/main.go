// Command carprice-clean normalizes missing-value sentinels in a used-car
// listings CSV, drops exact duplicate rows, adds car_age and writes the
// cleaned table.
//
//	carprice-clean [-derive] [input [output]]
//
// Paths default to CARPRICE_INPUT and CARPRICE_OUTPUT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ezoic/carprice/config"
	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/etl"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "carprice-clean: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("carprice-clean", flag.ContinueOnError)
	derive := fs.Bool("derive", false, "also add owner_type and brand_bucketed")
	in := fs.String("input", cfg.InputPath, "input CSV")
	out := fs.String("output", cfg.OutputPath, "output CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		*in = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		*out = fs.Arg(1)
	}

	log.SetGlobalProvider(log.NewConsoleProvider(log.ToLogLevel(cfg.LogLevel)))
	runner := etl.NewRunner(
		etl.WithDeriver(features.NewDeriver(features.WithBrandMinCount(cfg.BrandMinCount))),
	)
	report, err := runner.Run(ctx, *in, *out, *derive)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Original dataset rows: %d\n", report.InputRows)
	fmt.Fprintf(stdout, "Missing values in 'service_history': %d\n", report.MissingByColumn[dataset.ColServiceHistory])
	fmt.Fprintf(stdout, "Dataset shape after cleaning: (%d, %d)\n", report.OutputRows, report.Columns)
	fmt.Fprintf(stdout, "Duplicates removed: %d, malformed rows skipped: %d\n", report.Duplicates, report.SkippedCount())
	fmt.Fprintf(stdout, "Processed dataset saved to %s\n", report.OutputPath)
	return nil
}
