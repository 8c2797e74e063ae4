// Command carprice-train fits the price model on the cleaned listings and
// writes the model artifact.
//
//	carprice-train [-model forest|linear] [-data path] [-out path]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ezoic/carprice/config"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/log"
	"github.com/ezoic/carprice/pricing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "carprice-train: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("carprice-train", flag.ContinueOnError)
	kind := fs.String("model", pricing.KindForest, "regressor: forest or linear")
	data := fs.String("data", cfg.OutputPath, "cleaned listings CSV")
	out := fs.String("out", cfg.ModelPath, "model artifact path")
	trees := fs.Int("trees", pricing.DefaultNEstimators, "forest size")
	depth := fs.Int("max-depth", pricing.DefaultMaxDepth, "maximum tree depth")
	seed := fs.Int64("seed", pricing.DefaultSeed, "split and forest seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log.SetGlobalProvider(log.NewConsoleProvider(log.ToLogLevel(cfg.LogLevel)))
	trainer := pricing.NewTrainer(
		pricing.WithModelKind(*kind),
		pricing.WithForest(*trees, *depth, pricing.DefaultMinSamplesLeaf),
		pricing.WithSeed(*seed),
		pricing.WithDeriver(features.NewDeriver(features.WithBrandMinCount(cfg.BrandMinCount))),
	)
	res, err := trainer.TrainFile(ctx, *data, *out)
	if err != nil {
		return err
	}

	md := res.Artifact.Metadata
	fmt.Fprintf(stdout, "Model: %s (run %s)\n", md.ModelType, md.RunID)
	fmt.Fprintf(stdout, "Train/test rows: %d/%d, skipped: %d\n", md.NTrain, md.NTest, len(res.Skipped))
	fmt.Fprintf(stdout, "MAE: %.2f\n", md.Performance.MAE)
	fmt.Fprintf(stdout, "R2 Score: %.4f\n", md.Performance.R2)
	fmt.Fprintf(stdout, "Model saved to %s\n", *out)
	return nil
}
