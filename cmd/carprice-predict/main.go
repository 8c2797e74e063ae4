// Command carprice-predict prices one car with the trained model.
//
//	carprice-predict -brand Toyota -fuel Petrol -service Yes -owner First \
//		-age 5 -engine 1500 -mileage 15
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ezoic/carprice/config"
	"github.com/ezoic/carprice/features"
	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/log"
	"github.com/ezoic/carprice/pricing"
)

// Input ranges offered by the prediction form.
const (
	minAge, maxAge         = 0, 30
	minEngine, maxEngine   = 800, 5000
	minMileage, maxMileage = 5.0, 30.0
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "carprice-predict: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("carprice-predict", flag.ContinueOnError)
	modelPath := fs.String("model", cfg.ModelPath, "model artifact path")
	brand := fs.String("brand", "Toyota", "brand")
	fuel := fs.String("fuel", "Petrol", "fuel type: Petrol, Diesel, Electric, Hybrid")
	service := fs.String("service", "Yes", "service history: Yes or No")
	owner := fs.String("owner", features.OwnerFirst, "owner type: "+strings.Join(features.OwnerTypes, ", "))
	age := fs.Int("age", 5, "car age in years")
	engine := fs.Int("engine", 1500, "engine size in cc")
	mileage := fs.Float64("mileage", 15, "mileage in km/l")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *age < minAge || *age > maxAge:
		return errors.NewValidationError("age", fmt.Sprintf("must be in [%d, %d]", minAge, maxAge), *age)
	case *engine < minEngine || *engine > maxEngine:
		return errors.NewValidationError("engine", fmt.Sprintf("must be in [%d, %d]", minEngine, maxEngine), *engine)
	case *mileage < minMileage || *mileage > maxMileage:
		return errors.NewValidationError("mileage", fmt.Sprintf("must be in [%g, %g]", minMileage, maxMileage), *mileage)
	}

	log.SetGlobalProvider(log.NewConsoleProvider(log.ToLogLevel(cfg.LogLevel)))
	cache, err := pricing.NewArtifactCache(cfg.CacheSize)
	if err != nil {
		return err
	}
	p, err := cache.Get(*modelPath)
	if err != nil {
		var nf *errors.NotFoundError
		if errors.As(err, &nf) {
			return errors.Wrap(err, "model file not found, run carprice-train first")
		}
		return err
	}

	in := pricing.Input{
		Brand:          *brand,
		FuelType:       *fuel,
		ServiceHistory: *service,
		OwnerType:      *owner,
		CarAge:         *age,
		EngineCC:       *engine,
		MileageKmpl:    *mileage,
	}
	price, err := p.PredictOne(in)
	if err != nil {
		return errors.Wrap(err, "prediction failed")
	}

	fmt.Fprintf(stdout, "Estimated Car Price: %s\n", pricing.FormatPrice(price))
	if b := p.BucketBrand(in.Brand); b != strings.TrimSpace(in.Brand) {
		fmt.Fprintf(stdout, "(brand %q priced as %q)\n", in.Brand, b)
	}
	return nil
}
