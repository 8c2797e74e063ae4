// Command carprice-explore filters the cleaned listings and prints price
// statistics and the mean price per make year.
//
//	carprice-explore [-brand B] [-fuel F] [-year-min Y] [-year-max Y] [-search text] [-chart out.png]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ezoic/carprice/config"
	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/explore"
	"github.com/ezoic/carprice/pkg/log"
	"github.com/ezoic/carprice/pricing"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "carprice-explore: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("carprice-explore", flag.ContinueOnError)
	data := fs.String("data", cfg.OutputPath, "cleaned listings CSV")
	var f explore.Filter
	fs.StringVar(&f.Brand, "brand", explore.All, "exact brand")
	fs.StringVar(&f.FuelType, "fuel", explore.All, "exact fuel type")
	fs.IntVar(&f.YearMin, "year-min", 0, "earliest make year")
	fs.IntVar(&f.YearMax, "year-max", 0, "latest make year")
	fs.StringVar(&f.Search, "search", "", "case-insensitive text in any column")
	chart := fs.String("chart", "", "write the price trend chart to this file")
	list := fs.Bool("list", false, "print the available brands, fuel types and years")
	rows := fs.Int("rows", 0, "print up to this many matching listings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log.SetGlobalProvider(log.NewConsoleProvider(log.ToLogLevel(cfg.LogLevel)))
	cache, err := explore.NewTableCache(cfg.CacheSize)
	if err != nil {
		return err
	}
	t, err := cache.Get(*data)
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		fmt.Fprintln(stdout, "No data to display.")
		return nil
	}

	if *list {
		if err := printOptions(stdout, t); err != nil {
			return err
		}
	}

	filtered, err := f.Apply(t)
	if err != nil {
		return err
	}
	summary, err := explore.Summarize(filtered)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Listings: %d of %d\n", summary.Rows, t.Len())
	if summary.Empty() {
		fmt.Fprintln(stdout, "Average Price: -\nMax Price: -\nMin Price: -")
		return nil
	}
	fmt.Fprintf(stdout, "Average Price: %s\n", pricing.FormatPrice(summary.AvgPrice))
	fmt.Fprintf(stdout, "Max Price: %s\n", pricing.FormatPrice(summary.MaxPrice))
	fmt.Fprintf(stdout, "Min Price: %s\n", pricing.FormatPrice(summary.MinPrice))

	if *rows > 0 {
		printRows(stdout, filtered, *rows)
	}

	trend, err := explore.TrendByYear(filtered)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\nPrice Trend by Make Year")
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tListings\tAverage Price\t")
	for _, pt := range trend {
		fmt.Fprintf(tw, "%d\t%d\t%s\t\n", pt.Year, pt.N, pricing.FormatPrice(pt.AvgPrice))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if *chart != "" && len(trend) > 0 {
		if err := explore.SaveTrendChart(trend, "Price Trend by Make Year", *chart); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Chart saved to %s\n", *chart)
	}
	return nil
}

func printOptions(w io.Writer, t *dataset.Table) error {
	for _, col := range []string{dataset.ColBrand, dataset.ColFuelType} {
		opts, err := explore.Options(t, col)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", col, strings.Join(opts, ", "))
	}
	if lo, hi, ok := explore.YearRange(t); ok {
		fmt.Fprintf(w, "%s: %d-%d\n", dataset.ColMakeYear, lo, hi)
	}
	return nil
}

func printRows(w io.Writer, t *dataset.Table, limit int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for i := 0; i < t.Len() && i < limit; i++ {
		cells := make([]string, len(t.Columns))
		for j, v := range t.Row(i).Values() {
			cells[j] = v.String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}
