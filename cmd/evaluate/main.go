// Command evaluate runs a single yield anomaly evaluation against a climate
// data service and prints the result.
//
// Usage:
//
//	go run ./cmd/evaluate \
//	  -data-url http://localhost:9000 \
//	  -crop maize -lat 41.25 -lon -95.75 -year 2003
//
// Instead of -year, pass -daily with a CSV file of 365 rows and three
// columns (tasmax, tasmin, pr) to evaluate an explicit climate year.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/agroclim/yield-emulator/internal/adapter/climate"
	"github.com/agroclim/yield-emulator/internal/domain"
	"github.com/agroclim/yield-emulator/internal/emulator"
	"github.com/agroclim/yield-emulator/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	dataURL := flag.String("data-url", "", "base URL of the climate data service")
	crop := flag.String("crop", "maize", "crop name")
	lat := flag.Float64("lat", 0, "latitude in degrees")
	lon := flag.Float64("lon", 0, "longitude in degrees")
	year := flag.Int("year", 0, "reference dataset year (mutually exclusive with -daily)")
	daily := flag.String("daily", "", "CSV file of 365 rows: tasmax,tasmin,pr")
	timeout := flag.Duration("timeout", 30*time.Second, "data service request timeout")
	flag.Parse()

	if *dataURL == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -data-url")
	}

	req := domain.EvaluationRequest{
		Crop: *crop,
		Lat:  *lat,
		Lon:  *lon,
	}
	if *year != 0 {
		req.Year = year
	}
	if *daily != "" {
		tasmax, tasmin, pr, err := readDailyCSV(*daily)
		if err != nil {
			return err
		}
		req.Tasmax, req.Tasmin, req.Pr = tasmax, tasmin, pr
	}

	logger := observability.NewLogger("warn", "text")
	client := climate.NewClient(*dataURL, *timeout, logger, nil)
	em := emulator.New(climate.NewCachedSource(client, 16, nil), logger)

	result, err := em.Evaluate(context.Background(), req)
	if err != nil {
		return err
	}

	fmt.Printf("%.6f\n", result.Anomaly)
	return nil
}

// readDailyCSV parses a three-column CSV (tasmax, tasmin, pr) into the
// explicit daily arrays. An optional header row is skipped.
func readDailyCSV(path string) (tasmax, tasmin, pr []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	for i, row := range rows {
		if len(row) != 3 {
			return nil, nil, nil, fmt.Errorf("%s row %d: want 3 columns, got %d", path, i+1, len(row))
		}
		if i == 0 {
			if _, headerErr := strconv.ParseFloat(row[0], 64); headerErr != nil {
				continue
			}
		}
		var day [3]float64
		for j, cell := range row {
			v, parseErr := strconv.ParseFloat(cell, 64)
			if parseErr != nil {
				return nil, nil, nil, fmt.Errorf("%s row %d column %d: %w", path, i+1, j+1, parseErr)
			}
			day[j] = v
		}
		tasmax = append(tasmax, day[0])
		tasmin = append(tasmin, day[1])
		pr = append(pr, day[2])
	}

	return tasmax, tasmin, pr, nil
}
