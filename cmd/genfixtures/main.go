// Command genfixtures writes a small synthetic climate dataset as JSON
// files laid out exactly like the data service's URL space, so serving the
// output directory with any static file server gives the emulator a
// complete local dataset for development and end-to-end testing.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data/fixtures -crop maize -years 2000:2002
//
// The generator is deterministic: the same flags always produce the same
// fixture files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Fixture grid: a 4x4 patch of 0.5-degree cells over the US corn belt.
// The corner cell is left as ocean/no-data to exercise the land check.
const (
	gridSize = 4
	firstLat = 40.25
	firstLon = -96.25
	crop     = "maize"
	randSeed = 1983
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for fixture files")
	cropName := flag.String("crop", crop, "crop name used in output paths")
	years := flag.String("years", "2000:2002", "reference year range as first:last")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	firstYear, lastYear, err := parseYears(*years)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(randSeed))
	nPixels := gridSize * gridSize

	if err := writeJSON(*outDir, "grid/latitudes", valuesDoc(axis(firstLat))); err != nil {
		return err
	}
	if err := writeJSON(*outDir, "grid/longitudes", valuesDoc(axis(firstLon))); err != nil {
		return err
	}

	cropDir := filepath.Join("crops", *cropName)
	if err := writeJSON(*outDir, filepath.Join(cropDir, "planting-day"), nullableDoc(plantingDays(rng, nPixels))); err != nil {
		return err
	}
	if err := writeJSON(*outDir, filepath.Join(cropDir, "season-length"), nullableDoc(seasonLengths(rng, nPixels))); err != nil {
		return err
	}
	if err := writeJSON(*outDir, filepath.Join(cropDir, "coefficients"), pixelsDoc(coefficients(rng, nPixels))); err != nil {
		return err
	}
	if err := writeJSON(*outDir, filepath.Join(cropDir, "indicators"), intPixelsDoc(indicators(rng, nPixels))); err != nil {
		return err
	}

	variables := []struct {
		name string
		gen  func(*rand.Rand) []float64
	}{
		{"tasmax", tasmaxYear},
		{"tasmin", tasminYear},
		{"pr", precipYear},
	}
	for year := firstYear; year <= lastYear; year++ {
		for _, v := range variables {
			field := make([][]float64, nPixels)
			for i := range field {
				field[i] = v.gen(rng)
			}
			path := filepath.Join("climate", v.name, strconv.Itoa(year))
			if err := writeJSON(*outDir, path, pixelsDoc(field)); err != nil {
				return err
			}
		}
	}

	if err := writeJSON(*outDir, "years", map[string]int{"first": firstYear, "last": lastYear}); err != nil {
		return err
	}

	fmt.Printf("wrote fixtures for %d pixels, years %d-%d, to %s\n", nPixels, firstYear, lastYear, *outDir)
	return nil
}

func parseYears(spec string) (int, int, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid -years %q, want first:last", spec)
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	last, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if last < first {
		return 0, 0, fmt.Errorf("invalid -years %q: last before first", spec)
	}
	return first, last, nil
}

func axis(first float64) []float64 {
	values := make([]float64, gridSize)
	for i := range values {
		values[i] = first + 0.5*float64(i)
	}
	return values
}

// plantingDays places planting near day 115 (late April); pixel 0 is ocean.
func plantingDays(rng *rand.Rand, n int) []*float64 {
	values := make([]*float64, n)
	for i := 1; i < n; i++ {
		d := float64(110 + rng.Intn(11))
		values[i] = &d
	}
	return values
}

func seasonLengths(rng *rand.Rand, n int) []*float64 {
	values := make([]*float64, n)
	for i := 1; i < n; i++ {
		l := float64(140 + rng.Intn(31))
		values[i] = &l
	}
	return values
}

func coefficients(rng *rand.Rand, n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, 21)
		for j := range row {
			row[j] = math.Round(rng.NormFloat64()*1e4) / 1e5
		}
		rows[i] = row
	}
	return rows
}

func indicators(rng *rand.Rand, n int) [][]int {
	rows := make([][]int, n)
	for i := range rows {
		picked := rng.Perm(40)[:5]
		row := make([]int, 5)
		for j, p := range picked {
			row[j] = p + 1
		}
		rows[i] = row
	}
	return rows
}

func tasmaxYear(rng *rand.Rand) []float64 {
	return temperatureYear(rng, 16, 15) // annual mean 16C, amplitude 15C
}

func tasminYear(rng *rand.Rand) []float64 {
	return temperatureYear(rng, 5, 13)
}

// temperatureYear draws a sinusoidal annual cycle with daily noise.
func temperatureYear(rng *rand.Rand, mean, amplitude float64) []float64 {
	days := make([]float64, 365)
	for d := range days {
		seasonal := amplitude * math.Sin(2*math.Pi*(float64(d)-80)/365)
		days[d] = math.Round((mean+seasonal+rng.NormFloat64()*3)*100) / 100
	}
	return days
}

func precipYear(rng *rand.Rand) []float64 {
	days := make([]float64, 365)
	for d := range days {
		if rng.Float64() < 0.65 {
			continue // dry day
		}
		days[d] = math.Round(rng.ExpFloat64()*500) / 100
	}
	return days
}

func valuesDoc(values []float64) map[string][]float64 {
	return map[string][]float64{"values": values}
}

func nullableDoc(values []*float64) map[string][]*float64 {
	return map[string][]*float64{"values": values}
}

func pixelsDoc(rows [][]float64) map[string][][]float64 {
	return map[string][][]float64{"pixels": rows}
}

func intPixelsDoc(rows [][]int) map[string][][]int {
	return map[string][][]int{"pixels": rows}
}

func writeJSON(outDir, rel string, doc any) error {
	path := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
