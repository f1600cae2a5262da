// Command validate checks a reference data YAML file before it is deployed.
// Beyond schema validation it exercises the tables the way the API does:
// every location must be reachable through search, every crop must produce a
// finite yield, and no city box may be shadowed by an earlier one.
//
// Usage:
//
//	go run ./cmd/validate -file deploy/reference.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "", "path to the reference data YAML file")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*file, os.Stdout))
}

func run(path string, out io.Writer) int {
	fmt.Fprintln(out, "=== Reference Data Validation ===")
	fmt.Fprintln(out)

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	schema := &phase{name: "Schema"}
	ref, err := domain.ParseReferenceData(raw)
	if err != nil {
		for _, e := range unjoin(err) {
			schema.errorf("%v", e)
		}
	}

	phases := []*phase{schema}
	if schema.passed() {
		phases = append(phases,
			validateSearch(ref),
			validateYields(ref),
			validateCityBoxes(ref),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	if schema.passed() {
		fmt.Fprintf(out, "\nTables: %d locations, %d crops, %d cities, %d descriptions\n",
			len(ref.Locations), len(ref.BaseYields), len(ref.Cities), len(ref.WeatherDescriptions))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateSearch checks that each location is returned when searched by its own name.
func validateSearch(ref domain.ReferenceData) *phase {
	p := &phase{name: "Location search"}
	for _, loc := range ref.Locations {
		found := false
		for _, m := range domain.SearchLocations(ref.Locations, loc.Name) {
			if m == loc {
				found = true
				break
			}
		}
		if !found {
			p.errorf("%q (%s) is not returned by a search for its own name", loc.Name, loc.Pincode)
		}
	}
	return p
}

// validateYields runs the fully adjusted prediction for every crop.
func validateYields(ref domain.ReferenceData) *phase {
	p := &phase{name: "Yield prediction"}

	crops := make([]string, 0, len(ref.BaseYields)+1)
	for crop := range ref.BaseYields {
		crops = append(crops, crop)
	}
	sort.Strings(crops)
	crops = append(crops, "unlisted-crop")

	for _, crop := range crops {
		est, err := domain.PredictYield(ref, domain.YieldInput{
			CropType:         crop,
			SoilType:         "loamy",
			IrrigationMethod: "drip",
			LandSize:         1,
		})
		if err != nil {
			p.errorf("%s: %v", crop, err)
			continue
		}
		if math.IsInf(est.TotalProduction, 0) || est.PredictedYield <= 0 {
			p.errorf("%s: implausible prediction %v", crop, est.PredictedYield)
		}
	}
	if _, ok := ref.BaseYields[ref.DefaultCrop]; !ok {
		p.errorf("default_crop %q has no base yield; requests without crop_type use default_yield", ref.DefaultCrop)
	}
	return p
}

// validateCityBoxes checks that the centre of each box resolves to that box.
func validateCityBoxes(ref domain.ReferenceData) *phase {
	p := &phase{name: "City boxes"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, c := range ref.Cities {
		lat := (c.MinLat + c.MaxLat) / 2
		lng := (c.MinLng + c.MaxLng) / 2
		got := domain.ResolveLocationLabel(context.Background(), lat, lng, ref.Cities, nil, logger)
		if got != c.Name {
			p.errorf("%s: centre (%.4f, %.4f) resolves to %q", c.Name, lat, lng, got)
		}
	}
	return p
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
