// Command validate replays a burn-severity analysis against a scene archive
// and checks a previously produced result for internal consistency: stable
// IDs, bucket totals matching valid pixel counts, dNBR statistics inside the
// classification range, and bit-identical reclassification.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -scenes data/scenes \
//	  -water data/scenes/water.json \
//	  -request data/scenes/request.json \
//	  -result data/results/burn-result.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/burn-severity-etl/internal/adapter/catalog"
	"github.com/couchcryptid/burn-severity-etl/internal/domain"
	"github.com/couchcryptid/burn-severity-etl/internal/observability"
	"github.com/couchcryptid/burn-severity-etl/internal/pipeline"
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
	scenesDir := flag.String("scenes", "", "scene archive directory")
	waterFile := flag.String("water", "", "surface-water seasonality raster (optional)")
	requestFile := flag.String("request", "", "analysis request JSON")
	resultFile := flag.String("result", "", "result JSON to validate (optional)")
	flag.Parse()

	if *scenesDir == "" || *requestFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*scenesDir, *waterFile, *requestFile, *resultFile); code != 0 {
		os.Exit(code)
	}
}

func run(scenesDir, waterFile, requestFile, resultFile string) int {
	fmt.Println("=== Burn Severity Integrity Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	payload, err := os.ReadFile(requestFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load request: %v\n", err)
		return 1
	}

	archive, err := catalog.NewArchive(scenesDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open scene archive: %v\n", err)
		return 1
	}

	var water domain.WaterProvider
	if waterFile != "" {
		water = catalog.NewSeasonalityFile(waterFile)
	}

	metrics := observability.NewMetrics()

	first, err := replay(archive, water, payload, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: analysis failed: %v\n", err)
		return 1
	}
	second, err := replay(archive, water, payload, metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: repeat analysis failed: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDeterminism(first, second),
		validateSummary(first),
	}
	if resultFile != "" {
		p, err := validateAgainstResult(first, resultFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load result: %v\n", err)
			return 1
		}
		phases = append(phases, p)
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println()
	fmt.Println("all checks passed")
	return 0
}

// replay runs the full analysis chain once.
func replay(imagery domain.ImageryCatalog, water domain.WaterProvider, payload []byte, metrics *observability.Metrics) (domain.BurnSeverityResult, error) {
	req, err := domain.ParseAnalysisRequest(domain.RawEvent{Value: payload})
	if err != nil {
		return domain.BurnSeverityResult{}, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tfm := pipeline.NewTransformer(imagery, water, domain.SeverityScale{}, logger, metrics)
	out, err := tfm.Transform(context.Background(), domain.RawEvent{Key: []byte(req.ID()), Value: payload})
	if err != nil {
		return domain.BurnSeverityResult{}, err
	}

	var result domain.BurnSeverityResult
	if err := json.Unmarshal(out.Value, &result); err != nil {
		return domain.BurnSeverityResult{}, err
	}
	return result, nil
}

func validateDeterminism(first, second domain.BurnSeverityResult) *phase {
	p := &phase{name: "determinism (two runs, identical output)"}

	if first.ID != second.ID {
		p.errorf("run IDs differ: %s vs %s", first.ID, second.ID)
	}
	if first.ValidPixels != second.ValidPixels {
		p.errorf("valid pixel counts differ: %d vs %d", first.ValidPixels, second.ValidPixels)
	}
	if first.DNBRMin != second.DNBRMin || first.DNBRMax != second.DNBRMax || first.DNBRMean != second.DNBRMean {
		p.errorf("dNBR statistics differ between runs")
	}
	for i := range first.Buckets {
		if i < len(second.Buckets) && first.Buckets[i].Pixels != second.Buckets[i].Pixels {
			p.errorf("bucket %d pixel counts differ: %d vs %d", i, first.Buckets[i].Pixels, second.Buckets[i].Pixels)
		}
	}
	return p
}

func validateSummary(r domain.BurnSeverityResult) *phase {
	p := &phase{name: "summary consistency"}

	total := 0
	for _, b := range r.Buckets {
		if b.Pixels < 0 {
			p.errorf("bucket %q has negative pixel count", b.Label)
		}
		total += b.Pixels
	}
	if total != r.ValidPixels {
		p.errorf("bucket totals (%d) do not match valid pixels (%d)", total, r.ValidPixels)
	}
	if r.ValidPixels > r.GridWidth*r.GridHeight {
		p.errorf("valid pixels (%d) exceed grid size (%dx%d)", r.ValidPixels, r.GridWidth, r.GridHeight)
	}
	if r.ValidPixels > 0 {
		if r.DNBRMin > r.DNBRMean || r.DNBRMean > r.DNBRMax {
			p.errorf("dNBR statistics out of order: min=%g mean=%g max=%g", r.DNBRMin, r.DNBRMean, r.DNBRMax)
		}
	}
	if r.PreScenes == 0 || r.PostScenes == 0 {
		p.errorf("scene counts must be positive: pre=%d post=%d", r.PreScenes, r.PostScenes)
	}
	return p
}

func validateAgainstResult(fresh domain.BurnSeverityResult, path string) (*phase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stored domain.BurnSeverityResult
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	p := &phase{name: "stored result matches replay"}
	if stored.ID != fresh.ID {
		p.errorf("stored ID %s does not match replayed ID %s", stored.ID, fresh.ID)
	}
	if stored.ValidPixels != fresh.ValidPixels {
		p.errorf("stored valid pixels %d, replay produced %d", stored.ValidPixels, fresh.ValidPixels)
	}
	if len(stored.Buckets) != len(fresh.Buckets) {
		p.errorf("stored result has %d buckets, replay produced %d", len(stored.Buckets), len(fresh.Buckets))
		return p, nil
	}
	for i := range stored.Buckets {
		if stored.Buckets[i].Pixels != fresh.Buckets[i].Pixels {
			p.errorf("bucket %q: stored %d pixels, replay %d",
				stored.Buckets[i].Label, stored.Buckets[i].Pixels, fresh.Buckets[i].Pixels)
		}
	}
	return p, nil
}
