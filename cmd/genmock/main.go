// Command genmock builds NEO test fixtures. It reads a NeoWs feed response
// from disk (or fetches one live), writes the flattened raw records, and runs
// the real assessment chain over them to produce the assessed fixture that
// downstream consumers test against.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -feed data/mock/neo_feed_sample.json \
//	  -raw-out data/mock/neo_records.json \
//	  -assessed-out data/mock/neo_assessed.json
//
// With -live, the feed for -start..-end is fetched using NEOWS_API_KEY.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/neo-hazard-etl/internal/adapter/neows"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

// assessedAt is the fixed assessment time stamped on every fixture record.
var assessedAt = time.Date(2024, time.January, 17, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feedPath := flag.String("feed", "", "path to a NeoWs feed response or JSON array of records")
	live := flag.Bool("live", false, "fetch the feed from NeoWs instead of -feed")
	start := flag.String("start", "2024-01-15", "feed start date (with -live)")
	end := flag.String("end", "2024-01-16", "feed end date (with -live)")
	rawOut := flag.String("raw-out", "", "output path for the raw records fixture")
	assessedOut := flag.String("assessed-out", "", "output path for the assessed fixture")
	seed := flag.Uint64("seed", 42, "assessment seed")
	policy := flag.String("policy", "permissive", "validation policy: permissive, zero_fill or reject")
	flag.Parse()

	if (*feedPath == "" && !*live) || *rawOut == "" || *assessedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -feed (or -live), -raw-out, -assessed-out")
	}

	vp, err := domain.ParseValidationPolicy(*policy)
	if err != nil {
		return err
	}

	data, err := loadFeed(*feedPath, *live, *start, *end)
	if err != nil {
		return err
	}
	recs, err := domain.DecodeRecords(data)
	if err != nil {
		return err
	}
	log.Printf("decoded %d records", len(recs))

	params := domain.DefaultAssessParams()
	params.Seed = *seed
	params.Policy = vp
	params.AssessedAt = assessedAt

	assessed := make([]domain.EnhancedAsteroid, 0, len(recs))
	docs := make([]domain.AsteroidDocument, 0, len(recs))
	for _, rec := range recs {
		a, err := domain.AssessAsteroid(rec, params)
		if err != nil {
			log.Printf("skipping %s: %v", rec.ID, err)
			continue
		}
		assessed = append(assessed, a)
		docs = append(docs, domain.ToDocument(a))
	}

	if err := writeJSON(*rawOut, recs); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*assessedOut, docs); err != nil {
		return fmt.Errorf("writing assessed fixture: %w", err)
	}
	log.Printf("wrote assessed fixture: %s", *assessedOut)

	printStats(assessed)
	return nil
}

func loadFeed(path string, live bool, start, end string) ([]byte, error) {
	if !live {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		return data, nil
	}

	key := os.Getenv("NEOWS_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("NEOWS_API_KEY must be set with -live")
	}
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("invalid -start: %w", err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("invalid -end: %w", err)
	}

	client := neows.NewClient(neows.DefaultBaseURL, key, 30*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return client.FetchFeed(context.Background(), from, to)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(assessed []domain.EnhancedAsteroid) {
	s := domain.Summarize(assessed)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d (non-finite risk: %d)\n", s.Count, s.NonFiniteRisk)
	fmt.Print("By level:")
	for _, level := range domain.HazardLevels {
		fmt.Printf(" %s=%d", level, s.ByLevel[level])
	}
	fmt.Println()
	fmt.Printf("Risk: mean=%.4f p90=%.4f max=%.4f\n", s.MeanRisk, s.P90Risk, s.MaxRisk)
	fmt.Printf("Max Torino: %d\n", s.MaxTorino)
	fmt.Printf("Observable Moon impacts: %d\n", s.ObservableMoonImpacts)

	bySource := map[domain.ElementsSource]int{}
	for i := range assessed {
		bySource[assessed[i].Orbit.Source]++
	}
	fmt.Printf("Orbit elements: record=%d lookup=%d fallback=%d\n",
		bySource[domain.ElementsFromRecord], bySource[domain.ElementsFromLookup], bySource[domain.ElementsFromFallback])

	printTopRisks(assessed, 5)
}

func printTopRisks(assessed []domain.EnhancedAsteroid, n int) {
	sorted := make([]domain.EnhancedAsteroid, len(assessed))
	copy(sorted, assessed)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Risk.Risk > sorted[j].Risk.Risk
	})

	fmt.Printf("\nTop %d by risk:\n", min(n, len(sorted)))
	for _, a := range sorted[:min(n, len(sorted))] {
		fmt.Printf("  %-10s %-28s risk=%.4f torino=%d (%s) moon=%.3g\n",
			a.Record.ID, a.Record.Name, a.Risk.Risk, a.Hazard.TorinoScale, a.Hazard.Level, a.Moon.Probability)
	}
}
