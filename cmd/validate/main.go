// Command validate performs integrity checks over the NEO fixtures: the raw
// records, the assessed documents genmock produced from them, and the
// assessment chain itself. It verifies record parity, value ranges,
// determinism under a fixed seed, and the wire schema.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw data/mock/neo_records.json \
//	  -assessed data/mock/neo_assessed.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
)

// assessedAt must match genmock.
var assessedAt = time.Date(2024, time.January, 17, 0, 0, 0, 0, time.UTC)

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
	rawPath := flag.String("raw", "", "path to the raw records fixture")
	assessedPath := flag.String("assessed", "", "path to the assessed fixture")
	seed := flag.Uint64("seed", 42, "assessment seed used by genmock")
	policy := flag.String("policy", "permissive", "validation policy used by genmock")
	flag.Parse()

	if *rawPath == "" || *assessedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawPath, *assessedPath, *seed, *policy); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, assessedPath string, seed uint64, policy string) int {
	fmt.Println("=== NEO Fixture Integrity Validation ===")
	fmt.Println()

	vp, err := domain.ParseValidationPolicy(policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	params := domain.DefaultAssessParams()
	params.Seed = seed
	params.Policy = vp
	params.AssessedAt = assessedAt

	raw, err := loadJSON[domain.NeoRecord](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw records: %v\n", err)
		return 1
	}
	docs, err := loadJSON[domain.AsteroidDocument](assessedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load assessed fixture: %v\n", err)
		return 1
	}
	schemaDocs, err := loadJSON[map[string]any](assessedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load assessed fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRecordParity(raw, docs),
		validateRanges(raw, params),
		validateDeterminism(raw, docs, params),
		validateSchema(schemaDocs),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d assessed\n", len(raw), len(docs))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Record Parity ──
// Every assessed document must come from exactly one raw record.

func validateRecordParity(raw []domain.NeoRecord, docs []domain.AsteroidDocument) *phase {
	p := &phase{name: "Phase 1: Record Parity (raw vs assessed)"}

	rawIDs := map[string]bool{}
	for i := range raw {
		if raw[i].ID == "" {
			p.errorf("raw record %d: missing id", i)
			continue
		}
		if rawIDs[raw[i].ID] {
			p.errorf("raw record %d: duplicate id %s", i, raw[i].ID)
		}
		rawIDs[raw[i].ID] = true
	}

	seen := map[string]bool{}
	for i := range docs {
		id := docs[i].ID
		if !rawIDs[id] {
			p.errorf("assessed record %d: id %q not in raw fixture", i, id)
		}
		if seen[id] {
			p.errorf("assessed record %d: duplicate id %s", i, id)
		}
		seen[id] = true
	}
	if len(docs) > len(raw) {
		p.errorf("assessed fixture has %d records, raw only %d", len(docs), len(raw))
	}
	return p
}

// ── Phase 2: Ranges ──
// Re-assesses every record and checks the documented value ranges.

func validateRanges(raw []domain.NeoRecord, params domain.AssessParams) *phase {
	p := &phase{name: "Phase 2: Value Ranges (re-assessed)"}

	for i := range raw {
		a, err := domain.AssessAsteroid(raw[i], params)
		if err != nil {
			continue
		}
		checkRanges(p, a)
	}
	return p
}

func checkRanges(p *phase, a domain.EnhancedAsteroid) {
	id := a.Record.ID
	inUnit := func(name string, v float64) {
		if math.IsNaN(v) {
			return
		}
		if v < 0 || v > 1 {
			p.errorf("ID %s: %s %g outside [0, 1]", id, name, v)
		}
	}

	inUnit("risk", a.Risk.Risk)
	inUnit("moon probability", a.Moon.Probability)
	inUnit("moon confidence", a.Moon.Confidence)
	if a.Risk.Confidence > 0.99 {
		p.errorf("ID %s: confidence %g above 0.99", id, a.Risk.Confidence)
	}
	if a.Hazard.TorinoScale < 0 || a.Hazard.TorinoScale > domain.MaxReachableTorino {
		p.errorf("ID %s: torino %d outside [0, %d]", id, a.Hazard.TorinoScale, domain.MaxReachableTorino)
	}
	if a.Hazard.Level == domain.HazardCertain {
		p.errorf("ID %s: unreachable hazard level %q", id, a.Hazard.Level)
	}
	if a.Moon.CraterDiameter < 0 {
		p.errorf("ID %s: crater diameter %g is negative", id, a.Moon.CraterDiameter)
	}
	if a.Moon.Comparison.MoonToEarthRatio < 0 {
		p.errorf("ID %s: moon/earth ratio %g is negative", id, a.Moon.Comparison.MoonToEarthRatio)
	}
	if !math.IsNaN(a.Orbit.Phase) && (a.Orbit.Phase < 0 || a.Orbit.Phase >= 2*math.Pi) {
		p.errorf("ID %s: phase %g outside [0, 2π)", id, a.Orbit.Phase)
	}
}

// ── Phase 3: Determinism ──
// Two fresh runs must agree with each other and with the fixture.

func validateDeterminism(raw []domain.NeoRecord, docs []domain.AsteroidDocument, params domain.AssessParams) *phase {
	p := &phase{name: "Phase 3: Determinism (fixed seed)"}

	fixture := make(map[string]domain.AsteroidDocument, len(docs))
	for i := range docs {
		fixture[docs[i].ID] = docs[i]
	}

	opts := cmp.Options{cmpopts.IgnoreUnexported(domain.OrbitalData{}), cmpopts.EquateNaNs()}
	for i := range raw {
		first, err1 := domain.AssessAsteroid(raw[i], params)
		second, err2 := domain.AssessAsteroid(raw[i], params)
		if (err1 == nil) != (err2 == nil) {
			p.errorf("ID %s: runs disagree on error: %v vs %v", raw[i].ID, err1, err2)
			continue
		}
		if err1 != nil {
			if _, ok := fixture[raw[i].ID]; ok {
				p.errorf("ID %s: rejected now but present in fixture: %v", raw[i].ID, err1)
			}
			continue
		}
		if diff := cmp.Diff(first, second, opts); diff != "" {
			p.errorf("ID %s: repeated run differs (-first +second):\n%s", raw[i].ID, diff)
			continue
		}

		want, ok := fixture[raw[i].ID]
		if !ok {
			p.errorf("ID %s: missing from assessed fixture", raw[i].ID)
			continue
		}
		if diff := cmp.Diff(want, domain.ToDocument(first), opts); diff != "" {
			p.errorf("ID %s: fixture differs (-fixture +now):\n%s", raw[i].ID, diff)
		}
	}
	return p
}

// ── Phase 4: Schema ──
// Assessed documents must carry every consumer-facing field.

var (
	requiredTop   = []string{"id", "name", "size", "velocity", "missDistance", "impactEnergy", "risk", "confidence", "torinoScale", "hazardLevel", "orbit", "moonCollisionData", "assessedAt"}
	requiredOrbit = []string{"radius", "speed", "phase", "inclination", "eccentricity", "semi_major_axis", "isInnerOrbit", "elementsSource"}
	requiredMoon  = []string{"probability", "confidence", "impactVelocity", "impactEnergy", "craterDiameter", "observableFromEarth", "closestMoonApproach", "comparisonToEarth"}
	schemaLevels  = map[string]bool{"none": true, "normal": true, "attention": true, "threatening": true, "certain": true}
)

func validateSchema(docs []map[string]any) *phase {
	p := &phase{name: "Phase 4: Schema (wire fields)"}
	for i, doc := range docs {
		pf := func(format string, args ...any) {
			p.errorf("record %d (ID %v): "+format, append([]any{i, doc["id"]}, args...)...)
		}
		requireKeys(pf, "", doc, requiredTop)

		if orbit, ok := doc["orbit"].(map[string]any); ok {
			requireKeys(pf, "orbit.", orbit, requiredOrbit)
		}
		if moon, ok := doc["moonCollisionData"].(map[string]any); ok {
			requireKeys(pf, "moonCollisionData.", moon, requiredMoon)
		}
		if level, _ := doc["hazardLevel"].(string); !schemaLevels[level] {
			pf("hazardLevel %q not in enum", level)
		}
	}
	return p
}

func requireKeys(pf func(string, ...any), prefix string, m map[string]any, keys []string) {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			pf("missing field %s%s", prefix, k)
		}
	}
}
