package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BatchSummary aggregates a batch of assessments. Risk statistics cover
// finite risks only; NonFiniteRisk counts the rest.
type BatchSummary struct {
	Count                 int                 `json:"count"`
	MeanRisk              float64             `json:"meanRisk"`
	MaxRisk               float64             `json:"maxRisk"`
	P90Risk               float64             `json:"p90Risk"`
	MaxTorino             int                 `json:"maxTorino"`
	ByLevel               map[HazardLevel]int `json:"byLevel"`
	ObservableMoonImpacts int                 `json:"observableMoonImpacts"`
	NonFiniteRisk         int                 `json:"nonFiniteRisk,omitempty"`
}

// Summarize computes batch statistics.
func Summarize(batch []EnhancedAsteroid) BatchSummary {
	s := BatchSummary{Count: len(batch), ByLevel: make(map[HazardLevel]int)}

	risks := make([]float64, 0, len(batch))
	for _, a := range batch {
		s.ByLevel[a.Hazard.Level]++
		if a.Hazard.TorinoScale > s.MaxTorino {
			s.MaxTorino = a.Hazard.TorinoScale
		}
		if a.Moon.ObservableFromEarth {
			s.ObservableMoonImpacts++
		}
		if math.IsNaN(a.Risk.Risk) || math.IsInf(a.Risk.Risk, 0) {
			s.NonFiniteRisk++
			continue
		}
		risks = append(risks, a.Risk.Risk)
	}

	if len(risks) == 0 {
		return s
	}
	sort.Float64s(risks)
	s.MeanRisk = stat.Mean(risks, nil)
	s.MaxRisk = floats.Max(risks)
	s.P90Risk = stat.Quantile(0.9, stat.Empirical, risks, nil)
	return s
}
