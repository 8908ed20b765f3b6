package domain

import "math"

// Earth risk weights.
const (
	sizeWeight     = 0.25
	distanceWeight = 0.4
	velocityWeight = 0.15
	phaWeight      = 0.2

	phaFactorValue       = 0.3
	closeApproachAU      = 0.05
	velocityCeilingKmS   = 30.0
	sizeLogDecades       = 3.0
	highConfidenceAU     = 0.1
	maxEarthConfidence   = 0.99
	closeRangeConfidence = 0.95
)

// RiskAssessment is the Earth-impact heuristic for one object.
type RiskAssessment struct {
	Risk       float64 // [0, 1]
	Confidence float64 // [0, 0.99]
}

// ScoreEarthRisk computes the weighted risk score and its confidence.
func ScoreEarthRisk(f Features) RiskAssessment {
	sizeFactor := math.Min(1, math.Log10(f.Size+1)/sizeLogDecades)

	var distanceFactor float64
	if f.MissDistance < closeApproachAU {
		distanceFactor = 1 - f.MissDistance/closeApproachAU
	}

	velocityFactor := math.Min(1, f.Velocity/velocityCeilingKmS)

	var phaFactor float64
	if f.IsPHA {
		phaFactor = phaFactorValue
	}

	risk := clamp(sizeWeight*sizeFactor+
		distanceWeight*distanceFactor+
		velocityWeight*velocityFactor+
		phaWeight*phaFactor, 0, 1)

	confidence := closeRangeConfidence
	if !(f.MissDistance < highConfidenceAU) {
		confidence = 0.75 + 0.2*(1-f.MissDistance)
	}
	confidence = math.Min(maxEarthConfidence, clamp(confidence, 0, 1))

	return RiskAssessment{Risk: risk, Confidence: confidence}
}

// clamp bounds v to [lo, hi]. NaN passes through.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
