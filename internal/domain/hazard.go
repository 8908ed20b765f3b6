package domain

import "math"

// HazardLevel is the qualitative hazard tier.
type HazardLevel string

const (
	HazardNone        HazardLevel = "none"
	HazardNormal      HazardLevel = "normal"
	HazardAttention   HazardLevel = "attention"
	HazardThreatening HazardLevel = "threatening"
	// HazardCertain is part of the scale but no threshold produces it.
	HazardCertain HazardLevel = "certain"
)

// HazardLevels lists every level in ascending order.
var HazardLevels = []HazardLevel{HazardNone, HazardNormal, HazardAttention, HazardThreatening, HazardCertain}

// MaxReachableTorino is the highest Torino value ClassifyHazard can return.
const MaxReachableTorino = 7

const riskJitter = 0.3

// HazardClassification is the Torino-style classification of one object.
type HazardClassification struct {
	TorinoScale int
	Level       HazardLevel
}

// ClassifyHazard perturbs risk by U(0,1)·0.3 and maps the result through the
// threshold table. PHAs rank one step higher from "attention" upwards.
func ClassifyHazard(risk float64, isPHA bool, rng RandomSource) HazardClassification {
	jittered := math.Min(1, risk+rng.Float64()*riskJitter)
	return classifyJittered(jittered, isPHA)
}

func classifyJittered(r float64, isPHA bool) HazardClassification {
	pha := func(yes, no int) int {
		if isPHA {
			return yes
		}
		return no
	}

	switch {
	case math.IsNaN(r), r < 0.15:
		return HazardClassification{TorinoScale: 0, Level: HazardNone}
	case r < 0.35:
		return HazardClassification{TorinoScale: 1, Level: HazardNormal}
	case r < 0.55:
		return HazardClassification{TorinoScale: pha(3, 2), Level: HazardAttention}
	case r < 0.75:
		return HazardClassification{TorinoScale: pha(5, 4), Level: HazardThreatening}
	case r < 0.90:
		return HazardClassification{TorinoScale: pha(6, 5), Level: HazardThreatening}
	default:
		return HazardClassification{TorinoScale: pha(7, 6), Level: HazardThreatening}
	}
}
