package domain

import (
	"math"
	"time"
)

// AsteroidDocument is the JSON form of an EnhancedAsteroid published to
// consumers. Non-finite numbers are encoded as null.
type AsteroidDocument struct {
	NeoRecord

	Size              *float64      `json:"size"`
	Velocity          *float64      `json:"velocity"`
	MissDistance      *float64      `json:"missDistance"`
	ImpactEnergy      *float64      `json:"impactEnergy"`
	Risk              *float64      `json:"risk"`
	Confidence        *float64      `json:"confidence"`
	TorinoScale       int           `json:"torinoScale"`
	HazardLevel       HazardLevel   `json:"hazardLevel"`
	Orbit             OrbitDocument `json:"orbit"`
	MoonCollisionData MoonDocument  `json:"moonCollisionData"`
	ValidationIssues  []string      `json:"validationIssues,omitempty"`
	AssessedAt        time.Time     `json:"assessedAt"`
}

type OrbitDocument struct {
	Radius         *float64       `json:"radius"`
	Speed          *float64       `json:"speed"`
	Phase          *float64       `json:"phase"`
	Inclination    *float64       `json:"inclination"`
	Eccentricity   *float64       `json:"eccentricity"`
	SemiMajorAxis  *float64       `json:"semi_major_axis"`
	IsInnerOrbit   bool           `json:"isInnerOrbit"`
	ElementsSource ElementsSource `json:"elementsSource"`
}

type MoonDocument struct {
	Probability         *float64           `json:"probability"`
	Confidence          *float64           `json:"confidence"`
	ImpactVelocity      *float64           `json:"impactVelocity"`
	ImpactEnergy        *float64           `json:"impactEnergy"`
	CraterDiameter      *float64           `json:"craterDiameter"`
	ObservableFromEarth bool               `json:"observableFromEarth"`
	ClosestMoonApproach *float64           `json:"closestMoonApproach"`
	MoonEncounterDate   *time.Time         `json:"moonEncounterDate,omitempty"`
	EncounterJulianDate *float64           `json:"encounterJulianDate,omitempty"`
	LunarPhase          *float64           `json:"lunarPhase,omitempty"`
	ComparisonToEarth   ComparisonDocument `json:"comparisonToEarth"`
}

type ComparisonDocument struct {
	EarthProbability *float64 `json:"earthProbability"`
	MoonToEarthRatio *float64 `json:"moonToEarthRatio"`
	Interpretation   string   `json:"interpretation"`
}

// ToDocument converts an assessment into its wire form.
func ToDocument(a EnhancedAsteroid) AsteroidDocument {
	m := a.Moon
	return AsteroidDocument{
		NeoRecord:    a.Record,
		Size:         finite(a.Features.Size),
		Velocity:     finite(a.Features.Velocity),
		MissDistance: finite(a.Features.MissDistance),
		ImpactEnergy: finite(a.ImpactEnergy),
		Risk:         finite(a.Risk.Risk),
		Confidence:   finite(a.Risk.Confidence),
		TorinoScale:  a.Hazard.TorinoScale,
		HazardLevel:  a.Hazard.Level,
		Orbit: OrbitDocument{
			Radius:         finite(a.Orbit.Radius),
			Speed:          finite(a.Orbit.AngularSpeed),
			Phase:          finite(a.Orbit.Phase),
			Inclination:    finite(a.Orbit.Inclination),
			Eccentricity:   finite(a.Orbit.Eccentricity),
			SemiMajorAxis:  finite(a.Orbit.SemiMajorAxis),
			IsInnerOrbit:   a.Orbit.IsInnerOrbit,
			ElementsSource: a.Orbit.Source,
		},
		MoonCollisionData: MoonDocument{
			Probability:         finite(m.Probability),
			Confidence:          finite(m.Confidence),
			ImpactVelocity:      finite(m.ImpactVelocity),
			ImpactEnergy:        finite(m.ImpactEnergy),
			CraterDiameter:      finite(m.CraterDiameter),
			ObservableFromEarth: m.ObservableFromEarth,
			ClosestMoonApproach: finite(m.ClosestMoonApproach),
			MoonEncounterDate:   m.EncounterDate,
			EncounterJulianDate: m.EncounterJulianDate,
			LunarPhase:          m.LunarPhase,
			ComparisonToEarth: ComparisonDocument{
				EarthProbability: finite(m.Comparison.EarthProbability),
				MoonToEarthRatio: finite(m.Comparison.MoonToEarthRatio),
				Interpretation:   m.Comparison.Interpretation,
			},
		},
		ValidationIssues: a.ValidationIssues,
		AssessedAt:       a.AssessedAt,
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
