package domain

import "math"

// OrbitScale converts AU into scene units for the orbit radius.
const OrbitScale = 64.0

const (
	innerOrbitLimitAU       = 1.0
	fallbackInclinationRad  = 0.1
	fallbackEccentricityMax = 0.3
	baseAngularSpeed        = 0.01
)

// ElementsSource records where an orbit's elements came from.
type ElementsSource string

const (
	ElementsFromRecord   ElementsSource = "record"
	ElementsFromLookup   ElementsSource = "lookup"
	ElementsFromFallback ElementsSource = "fallback"
)

// OrbitDescriptor is the visualization-ready orbit of one object.
type OrbitDescriptor struct {
	Radius        float64 // MissDistance * OrbitScale
	AngularSpeed  float64 // rad per frame
	Phase         float64 // rad, [0, 2π)
	Inclination   float64 // degrees
	Eccentricity  float64
	SemiMajorAxis float64 // AU
	IsInnerOrbit  bool
	Source        ElementsSource
}

// DeriveOrbit builds the orbit descriptor. Published elements are used when
// present; otherwise inclination and eccentricity are drawn from rng and the
// semi-major axis is approximated as 1 + missDistance. The phase is always
// drawn, first, so the fallback draws do not shift it.
func DeriveOrbit(rec NeoRecord, missDistance float64, rng RandomSource) (OrbitDescriptor, []*ParseError) {
	o := OrbitDescriptor{
		Radius:       missDistance * OrbitScale,
		AngularSpeed: baseAngularSpeed / math.Pow(1+missDistance, 1.5),
		Phase:        rng.Float64() * 2 * math.Pi,
		IsInnerOrbit: missDistance < innerOrbitLimitAU,
	}

	if rec.OrbitalData == nil || rec.OrbitalData.IsEmpty() {
		incRad := (rng.Float64()*2 - 1) * fallbackInclinationRad
		o.Inclination = incRad * 180 / math.Pi
		o.Eccentricity = rng.Float64() * fallbackEccentricityMax
		o.SemiMajorAxis = 1 + missDistance
		o.Source = ElementsFromFallback
		return o, nil
	}

	od := rec.OrbitalData
	o.Source = ElementsFromRecord
	if od.lookedUp {
		o.Source = ElementsFromLookup
	}

	var issues []*ParseError
	var pe *ParseError
	if o.Inclination, pe = ParseNumber("orbital_data.inclination", od.Inclination); pe != nil {
		issues = append(issues, pe)
	}
	if o.Eccentricity, pe = ParseNumber("orbital_data.eccentricity", od.Eccentricity); pe != nil {
		issues = append(issues, pe)
	}
	if o.SemiMajorAxis, pe = ParseNumber("orbital_data.semi_major_axis", od.SemiMajorAxis); pe != nil {
		issues = append(issues, pe)
	}
	return o, issues
}

func (o OrbitDescriptor) zeroFilled() OrbitDescriptor {
	o.Radius = finiteOrZero(o.Radius)
	o.AngularSpeed = finiteOrZero(o.AngularSpeed)
	o.Inclination = finiteOrZero(o.Inclination)
	o.Eccentricity = finiteOrZero(o.Eccentricity)
	o.SemiMajorAxis = finiteOrZero(o.SemiMajorAxis)
	return o
}
