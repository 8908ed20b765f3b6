package domain

import (
	"math"
	"time"

	"github.com/joshuaferrara/go-satellite"
)

// Physical constants.
const (
	AUKilometers = 149597870.7

	moonRadiusKm        = 1737.4
	moonOrbitRadiusKm   = 384400.0
	moonOrbitalSpeed    = 1.022  // km/s
	moonEscapeVelocity  = 2.38   // km/s
	earthEscapeVelocity = 11.186 // km/s
	moonInclinationDeg  = 5.14
	siderealMonthDays   = 27.321661
	synodicMonthDays    = 29.530588853
	newMoonEpochJD      = 2451550.1 // 2000-01-06 14:24 UTC
)

// Model parameters.
const (
	encounterWindowDays   = 3.0
	uncertaintyMargin     = 0.01 // fraction of miss distance added to the Moon radius
	inclinationDecayDeg   = 15.0
	eccentricityPenalty   = 0.3
	maxFocusing           = 5.0
	encounterAngleRad     = math.Pi / 3
	approachDecayAU       = 0.05
	progradeBonus         = 1.2
	retrogradePenalty     = 0.8
	insideMoonOrbitBoost  = 1.5
	outsideMoonOrbitScale = 0.5

	floorMissDistanceAU = 0.1
	floorMinSize        = 0.1
	floorPerTenMeters   = 1e-8

	observableEnergyJ = 1e10
	observableMinSize = 1.0

	earthRiskFloor = 1e-10
)

// moonOrbitAU is the Moon's orbital radius in AU.
const moonOrbitAU = moonOrbitRadiusKm / AUKilometers

// MoonFactors breaks the collision probability into its multiplicative parts.
type MoonFactors struct {
	Geometric   float64 // cross-section over swept area, includes Approach
	Orbital     float64
	Focusing    float64
	Approach    float64
	Inclination float64
	Timing      float64
	Eccentric   float64
	SemiMajor   float64
}

// EarthComparison relates the Moon probability to the Earth risk score.
type EarthComparison struct {
	EarthProbability float64
	MoonToEarthRatio float64
	Interpretation   string
}

// MoonCollisionAssessment is the Moon-impact model output for one object.
type MoonCollisionAssessment struct {
	Probability         float64 // [0, 1]
	Confidence          float64 // [0.3, 0.95]
	ImpactVelocity      float64 // km/s
	ImpactEnergy        float64 // J
	CraterDiameter      float64 // m
	ObservableFromEarth bool
	ClosestMoonApproach float64 // AU
	EncounterDate       *time.Time
	EncounterJulianDate *float64
	LunarPhase          *float64 // fraction of the synodic month since new moon
	Factors             MoonFactors
	Comparison          EarthComparison
}

// AssessMoonCollision runs the Moon model for one object.
func AssessMoonCollision(f Features, orbit OrbitDescriptor, earth RiskAssessment, approach *CloseApproach, moonDensity float64) MoonCollisionAssessment {
	factors := moonFactors(f, orbit)

	p := factors.Geometric * factors.Orbital * factors.Focusing
	if f.MissDistance < floorMissDistanceAU && f.Size > floorMinSize {
		p = math.Max(p, floorPerTenMeters*(f.Size/10))
	}
	p = clamp(p, 0, 1)

	vImpact := moonImpactVelocity(f.Velocity)
	energy := ImpactEnergy(f.Size, vImpact, moonDensity)

	m := MoonCollisionAssessment{
		Probability:         p,
		Confidence:          moonConfidence(f, orbit),
		ImpactVelocity:      vImpact,
		ImpactEnergy:        energy,
		CraterDiameter:      CraterDiameter(energy),
		ObservableFromEarth: energy >= observableEnergyJ && f.Size >= observableMinSize,
		ClosestMoonApproach: math.Abs(f.MissDistance - moonOrbitAU),
		Factors:             factors,
		Comparison:          compareToEarth(p, earth.Risk),
	}

	if approach != nil {
		if t, ok := parseApproachTime(*approach); ok {
			jd := julianDate(t)
			phase := lunarPhase(jd)
			m.EncounterDate = &t
			m.EncounterJulianDate = &jd
			m.LunarPhase = &phase
		}
	}
	return m
}

func moonFactors(f Features, orbit OrbitDescriptor) MoonFactors {
	var mf MoonFactors

	mf.Approach = approachFactor(f.MissDistance, orbit)

	effRadius := moonRadiusKm + uncertaintyMargin*f.MissDistance*AUKilometers
	crossSection := math.Pi * effRadius * effRadius
	sweepAngle := 2 * math.Pi * encounterWindowDays / siderealMonthDays
	sweptArea := 0.5 * moonOrbitRadiusKm * moonOrbitRadiusKm * sweepAngle
	mf.Geometric = crossSection / sweptArea * mf.Approach

	mf.Inclination = math.Exp(-math.Abs(orbit.Inclination-moonInclinationDeg) / inclinationDecayDeg)
	ratio := f.Velocity / moonOrbitalSpeed
	mf.Timing = 0.5 + 0.5*math.Min(ratio, 1/ratio)
	mf.Eccentric = math.Max(0, 1-eccentricityPenalty*orbit.Eccentricity)
	mf.SemiMajor = math.Exp(-math.Abs(orbit.SemiMajorAxis - 1))
	mf.Orbital = mf.Inclination * mf.Timing * mf.Eccentric * mf.SemiMajor

	mf.Focusing = gravitationalFocusing(f.Velocity)
	return mf
}

// gravitationalFocusing is the geometric mean of the Öpik enhancements of
// Earth and Moon, capped at maxFocusing.
func gravitationalFocusing(v float64) float64 {
	earth := 1 + math.Pow(earthEscapeVelocity/v, 2)
	moon := 1 + math.Pow(moonEscapeVelocity/v, 2)
	return math.Min(maxFocusing, math.Sqrt(earth*moon))
}

func approachFactor(missDistance float64, orbit OrbitDescriptor) float64 {
	radial := math.Abs(math.Cos(orbit.Phase))

	direction := retrogradePenalty
	if orbit.Inclination < 90 {
		direction = progradeBonus
	}

	d := missDistance / approachDecayAU
	decay := 1 / (1 + d*d)

	step := outsideMoonOrbitScale
	if missDistance < moonOrbitAU {
		step = insideMoonOrbitBoost
	}
	return radial * direction * decay * step
}

// moonImpactVelocity combines the asteroid and lunar orbital velocities at a
// fixed encounter angle, then adds the Moon's escape velocity in quadrature.
func moonImpactVelocity(v float64) float64 {
	rel2 := v*v + moonOrbitalSpeed*moonOrbitalSpeed - 2*v*moonOrbitalSpeed*math.Cos(encounterAngleRad)
	return math.Sqrt(rel2 + moonEscapeVelocity*moonEscapeVelocity)
}

func moonConfidence(f Features, orbit OrbitDescriptor) float64 {
	c := 0.6
	if f.MissDistance < 0.1 {
		c += 0.2
	}
	if f.Size > 10 {
		c += 0.1
	}
	if f.IsPHA {
		c += 0.1
	}
	if orbit.Eccentricity > 0.5 {
		c -= 0.1
	}
	if math.Abs(orbit.Inclination) > 30 {
		c -= 0.1
	}
	return clamp(c, 0.3, 0.95)
}

func compareToEarth(moonProbability, earthRisk float64) EarthComparison {
	ratio := moonProbability / math.Max(earthRisk, earthRiskFloor)
	return EarthComparison{
		EarthProbability: earthRisk,
		MoonToEarthRatio: ratio,
		Interpretation:   interpretRatio(ratio),
	}
}

func interpretRatio(ratio float64) string {
	switch {
	case ratio > 1:
		return "more likely to hit Moon than Earth"
	case ratio > 0.1:
		return "significant"
	case ratio > 0.01:
		return "low but measurable"
	default:
		return "negligible"
	}
}

func parseApproachTime(ca CloseApproach) (time.Time, bool) {
	if ca.DateFull != "" {
		if t, err := time.Parse("2006-Jan-02 15:04", ca.DateFull); err == nil {
			return t, true
		}
	}
	if ca.Date != "" {
		if t, err := time.Parse("2006-01-02", ca.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func julianDate(t time.Time) float64 {
	t = t.UTC()
	return satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// lunarPhase is the Moon's age at jd as a fraction of the synodic month.
func lunarPhase(jd float64) float64 {
	age := math.Mod((jd-newMoonEpochJD)/synodicMonthDays, 1)
	if age < 0 {
		age++
	}
	return age
}
