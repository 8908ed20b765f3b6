package domain

import "math"

// Densities are the bulk densities (kg/m³) assumed for the impactor in each
// target context. The defaults disagree (2000 vs 2500); set both to one value
// to unify them.
type Densities struct {
	Earth float64
	Moon  float64
}

// DefaultDensities returns the historical 2000 / 2500 kg/m³ pair.
func DefaultDensities() Densities {
	return Densities{Earth: 2000, Moon: 2500}
}

// Lunar crater scaling.
const (
	craterK            = 1.8
	regolithDensity    = 2500.0 // kg/m³
	lunarGravity       = 1.62   // m/s²
	craterScalingPower = 1 / 3.4
)

// ImpactMass is the mass in kg of a sphere of the given diameter (m) and density.
func ImpactMass(size, density float64) float64 {
	r := size / 2
	return 4.0 / 3.0 * math.Pi * r * r * r * density
}

// ImpactEnergy is the kinetic energy in joules of a spherical impactor.
// velocity is in km/s.
func ImpactEnergy(size, velocity, density float64) float64 {
	v := velocity * 1000
	return 0.5 * ImpactMass(size, density) * v * v
}

// CraterDiameter estimates a lunar crater diameter in meters from impact
// energy in joules. Non-positive energy yields 0.
func CraterDiameter(energy float64) float64 {
	if energy <= 0 {
		return 0
	}
	return craterK * math.Pow(energy/(regolithDensity*lunarGravity), craterScalingPower)
}
