package domain

import "time"

// AssessParams controls one assessment run.
type AssessParams struct {
	Densities Densities
	Policy    ValidationPolicy
	Seed      uint64

	// AssessedAt is stamped on every assessment as given. Callers own the
	// time source; the zero value is kept as is.
	AssessedAt time.Time

	// Rand overrides the per-object random stream. Nil uses NewObjectRand.
	Rand func(id string) RandomSource
}

// DefaultAssessParams returns the historical densities, the permissive policy
// and seed 0.
func DefaultAssessParams() AssessParams {
	return AssessParams{Densities: DefaultDensities(), Policy: PolicyPermissive}
}

func (p AssessParams) randFor(id string) RandomSource {
	if p.Rand != nil {
		return p.Rand(id)
	}
	return NewObjectRand(id, p.Seed)
}

// EnhancedAsteroid is the assessed form of one record.
type EnhancedAsteroid struct {
	Record           NeoRecord
	Features         Features
	ImpactEnergy     float64 // J, Earth-context density
	Orbit            OrbitDescriptor
	Risk             RiskAssessment
	Hazard           HazardClassification
	Moon             MoonCollisionAssessment
	ValidationIssues []string
	AssessedAt       time.Time
}

// FirstApproach returns the close approach that drives the assessment, if any.
func (a EnhancedAsteroid) FirstApproach() *CloseApproach {
	if len(a.Record.CloseApproachData) == 0 {
		return nil
	}
	ca := a.Record.CloseApproachData[0]
	return &ca
}

// AssessAsteroid runs the full assessment chain for one record. It only fails
// under PolicyReject, with a *ValidationError listing every unparsable field.
func AssessAsteroid(rec NeoRecord, params AssessParams) (EnhancedAsteroid, error) {
	rng := params.randFor(rec.ID)

	features, issues := NormalizeFeatures(rec)
	if params.Policy == PolicyZeroFill {
		features = features.zeroFilled()
	}

	orbit, orbitIssues := DeriveOrbit(rec, features.MissDistance, rng)
	issues = append(issues, orbitIssues...)

	if params.Policy == PolicyReject && len(issues) > 0 {
		return EnhancedAsteroid{}, &ValidationError{ID: rec.ID, Issues: issues}
	}
	if params.Policy == PolicyZeroFill {
		orbit = orbit.zeroFilled()
	}

	risk := ScoreEarthRisk(features)
	hazard := ClassifyHazard(risk.Risk, features.IsPHA, rng)

	a := EnhancedAsteroid{
		Record:       rec,
		Features:     features,
		ImpactEnergy: ImpactEnergy(features.Size, features.Velocity, params.Densities.Earth),
		Orbit:        orbit,
		Risk:         risk,
		Hazard:       hazard,
		AssessedAt:   params.AssessedAt,
	}
	a.Moon = AssessMoonCollision(features, orbit, risk, a.FirstApproach(), params.Densities.Moon)

	for _, issue := range issues {
		a.ValidationIssues = append(a.ValidationIssues, issue.Error())
	}
	return a, nil
}
