package domain

import "math"

// Features are the scalar inputs of every downstream model.
type Features struct {
	Size         float64 // max estimated diameter, meters
	Velocity     float64 // km/s at first close approach
	MissDistance float64 // AU at first close approach
	IsPHA        bool
}

// NormalizeFeatures extracts the scalar features from a record. Fields that
// fail to parse are NaN in the result and reported as issues.
func NormalizeFeatures(rec NeoRecord) (Features, []*ParseError) {
	var issues []*ParseError
	note := func(pe *ParseError) {
		if pe != nil {
			issues = append(issues, pe)
		}
	}

	f := Features{IsPHA: rec.IsPHA}

	var pe *ParseError
	f.Size, pe = ParseNumber("estimated_diameter.meters.estimated_diameter_max", rec.EstimatedDiameter.Meters.Max)
	note(pe)

	if len(rec.CloseApproachData) == 0 {
		f.Velocity, f.MissDistance = math.NaN(), math.NaN()
		note(&ParseError{Field: "close_approach_data[0].relative_velocity.kilometers_per_second", Err: ErrMissingValue})
		note(&ParseError{Field: "close_approach_data[0].miss_distance.astronomical", Err: ErrMissingValue})
		return f, issues
	}

	first := rec.CloseApproachData[0]
	f.Velocity, pe = ParseNumber("close_approach_data[0].relative_velocity.kilometers_per_second", first.RelativeVelocity.KilometersPerSecond)
	note(pe)
	f.MissDistance, pe = ParseNumber("close_approach_data[0].miss_distance.astronomical", first.MissDistance.Astronomical)
	note(pe)

	return f, issues
}

// zeroFilled replaces non-finite features with 0.
func (f Features) zeroFilled() Features {
	f.Size = finiteOrZero(f.Size)
	f.Velocity = finiteOrZero(f.Velocity)
	f.MissDistance = finiteOrZero(f.MissDistance)
	return f
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
