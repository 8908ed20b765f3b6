package domain

import "time"

const (
	testNeoID   = "3542519"
	testNeoName = "(2010 PK9)"
)

var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

// fixedRand replays vals in order, cycling when exhausted.
type fixedRand struct {
	vals []float64
	i    int
}

func (r *fixedRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func constRand(v float64) *fixedRand { return &fixedRand{vals: []float64{v}} }

func newRecord(size, velocity, missDistance string, pha bool) NeoRecord {
	return NeoRecord{
		ID:   testNeoID,
		Name: testNeoName,
		EstimatedDiameter: EstimatedDiameter{
			Meters: DiameterRange{Min: "1", Max: NumString(size)},
		},
		IsPHA: pha,
		CloseApproachData: []CloseApproach{{
			Date:             "2024-01-15",
			DateFull:         "2024-Jan-15 08:30",
			RelativeVelocity: RelativeVelocity{KilometersPerSecond: NumString(velocity)},
			MissDistance:     MissDistance{Astronomical: NumString(missDistance)},
			OrbitingBody:     "Earth",
		}},
	}
}

func withOrbit(rec NeoRecord, e, i, a string) NeoRecord {
	rec.OrbitalData = &OrbitalData{Eccentricity: NumString(e), Inclination: NumString(i), SemiMajorAxis: NumString(a)}
	return rec
}
