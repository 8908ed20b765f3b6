// Package domain models near-Earth object (NEO) records and the hazard
// assessment derived from them.
//
// # Data Source
//
// Records originate from the NASA NeoWs API (https://api.nasa.gov). The feed
// endpoint groups objects by close-approach date; the lookup endpoint
// (/neo/{id}) adds orbital elements. Each object is published as one JSON
// message to the Kafka source topic.
//
// # NeoWs Data Conventions
//
// Numeric leaves:
//
//	Velocities, miss distances and orbital elements arrive as JSON strings,
//	e.g. "relative_velocity": {"kilometers_per_second": "18.1279360862"}.
//	Diameters arrive as JSON numbers. [NumString] accepts both.
//
// Units:
//
//	estimated_diameter.meters      meters
//	relative_velocity              km/s (first close-approach entry only)
//	miss_distance.astronomical     AU (1 AU = 149,597,870.7 km)
//	orbital_data.inclination       degrees
//	orbital_data.semi_major_axis   AU
//
// Dates:
//
//	close_approach_date is "2006-01-02". close_approach_date_full, when
//	present, is "2006-Jan-02 15:04" (UTC) and is preferred.
//
// # Assessment Chain
//
//	NormalizeFeatures → DeriveOrbit ─┐
//	                 → ScoreEarthRisk → ClassifyHazard
//	                                  → AssessMoonCollision (+ impact physics)
//
// Every function is a pure value transform apart from the injected
// [RandomSource]. [AssessAsteroid] seeds one stream per object id, so a
// record always produces the same assessment for the same seed.
//
// # Hazard Scale
//
// The Torino value is a heuristic mapping of a jittered risk score, not the
// IAU procedure. Only 0–7 are reachable; 8–10 and the "certain" level exist
// in the type for consumers but no threshold produces them.
//
// # Malformed Input
//
// Unparsable numeric strings become NaN and are reported as [ParseError]
// values. [ValidationPolicy] decides whether they propagate, are zero-filled,
// or reject the record with a [ValidationError].
package domain
