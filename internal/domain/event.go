package domain

import (
	"context"
	"encoding/json"
	"time"
)

// NumString is a numeric leaf as received from upstream. NeoWs encodes most
// numbers as JSON strings but diameters as JSON numbers; both decode into the
// literal text so parsing happens in one place.
type NumString string

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (n *NumString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumString(s)
		return nil
	}
	*n = NumString(b)
	return nil
}

// NeoRecord is one near-Earth object as published by the NeoWs feed and
// lookup endpoints.
type NeoRecord struct {
	ID                string            `json:"id"`
	NeoReferenceID    string            `json:"neo_reference_id,omitempty"`
	Name              string            `json:"name"`
	NasaJPLURL        string            `json:"nasa_jpl_url,omitempty"`
	AbsoluteMagnitude NumString         `json:"absolute_magnitude_h,omitempty"`
	EstimatedDiameter EstimatedDiameter `json:"estimated_diameter"`
	IsPHA             bool              `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData []CloseApproach   `json:"close_approach_data"`
	OrbitalData       *OrbitalData      `json:"orbital_data,omitempty"`
}

// EstimatedDiameter holds the diameter ranges; only meters are used.
type EstimatedDiameter struct {
	Meters DiameterRange `json:"meters"`
}

// DiameterRange is a min/max estimated diameter pair.
type DiameterRange struct {
	Min NumString `json:"estimated_diameter_min"`
	Max NumString `json:"estimated_diameter_max"`
}

// CloseApproach is a single close-approach event. The first entry of a
// record drives the assessment.
type CloseApproach struct {
	Date             string           `json:"close_approach_date"`
	DateFull         string           `json:"close_approach_date_full,omitempty"` // "2024-Jan-15 08:30"
	RelativeVelocity RelativeVelocity `json:"relative_velocity"`
	MissDistance     MissDistance     `json:"miss_distance"`
	OrbitingBody     string           `json:"orbiting_body,omitempty"`
}

type RelativeVelocity struct {
	KilometersPerSecond NumString `json:"kilometers_per_second"`
}

type MissDistance struct {
	Astronomical NumString `json:"astronomical"`
}

// OrbitalData holds the osculating elements NeoWs publishes on lookup.
// Inclination is in degrees, semi-major axis in AU.
type OrbitalData struct {
	OrbitID       string      `json:"orbit_id,omitempty"`
	Eccentricity  NumString   `json:"eccentricity"`
	Inclination   NumString   `json:"inclination"`
	SemiMajorAxis NumString   `json:"semi_major_axis"`
	OrbitClass    *OrbitClass `json:"orbit_class,omitempty"`

	lookedUp bool
}

type OrbitClass struct {
	Type        string `json:"orbit_class_type"`
	Description string `json:"orbit_class_description,omitempty"`
}

// IsEmpty reports whether none of the elements the assessment uses are set.
func (o OrbitalData) IsEmpty() bool {
	return o.Eccentricity == "" && o.Inclination == "" && o.SemiMajorAxis == ""
}

// FeedResponse is the NeoWs /feed envelope: objects grouped by approach date.
type FeedResponse struct {
	ElementCount     int                    `json:"element_count"`
	NearEarthObjects map[string][]NeoRecord `json:"near_earth_objects"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
