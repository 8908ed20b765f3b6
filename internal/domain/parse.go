package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMissingValue is reported for an empty or absent numeric field.
	ErrMissingValue = errors.New("missing value")
	// ErrNonFinite is reported when a numeric field parses to NaN or ±Inf.
	ErrNonFinite = errors.New("non-finite value")
)

// ParseError describes one numeric field that could not be read.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError aggregates the parse failures of a single record.
type ValidationError struct {
	ID     string
	Issues []*ParseError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Error()
	}
	return fmt.Sprintf("neo %s: %d invalid field(s): %s", e.ID, len(e.Issues), strings.Join(parts, "; "))
}

// ValidationPolicy selects what happens to records with unparsable numeric fields.
type ValidationPolicy string

const (
	// PolicyPermissive lets NaN flow through every derived value.
	PolicyPermissive ValidationPolicy = "permissive"
	// PolicyZeroFill replaces unparsable core fields with 0.
	PolicyZeroFill ValidationPolicy = "zero_fill"
	// PolicyReject fails the record with a *ValidationError.
	PolicyReject ValidationPolicy = "reject"
)

// ParseValidationPolicy maps a configuration string to a policy. Empty means permissive.
func ParseValidationPolicy(s string) (ValidationPolicy, error) {
	switch p := ValidationPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPermissive, nil
	case PolicyPermissive, PolicyZeroFill, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown validation policy %q", s)
	}
}

// ParseNumber reads a numeric leaf. On failure it returns NaN together with
// the error so callers can choose between propagating and rejecting.
func ParseNumber(field string, v NumString) (float64, *ParseError) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return math.NaN(), &ParseError{Field: field, Value: s, Err: ErrMissingValue}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return math.NaN(), &ParseError{Field: field, Value: s, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f, &ParseError{Field: field, Value: s, Err: ErrNonFinite}
	}
	return f, nil
}

// DecodeNeoRecord unmarshals a single source message.
func DecodeNeoRecord(raw RawEvent) (NeoRecord, error) {
	var rec NeoRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return NeoRecord{}, fmt.Errorf("decode neo record: %w", err)
	}
	if err := normalizeID(&rec); err != nil {
		return NeoRecord{}, fmt.Errorf("decode neo record: %w", err)
	}
	return rec, nil
}

// ErrMissingID reports a record with neither id nor neo_reference_id.
var ErrMissingID = errors.New("missing id")

// normalizeID falls back to neo_reference_id. The id keys the random stream
// and the orbit lookup, so a record without one cannot be assessed.
func normalizeID(rec *NeoRecord) error {
	if rec.ID == "" {
		rec.ID = rec.NeoReferenceID
	}
	if rec.ID == "" {
		return ErrMissingID
	}
	return nil
}

func normalizeIDs(recs []NeoRecord) error {
	for i := range recs {
		if err := normalizeID(&recs[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// DecodeRecords accepts either a NeoWs feed response or a JSON array of
// records. Feed groups are flattened in ascending date order.
func DecodeRecords(data []byte) ([]NeoRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var recs []NeoRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode neo records: %w", err)
		}
		if err := normalizeIDs(recs); err != nil {
			return nil, fmt.Errorf("decode neo records: %w", err)
		}
		return recs, nil
	}

	var feed FeedResponse
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("decode neo feed: %w", err)
	}
	if feed.NearEarthObjects == nil {
		return nil, errors.New("decode neo feed: missing near_earth_objects")
	}

	dates := make([]string, 0, len(feed.NearEarthObjects))
	for d := range feed.NearEarthObjects {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var recs []NeoRecord
	for _, d := range dates {
		recs = append(recs, feed.NearEarthObjects[d]...)
	}
	if err := normalizeIDs(recs); err != nil {
		return nil, fmt.Errorf("decode neo feed: %w", err)
	}
	return recs, nil
}
