package domain

import (
	"context"
	"log/slog"
)

// OrbitalDataSource looks up published orbital elements by object id.
type OrbitalDataSource interface {
	LookupOrbit(ctx context.Context, id string) (OrbitalData, error)
}

// EnrichWithOrbitalData fills in orbital elements for records that arrive
// without them. A nil source, a failed lookup or an empty result leave the
// record unchanged so the orbit falls back to randomized elements.
func EnrichWithOrbitalData(ctx context.Context, rec NeoRecord, src OrbitalDataSource, logger *slog.Logger) NeoRecord {
	if src == nil {
		return rec
	}
	if rec.OrbitalData != nil && !rec.OrbitalData.IsEmpty() {
		return rec
	}

	od, err := src.LookupOrbit(ctx, rec.ID)
	if err != nil {
		logger.Warn("orbital data lookup failed",
			"neo_id", rec.ID,
			"name", rec.Name,
			"error", err,
		)
		return rec
	}
	if od.IsEmpty() {
		return rec
	}

	od.lookedUp = true
	rec.OrbitalData = &od
	return rec
}
