package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFeatures(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		f, issues := NormalizeFeatures(newRecord("257.8", "18.1279360862", "0.0269251", true))

		assert.Empty(t, issues)
		assert.InDelta(t, 257.8, f.Size, 1e-9)
		assert.InDelta(t, 18.1279360862, f.Velocity, 1e-9)
		assert.InDelta(t, 0.0269251, f.MissDistance, 1e-9)
		assert.True(t, f.IsPHA)
	})

	t.Run("uses max diameter and first approach", func(t *testing.T) {
		rec := newRecord("40", "5", "0.2", false)
		rec.CloseApproachData = append(rec.CloseApproachData, CloseApproach{
			RelativeVelocity: RelativeVelocity{KilometersPerSecond: "99"},
			MissDistance:     MissDistance{Astronomical: "0.0001"},
		})
		f, _ := NormalizeFeatures(rec)

		assert.Equal(t, 40.0, f.Size)
		assert.Equal(t, 5.0, f.Velocity)
		assert.Equal(t, 0.2, f.MissDistance)
	})

	t.Run("malformed velocity is NaN", func(t *testing.T) {
		f, issues := NormalizeFeatures(newRecord("40", "fast", "0.2", false))

		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Field, "kilometers_per_second")
		assert.True(t, math.IsNaN(f.Velocity))
		assert.Equal(t, 40.0, f.Size)
	})

	t.Run("no close approach data", func(t *testing.T) {
		rec := newRecord("40", "5", "0.2", false)
		rec.CloseApproachData = nil
		f, issues := NormalizeFeatures(rec)

		assert.Len(t, issues, 2)
		assert.True(t, math.IsNaN(f.Velocity))
		assert.True(t, math.IsNaN(f.MissDistance))
	})

	t.Run("zero fill", func(t *testing.T) {
		f, _ := NormalizeFeatures(newRecord("", "fast", "0.2", false))
		f = f.zeroFilled()

		assert.Equal(t, Features{Size: 0, Velocity: 0, MissDistance: 0.2}, f)
	})
}
