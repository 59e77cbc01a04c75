//go:build unit

package kmerfreq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDistinct(t *testing.T) {
	t.Run("caps at the number of possible k-mers", func(t *testing.T) {
		assert.Equal(t, int64(64), EstimateDistinct(1000000, 3))
		assert.Equal(t, int64(1000), EstimateDistinct(1000, 3))
		assert.Equal(t, int64(math.MaxInt64), EstimateDistinct(math.MaxInt64, 32))
	})
}

func TestEntryBytes(t *testing.T) {
	t.Run("record bytes plus table overhead", func(t *testing.T) {
		assert.Equal(t, int64(17), EntryBytes(3))
		assert.Equal(t, int64(24), EntryBytes(32))
	})
}

func TestUseDSK(t *testing.T) {
	t.Run("small inputs fit the filter engine", func(t *testing.T) {
		assert.False(t, UseDSK(1000, 21, 4<<30))
	})

	t.Run("huge distinct volume selects the partitioned engine", func(t *testing.T) {
		assert.True(t, UseDSK(10_000_000_000, 21, 4<<30))
	})

	t.Run("decision is monotone in volume", func(t *testing.T) {
		// Prepare
		const memory = int64(1 << 20)

		// Execute and check - once true it stays true as volume grows
		seen := false
		for volume := int64(1); volume < 1<<22; volume *= 2 {
			use := UseDSK(volume, 21, memory)
			if seen {
				assert.True(t, use)
			}
			seen = seen || use
		}
		assert.True(t, seen)
	})
}
