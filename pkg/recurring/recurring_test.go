package recurring

import (
	"testing"

	"github.com/moneta/moneta/internal/dates"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("should treat both bounds as inclusive", func(t *testing.T) {
		start := d("2024-03-01")
		end := d("2024-03-31")

		assert.Equal(t, StatusNotStarted, Classify("2024-02-29", start, end))
		assert.Equal(t, StatusActive, Classify("2024-03-01", start, end))
		assert.Equal(t, StatusActive, Classify("2024-03-15", start, end))
		assert.Equal(t, StatusActive, Classify("2024-03-31", start, end))
		assert.Equal(t, StatusEnded, Classify("2024-04-01", start, end))
	})

	t.Run("should never end an open-ended template", func(t *testing.T) {
		assert.Equal(t, StatusActive, Classify("2999-12-31", d("2024-03-01"), dates.None))
	})

	t.Run("should be active on a single-day schedule", func(t *testing.T) {
		day := d("2024-03-01")
		assert.Equal(t, StatusActive, Classify(day, day, day))
	})
}

func TestFrequency_Valid(t *testing.T) {
	t.Run("should accept the five known cadences", func(t *testing.T) {
		for _, f := range []Frequency{Daily, Weekly, Fortnightly, Monthly, Yearly} {
			assert.True(t, f.Valid(), string(f))
		}
	})

	t.Run("should reject anything else", func(t *testing.T) {
		assert.False(t, Frequency("hourly").Valid())
		assert.False(t, Frequency("").Valid())
	})
}
