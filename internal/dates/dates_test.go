package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("should accept a plain date", func(t *testing.T) {
		assert.Equal(t, Date("2024-01-31"), Normalize("2024-01-31"))
	})

	t.Run("should strip a trailing time component", func(t *testing.T) {
		assert.Equal(t, Date("2024-01-31"), Normalize("2024-01-31T15:04:05Z"))
		assert.Equal(t, Date("2024-01-31"), Normalize("2024-01-31 15:04:05"))
	})

	t.Run("should return the sentinel for garbage", func(t *testing.T) {
		assert.Equal(t, None, Normalize("not-a-date"))
		assert.Equal(t, None, Normalize(""))
		assert.Equal(t, None, Normalize("31/01/2024"))
	})
}

func TestAddDays(t *testing.T) {
	t.Run("should add days across month boundaries", func(t *testing.T) {
		assert.Equal(t, Date("2024-03-01"), Date("2024-02-29").AddDays(1))
		assert.Equal(t, Date("2023-12-31"), Date("2024-01-01").AddDays(-1))
	})

	t.Run("should propagate the sentinel", func(t *testing.T) {
		assert.Equal(t, None, None.AddDays(5))
	})
}

func TestAddMonths(t *testing.T) {
	t.Run("should clamp to the target month's last day", func(t *testing.T) {
		assert.Equal(t, Date("2024-02-29"), Date("2024-01-31").AddMonths(1))
		assert.Equal(t, Date("2023-02-28"), Date("2023-01-31").AddMonths(1))
		assert.Equal(t, Date("2024-04-30"), Date("2024-05-31").AddMonths(-1))
	})

	t.Run("should cross year boundaries", func(t *testing.T) {
		assert.Equal(t, Date("2025-01-15"), Date("2024-11-15").AddMonths(2))
	})

	t.Run("should propagate the sentinel", func(t *testing.T) {
		assert.Equal(t, None, None.AddMonths(3))
	})
}

func TestCompare(t *testing.T) {
	t.Run("should order dates chronologically", func(t *testing.T) {
		assert.Equal(t, -1, Compare("2024-01-31", "2024-02-01"))
		assert.Equal(t, 0, Compare("2024-01-31", "2024-01-31"))
		assert.Equal(t, 1, Compare("2024-12-01", "2024-02-28"))
	})
}

func TestMinMax(t *testing.T) {
	t.Run("should skip sentinels", func(t *testing.T) {
		assert.Equal(t, Date("2024-01-01"), Min(None, "2024-01-01", "2024-06-01"))
		assert.Equal(t, Date("2024-06-01"), Max("2024-01-01", None, "2024-06-01"))
	})

	t.Run("should return the sentinel when nothing is valid", func(t *testing.T) {
		assert.Equal(t, None, Min(None))
		assert.Equal(t, None, Max())
	})
}

func TestBoundaries(t *testing.T) {
	t.Run("should compute month boundaries", func(t *testing.T) {
		assert.Equal(t, Date("2024-02-01"), Date("2024-02-15").StartOfMonth())
		assert.Equal(t, Date("2024-02-29"), Date("2024-02-15").EndOfMonth())
		assert.Equal(t, Date("2023-02-28"), Date("2023-02-15").EndOfMonth())
	})

	t.Run("should compute year boundaries", func(t *testing.T) {
		assert.Equal(t, Date("2024-01-01"), Date("2024-07-04").StartOfYear())
		assert.Equal(t, Date("2024-12-31"), Date("2024-07-04").EndOfYear())
	})

	t.Run("should compute week boundaries for a Monday start", func(t *testing.T) {
		// 2024-01-17 is a Wednesday
		assert.Equal(t, Date("2024-01-15"), Date("2024-01-17").StartOfWeek(time.Monday))
		assert.Equal(t, Date("2024-01-21"), Date("2024-01-17").EndOfWeek(time.Monday))
	})

	t.Run("should compute week boundaries for a Sunday start", func(t *testing.T) {
		assert.Equal(t, Date("2024-01-14"), Date("2024-01-17").StartOfWeek(time.Sunday))
		assert.Equal(t, Date("2024-01-20"), Date("2024-01-17").EndOfWeek(time.Sunday))
	})
}

func TestRange(t *testing.T) {
	t.Run("should enumerate days inclusively", func(t *testing.T) {
		var got []Date
		for d := range Range("2024-02-27", "2024-03-01") {
			got = append(got, d)
		}
		assert.Equal(t, []Date{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, got)
	})

	t.Run("should be empty when start is after end", func(t *testing.T) {
		count := 0
		for range Range("2024-03-01", "2024-02-01") {
			count++
		}
		assert.Zero(t, count)
	})

	t.Run("should be restartable", func(t *testing.T) {
		seq := Range("2024-01-01", "2024-01-03")
		for range 2 {
			var got []Date
			for d := range seq {
				got = append(got, d)
			}
			assert.Len(t, got, 3)
		}
	})
}

func TestDaysInMonth(t *testing.T) {
	t.Run("should handle leap years", func(t *testing.T) {
		assert.Equal(t, 29, DaysInMonth(2024, time.February))
		assert.Equal(t, 28, DaysInMonth(2023, time.February))
		assert.Equal(t, 28, DaysInMonth(2100, time.February))
		assert.Equal(t, 29, DaysInMonth(2000, time.February))
	})
}
