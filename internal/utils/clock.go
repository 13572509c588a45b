package utils

import (
	"time"

	"github.com/moneta/moneta/internal/dates"
)

// Clock abstracts "now" so that date-sensitive services can be tested with
// a fixed point in time.
type Clock interface {
	Now() time.Time
	// Today returns the local calendar date at the moment of the call.
	Today() dates.Date
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

func (s SystemClock) Today() dates.Date {
	return dates.FromTime(time.Now())
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) Today() dates.Date {
	return dates.FromTime(m.FixedNow)
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
