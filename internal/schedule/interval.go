package schedule

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar-day form reservations are stored under.
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock form for slot boundaries.
	TimeLayout = "15:04"
)

// Interval is a normalized, comparable time range on one calendar
// day.  Both bounds are absolute UTC instants; when the requested end
// time is lexically before the start time the end instant has already
// been rolled forward one day, so 23:00–01:00 on June 1st ends at
// 01:00 on June 2nd.  All midnight-crossing arithmetic lives here;
// callers never re-derive it.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an Interval from a date ("2006-01-02") and two
// wall-clock times ("15:04").  A zero-length interval (start == end)
// is rejected, as is anything that fails to parse.
func NewInterval(date, startTime, endTime string) (Interval, error) {
	if startTime == endTime {
		return Interval{}, fmt.Errorf("%w: start equals end", ErrInvalidInterval)
	}
	start, err := time.Parse(DateLayout+"T"+TimeLayout, date+"T"+startTime)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	end, err := time.Parse(DateLayout+"T"+TimeLayout, date+"T"+endTime)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	// An end before the start means the slot runs past midnight into
	// the next calendar day.
	if endTime < startTime {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return Interval{}, fmt.Errorf("%w: end not after start", ErrInvalidInterval)
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two intervals on the same table conflict.
// Bounds are half-open: intervals that share only an endpoint (one
// party leaving at 19:00, the next arriving at 19:00) do not overlap.
// This is the single source of truth for conflict checks.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// ProposedInterval carries an operator-proposed alternate slot for a
// waiting-list reservation.  It exists so the proposal crosses the
// API as an explicit, validated value rather than loose strings.
type ProposedInterval struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Resolve validates the proposal against the reservation's original
// date and returns the normalized interval.
func (p ProposedInterval) Resolve(date string) (Interval, error) {
	return NewInterval(date, p.StartTime, p.EndTime)
}
