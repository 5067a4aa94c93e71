// Package schedule holds the pure scheduling core: interval algebra,
// capacity bucketing and availability resolution.  Nothing in this
// package touches the store; callers fetch the day's tables and
// reservations first and pass them in.
package schedule

import "errors"

// ErrInvalidInterval is returned for malformed or zero-length
// intervals (bad date, bad time, start == end).
var ErrInvalidInterval = errors.New("invalid interval")

// ErrInvalidPartySize is returned for party sizes below one.
var ErrInvalidPartySize = errors.New("party size must be positive")

// ErrCapacityExceeded is returned when no capacity tier can seat the
// party.  The largest tier seats 15; bigger parties are rejected
// outright rather than silently filtered.
var ErrCapacityExceeded = errors.New("party size exceeds largest table capacity")
