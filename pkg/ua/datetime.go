package ua

import (
	"fmt"
	"math"
	"time"
)

// DateTime is the protocol's timestamp: 100-nanosecond ticks since
// 1601-01-01T00:00:00Z. Zero means "not set"; MaxDateTime means "end of
// time". The representable range runs from the 1601 epoch to the year
// 30828.
type DateTime int64

// Seconds between the 1601 epoch and the Unix epoch.
const dateTimeUnixDelta = 11644473600

const ticksPerSecond = 10_000_000

// MinDateTime is the 1601 epoch, MaxDateTime the last representable tick.
const (
	MinDateTime DateTime = 0
	MaxDateTime DateTime = math.MaxInt64
)

// NewDateTime converts a time.Time, truncating to 100 ns resolution.
// Times before the 1601 epoch or past the last representable tick fail
// with ErrTimeOutOfRange.
func NewDateTime(t time.Time) (DateTime, error) {
	secs := t.Unix()
	if secs < -dateTimeUnixDelta {
		return 0, fmt.Errorf("datetime %s: before 1601 epoch: %w", t.UTC().Format(time.RFC3339), ErrTimeOutOfRange)
	}
	const maxWholeSeconds = math.MaxInt64/ticksPerSecond - dateTimeUnixDelta
	if secs >= maxWholeSeconds {
		return 0, fmt.Errorf("datetime %s: past last representable tick: %w", t.UTC().Format(time.RFC3339), ErrTimeOutOfRange)
	}
	ticks := (secs+dateTimeUnixDelta)*ticksPerSecond + int64(t.Nanosecond())/100
	return DateTime(ticks), nil
}

// DateTimeNow returns the current time as a DateTime.
func DateTimeNow() DateTime {
	d, _ := NewDateTime(time.Now())
	return d
}

// Time converts back to a time.Time in UTC. The conversion is total: it
// is exact for every DateTime value, including ones outside the range
// NewDateTime accepts.
func (d DateTime) Time() time.Time {
	secs := int64(d) / ticksPerSecond
	rem := int64(d) % ticksPerSecond
	if rem < 0 {
		rem += ticksPerSecond
		secs--
	}
	return time.Unix(secs-dateTimeUnixDelta, rem*100).UTC()
}

// IsSet reports whether the value carries an actual instant rather than
// the "not set" zero.
func (d DateTime) IsSet() bool { return d != 0 }

// String returns the RFC 3339 form with 100 ns precision.
func (d DateTime) String() string {
	return d.Time().Format("2006-01-02T15:04:05.0000000Z07:00")
}
