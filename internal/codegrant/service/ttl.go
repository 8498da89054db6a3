package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeUnit names the unit a TTL count is expressed in. Long and short names
// are accepted, e.g. "days" or "d". Note "M" is months and "m" minutes.
type TimeUnit string

var ErrUnknownUnit = errors.New("unknown time unit")

var fixedUnits = map[TimeUnit]time.Duration{
	"ms": time.Millisecond, "millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// Validate reports ErrUnknownUnit for anything AddTo would reject.
func (u TimeUnit) Validate() error {
	_, err := u.AddTo(time.Unix(0, 0), 1)
	return err
}

// AddTo returns t moved forward by n units. Months and years follow the
// calendar, everything else is a fixed duration.
func (u TimeUnit) AddTo(t time.Time, n int) (time.Time, error) {
	// Single letters are case sensitive, full names are not.
	if len(u) > 2 {
		u = TimeUnit(strings.ToLower(string(u)))
	}

	switch u {
	case "M", "month", "months":
		return t.AddDate(0, n, 0), nil
	case "Q", "quarter", "quarters":
		return t.AddDate(0, 3*n, 0), nil
	case "y", "year", "years":
		return t.AddDate(n, 0, 0), nil
	}

	d, ok := fixedUnits[u]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return t.Add(time.Duration(n) * d), nil
}
