package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is an amount of a calendar unit, written "5d", "2w", "6h".
type Duration struct {
	Amount float64
	Unit   Unit
}

var durationPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(ms|min|y|m|w|d|h|s)$`)

// ParseDuration parses a single duration string.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Duration{}, fmt.Errorf("invalid duration %q", s)
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	unit, err := ParseUnit(m[2])
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return Duration{Amount: amount, Unit: unit}, nil
}

// ParseDurations parses a space separated list such as "1w 2d".
func ParseDurations(s string) ([]Duration, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	out := make([]Duration, 0, len(fields))
	for _, f := range fields {
		d, err := ParseDuration(f)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (d Duration) String() string {
	return strconv.FormatFloat(d.Amount, 'f', -1, 64) + d.Unit.Abbrev()
}

// AddTo returns t moved forward by d.
func (d Duration) AddTo(t time.Time) time.Time {
	return Add(t, d.Amount, d.Unit)
}

// SubFrom returns t moved backward by d.
func (d Duration) SubFrom(t time.Time) time.Time {
	return Add(t, -d.Amount, d.Unit)
}

// ConvertScales expresses d in another unit using day equivalents
// (a month is 30 days, a year 365).
func ConvertScales(d Duration, to Unit) float64 {
	return d.Amount * d.Unit.Days() / to.Days()
}
