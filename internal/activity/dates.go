package activity

import (
	"errors"
	"regexp"
	"time"
)

// ErrBadDateShape marks a source date pair the normalizer cannot express
// (e.g. date-only start with a timestamped end). The event is skipped for the
// pass, not fatal.
var ErrBadDateShape = errors.New("unsupported date shape")

var dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Interval is the canonical (start, end, all-day) form of a source date pair.
// For all-day events End is the midnight after the last displayed day
// (exclusive end convention).
type Interval struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// NormalizeDates converts a source (start, end) marker pair into a canonical
// interval. end may be empty. Defaults: one day for all-day events, one hour
// for timed events without an end.
func NormalizeDates(start, end string) (Interval, error) {
	if start == "" {
		return Interval{}, ErrBadDateShape
	}

	startIsDate := dateOnlyRe.MatchString(start)
	endIsDate := end != "" && dateOnlyRe.MatchString(end)

	switch {
	case startIsDate && end == "":
		day, err := parseDate(start)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Start: day, End: day.AddDate(0, 0, 1), AllDay: true}, nil

	case startIsDate && endIsDate:
		first, err := parseDate(start)
		if err != nil {
			return Interval{}, err
		}
		last, err := parseDate(end)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Start: first, End: last.AddDate(0, 0, 1), AllDay: true}, nil

	case !startIsDate && end == "":
		at, err := parseInstant(start)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Start: at, End: at.Add(time.Hour), AllDay: false}, nil

	case !startIsDate && !endIsDate:
		from, err := parseInstant(start)
		if err != nil {
			return Interval{}, err
		}
		to, err := parseInstant(end)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Start: from, End: to, AllDay: false}, nil
	}

	// date-only start with timestamped end, or the reverse
	return Interval{}, ErrBadDateShape
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, ErrBadDateShape
	}
	return t, nil
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrBadDateShape
	}
	return t.UTC(), nil
}
