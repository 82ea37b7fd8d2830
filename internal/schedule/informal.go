package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedInformal = errors.New("malformed availability description")

// ParseInformal reads a free-form availability description and returns the
// windows that apply to day. Two shapes are understood:
//
//	"09:00-17:00"                       every day
//	"Mon 09:00-13:00; Wed 10:00-14:00"  per day, segments split by ';' or ','
//
// Any unreadable segment makes the whole description malformed.
func ParseInformal(s string, day time.Weekday) ([]Window, error) {
	const op = "schedule.ParseInformal"

	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%s: %w: empty", op, ErrMalformedInformal)
	}

	segments := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	if len(segments) == 0 {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrMalformedInformal, s)
	}

	var windows []Window
	for _, seg := range segments {
		w, everyDay, err := parseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if everyDay {
			w.Day = day
		}
		if w.Day == day {
			windows = append(windows, w)
		}
	}

	return windows, nil
}

func parseSegment(seg string) (Window, bool, error) {
	fields := strings.Fields(seg)
	if len(fields) == 0 {
		return Window{}, false, fmt.Errorf("%w: empty segment", ErrMalformedInformal)
	}

	var (
		w        Window
		everyDay = true
	)
	if !strings.ContainsAny(fields[0], ":-") {
		d, ok := ParseWeekday(fields[0])
		if !ok {
			return Window{}, false, fmt.Errorf("%w: unknown day %q", ErrMalformedInformal, fields[0])
		}
		w.Day = d
		everyDay = false
		fields = fields[1:]
	}

	bounds := strings.Split(strings.Join(fields, ""), "-")
	if len(bounds) != 2 {
		return Window{}, false, fmt.Errorf("%w: %q is not a HH:MM-HH:MM range", ErrMalformedInformal, strings.TrimSpace(seg))
	}

	start, err := ParseTimeOfDay(bounds[0])
	if err != nil {
		return Window{}, false, fmt.Errorf("%w: %v", ErrMalformedInformal, err)
	}
	end, err := ParseTimeOfDay(bounds[1])
	if err != nil {
		return Window{}, false, fmt.Errorf("%w: %v", ErrMalformedInformal, err)
	}
	w.Start, w.End = start, end

	if err := w.Validate(); err != nil {
		return Window{}, false, fmt.Errorf("%w: %v", ErrMalformedInformal, err)
	}

	return w, everyDay, nil
}
