package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidWindow     = errors.New("invalid availability window")
	ErrOverlappingWindow = errors.New("overlapping availability windows")
)

// Window is a recurring weekly interval [Start, End) on Day.
type Window struct {
	Day   time.Weekday `json:"day"`
	Start TimeOfDay    `json:"start"`
	End   TimeOfDay    `json:"end"`
}

func (w Window) Validate() error {
	if w.Day < time.Sunday || w.Day > time.Saturday {
		return fmt.Errorf("%w: unknown day %d", ErrInvalidWindow, w.Day)
	}
	if w.Start < 0 || w.End > minutesPerDay {
		return fmt.Errorf("%w: %s-%s out of range", ErrInvalidWindow, w.Start, w.End)
	}
	if w.End < w.Start {
		return fmt.Errorf("%w: %s-%s ends before it starts", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

func (w Window) overlaps(o Window) bool {
	return w.Day == o.Day && w.Start < o.End && o.Start < w.End
}

// ValidateWeek checks windows before they are stored: each must be valid and
// non-empty, and windows of one day must not overlap.
func ValidateWeek(windows []Window) error {
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
		if w.Start == w.End {
			return fmt.Errorf("%w: %s %s-%s is empty", ErrInvalidWindow, w.Day, w.Start, w.End)
		}
		for _, o := range windows[i+1:] {
			if w.overlaps(o) {
				return fmt.Errorf("%w: %s %s-%s and %s-%s",
					ErrOverlappingWindow, w.Day, w.Start, w.End, o.Start, o.End)
			}
		}
	}
	return nil
}

// SortWeek orders windows Monday first, then by start time.
func SortWeek(windows []Window) {
	sort.SliceStable(windows, func(i, j int) bool {
		di, dj := mondayFirst(windows[i].Day), mondayFirst(windows[j].Day)
		if di != dj {
			return di < dj
		}
		return windows[i].Start < windows[j].Start
	})
}

func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ParseWeekday accepts the shapes weekday names tend to be stored in:
// "mon", "Monday", "TUE", and numbers (0..6 with Sunday=0, or 7 for Sunday).
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n >= 0 && n <= 6:
			return time.Weekday(n), true
		case n == 7:
			return time.Sunday, true
		default:
			return 0, false
		}
	}

	switch s {
	case "sun", "sunday":
		return time.Sunday, true
	case "mon", "monday":
		return time.Monday, true
	case "tue", "tues", "tuesday":
		return time.Tuesday, true
	case "wed", "wednesday":
		return time.Wednesday, true
	case "thu", "thur", "thurs", "thursday":
		return time.Thursday, true
	case "fri", "friday":
		return time.Friday, true
	case "sat", "saturday":
		return time.Saturday, true
	default:
		return 0, false
	}
}
