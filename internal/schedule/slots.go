package schedule

import (
	"sort"
	"time"
)

// Source tells which availability description produced a day's windows.
type Source string

const (
	SourceWeekly   Source = "weekly"
	SourceInformal Source = "informal"
	SourceDefault  Source = "default"
)

var (
	DefaultStart = NewTimeOfDay(9, 0)
	DefaultEnd   = NewTimeOfDay(17, 0)
)

// Resolution is the outcome of picking windows for one calendar day.
type Resolution struct {
	Source  Source
	Windows []Window
	// InformalErr is set when an informal description was present but could
	// not be read, so resolution moved on to the default window.
	InformalErr error
}

// Resolve picks the windows for day, in order of preference: structured
// weekly windows, then the informal description, then the default 09:00-17:00.
// A readable informal description is authoritative even if it leaves day empty.
func Resolve(day time.Weekday, weekly []Window, informal string) Resolution {
	var res Resolution

	for _, w := range weekly {
		if w.Day == day {
			res.Windows = append(res.Windows, w)
		}
	}
	if len(res.Windows) > 0 {
		res.Source = SourceWeekly
		return res
	}

	if informal != "" {
		windows, err := ParseInformal(informal, day)
		if err == nil {
			res.Source = SourceInformal
			res.Windows = windows
			return res
		}
		res.InformalErr = err
	}

	res.Source = SourceDefault
	res.Windows = []Window{{Day: day, Start: DefaultStart, End: DefaultEnd}}
	return res
}

// Slots walks each window in SlotDuration steps and returns every start whose
// slot fits entirely inside its window, merged ascending without duplicates.
func Slots(windows []Window) []TimeOfDay {
	seen := make(map[TimeOfDay]struct{})
	out := make([]TimeOfDay, 0)

	for _, w := range windows {
		for t := w.Start; t+TimeOfDay(slotMinutes) <= w.End; t += TimeOfDay(slotMinutes) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generate returns the candidate slots for date together with how they were resolved.
func Generate(date time.Time, weekly []Window, informal string) ([]TimeOfDay, Resolution) {
	res := Resolve(date.Weekday(), weekly, informal)
	return Slots(res.Windows), res
}

// Subtract returns the members of slots not present in taken, preserving order.
func Subtract(slots, taken []TimeOfDay) []TimeOfDay {
	busy := make(map[TimeOfDay]struct{}, len(taken))
	for _, t := range taken {
		busy[t] = struct{}{}
	}

	out := make([]TimeOfDay, 0, len(slots))
	for _, s := range slots {
		if _, ok := busy[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func Contains(slots []TimeOfDay, t TimeOfDay) bool {
	i := sort.Search(len(slots), func(i int) bool { return slots[i] >= t })
	return i < len(slots) && slots[i] == t
}
