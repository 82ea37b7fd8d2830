package schedule

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	ok := map[string]TimeOfDay{
		"09:00":    hm(9, 0),
		"23:59":    hm(23, 59),
		"00:00":    0,
		"24:00":    hm(24, 0),
		"13:30:00": hm(13, 30),
		" 08:15 ":  hm(8, 15),
	}
	for in, want := range ok {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseTimeOfDay(%q) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "9:00", "25:00", "24:30", "12:60", "12:00:30", "ab:cd", "12-00"} {
		if _, err := ParseTimeOfDay(in); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("ParseTimeOfDay(%q): expected ErrInvalidTime, got %v", in, err)
		}
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	b, err := json.Marshal([]TimeOfDay{hm(9, 0), hm(16, 30)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["09:00","16:30"]` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestTimeOfDay_On(t *testing.T) {
	got := hm(14, 30).On(monday)
	want := time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if d.Weekday() != time.Thursday {
		t.Fatalf("expected thursday, got %s", d.Weekday())
	}

	for _, in := range []string{"2023-02-29", "01/02/2024", "", "2024-1-1"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q): expected error", in)
		}
	}
}

func TestValidateWeek(t *testing.T) {
	good := []Window{
		{Day: time.Monday, Start: hm(9, 0), End: hm(12, 0)},
		{Day: time.Monday, Start: hm(12, 0), End: hm(13, 0)},
		{Day: time.Tuesday, Start: hm(9, 0), End: hm(12, 0)},
	}
	if err := ValidateWeek(good); err != nil {
		t.Fatalf("expected valid week, got %v", err)
	}

	overlapping := []Window{
		{Day: time.Monday, Start: hm(9, 0), End: hm(12, 0)},
		{Day: time.Monday, Start: hm(11, 30), End: hm(13, 0)},
	}
	if err := ValidateWeek(overlapping); !errors.Is(err, ErrOverlappingWindow) {
		t.Fatalf("expected overlap error, got %v", err)
	}

	backwards := []Window{{Day: time.Friday, Start: hm(12, 0), End: hm(9, 0)}}
	if err := ValidateWeek(backwards); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected invalid window error, got %v", err)
	}

	empty := []Window{{Day: time.Friday, Start: hm(9, 0), End: hm(9, 0)}}
	if err := ValidateWeek(empty); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected empty window to be rejected, got %v", err)
	}
}

func TestSortWeek(t *testing.T) {
	week := []Window{
		{Day: time.Sunday, Start: hm(9, 0), End: hm(10, 0)},
		{Day: time.Monday, Start: hm(14, 0), End: hm(15, 0)},
		{Day: time.Monday, Start: hm(9, 0), End: hm(10, 0)},
	}
	SortWeek(week)
	if week[0].Day != time.Monday || week[0].Start != hm(9, 0) || week[2].Day != time.Sunday {
		t.Fatalf("unexpected order %+v", week)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"Monday": time.Monday,
		"tue":    time.Tuesday,
		"THURS":  time.Thursday,
		"0":      time.Sunday,
		"7":      time.Sunday,
		"6":      time.Saturday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		if !ok || got != want {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "8", "someday"} {
		if _, ok := ParseWeekday(in); ok {
			t.Errorf("ParseWeekday(%q): expected failure", in)
		}
	}
}
