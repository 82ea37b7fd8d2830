package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hm(h, m int) TimeOfDay { return NewTimeOfDay(h, m) }

func slotStrings(slots []TimeOfDay) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func TestGenerate_MondayHour(t *testing.T) {
	weekly := []Window{{Day: time.Monday, Start: hm(9, 0), End: hm(10, 0)}}

	slots, res := Generate(monday, weekly, "")
	if res.Source != SourceWeekly {
		t.Fatalf("expected weekly source, got %s", res.Source)
	}
	if got := slotStrings(slots); got != "09:00,09:30" {
		t.Fatalf("expected 09:00,09:30, got %s", got)
	}
}

func TestGenerate_DefaultLadder(t *testing.T) {
	slots, res := Generate(monday, nil, "")
	if res.Source != SourceDefault {
		t.Fatalf("expected default source, got %s", res.Source)
	}
	if res.InformalErr != nil {
		t.Fatalf("expected no informal error, got %v", res.InformalErr)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d (%s)", len(slots), slotStrings(slots))
	}
	if slots[0] != hm(9, 0) || slots[15] != hm(16, 30) {
		t.Fatalf("unexpected ladder bounds %s..%s", slots[0], slots[15])
	}
}

func TestGenerate_WindowsOnOtherDaysIgnored(t *testing.T) {
	weekly := []Window{{Day: time.Tuesday, Start: hm(9, 0), End: hm(12, 0)}}

	slots, res := Generate(monday, weekly, "")
	if res.Source != SourceDefault {
		t.Fatalf("expected default source, got %s", res.Source)
	}
	if len(slots) != 16 {
		t.Fatalf("expected default ladder, got %s", slotStrings(slots))
	}
}

func TestGenerate_MergesDisjointAndOverlappingWindows(t *testing.T) {
	weekly := []Window{
		{Day: time.Monday, Start: hm(14, 0), End: hm(15, 0)},
		{Day: time.Monday, Start: hm(9, 0), End: hm(10, 0)},
		{Day: time.Monday, Start: hm(9, 30), End: hm(10, 30)},
	}

	slots, _ := Generate(monday, weekly, "")
	if got := slotStrings(slots); got != "09:00,09:30,10:00,14:00,14:30" {
		t.Fatalf("unexpected merge: %s", got)
	}
}

func TestSlots_EmptyAndRemainder(t *testing.T) {
	if got := Slots([]Window{{Day: time.Monday, Start: hm(9, 0), End: hm(9, 0)}}); len(got) != 0 {
		t.Fatalf("expected no slots for empty window, got %s", slotStrings(got))
	}

	got := Slots([]Window{{Day: time.Monday, Start: hm(9, 0), End: hm(10, 15)}})
	if slotStrings(got) != "09:00,09:30" {
		t.Fatalf("expected remainder dropped, got %s", slotStrings(got))
	}

	got = Slots([]Window{{Day: time.Monday, Start: hm(9, 0), End: hm(9, 20)}})
	if len(got) != 0 {
		t.Fatalf("expected no slot in a 20 minute window, got %s", slotStrings(got))
	}
}

func TestSlots_Restartable(t *testing.T) {
	weekly := []Window{{Day: time.Monday, Start: hm(9, 0), End: hm(11, 0)}}

	first, _ := Generate(monday, weekly, "")
	first[0] = hm(23, 0)
	second, _ := Generate(monday, weekly, "")
	if second[0] != hm(9, 0) {
		t.Fatalf("expected fresh result per call, got %s", second[0])
	}
}

func TestResolve_InformalRange(t *testing.T) {
	res := Resolve(time.Monday, nil, "10:00-11:30")
	if res.Source != SourceInformal {
		t.Fatalf("expected informal source, got %s", res.Source)
	}
	if got := slotStrings(Slots(res.Windows)); got != "10:00,10:30,11:00" {
		t.Fatalf("unexpected slots %s", got)
	}
}

func TestResolve_InformalPerDay(t *testing.T) {
	const desc = "Mon 09:00-10:00; Wed 10:00-14:00"

	res := Resolve(time.Monday, nil, desc)
	if res.Source != SourceInformal || slotStrings(Slots(res.Windows)) != "09:00,09:30" {
		t.Fatalf("unexpected monday resolution: %+v", res)
	}

	res = Resolve(time.Tuesday, nil, desc)
	if res.Source != SourceInformal {
		t.Fatalf("expected informal source for tuesday, got %s", res.Source)
	}
	if len(Slots(res.Windows)) != 0 {
		t.Fatalf("expected no tuesday slots, got %v", res.Windows)
	}
}

func TestResolve_MalformedInformalFallsBackObservably(t *testing.T) {
	res := Resolve(time.Monday, nil, "mornings only")
	if res.Source != SourceDefault {
		t.Fatalf("expected default source, got %s", res.Source)
	}
	if !errors.Is(res.InformalErr, ErrMalformedInformal) {
		t.Fatalf("expected malformed informal error, got %v", res.InformalErr)
	}
}

func TestResolve_WeeklyWinsOverInformal(t *testing.T) {
	weekly := []Window{{Day: time.Monday, Start: hm(13, 0), End: hm(14, 0)}}

	res := Resolve(time.Monday, weekly, "09:00-17:00")
	if res.Source != SourceWeekly {
		t.Fatalf("expected weekly source, got %s", res.Source)
	}
}

func TestParseInformal_Errors(t *testing.T) {
	cases := []string{
		"",
		"9-5",
		"Funday 09:00-10:00",
		"10:00-09:00",
		"09:00-10:00-11:00",
		"Mon 09:00",
	}
	for _, c := range cases {
		if _, err := ParseInformal(c, time.Monday); !errors.Is(err, ErrMalformedInformal) {
			t.Errorf("ParseInformal(%q): expected malformed error, got %v", c, err)
		}
	}
}

func TestSubtractAndContains(t *testing.T) {
	all := []TimeOfDay{hm(9, 0), hm(9, 30), hm(10, 0)}

	left := Subtract(all, []TimeOfDay{hm(9, 30), hm(12, 0)})
	if slotStrings(left) != "09:00,10:00" {
		t.Fatalf("unexpected subtract result %s", slotStrings(left))
	}
	if !Contains(all, hm(10, 0)) || Contains(all, hm(10, 30)) {
		t.Fatalf("contains returned wrong membership")
	}
}
