package scheduling

import (
	"testing"
	"time"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
)

func window(day int, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{DayOfWeek: day, StartTime: start, EndTime: end}
}

// 2026-03-16 is a Monday.
var (
	monday  = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func TestSlotsForDateHourlyGrid(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "12:00")}

	slots, err := SlotsForDate(windows, monday, 60)
	if err != nil {
		t.Fatalf("SlotsForDate: %v", err)
	}
	want := []string{"09:00", "10:00", "11:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, slots)
		}
	}
}

func TestSlotsForDateEmptyOnNonMatchingWeekday(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "12:00")}

	slots, err := SlotsForDate(windows, tuesday, 60)
	if err != nil {
		t.Fatalf("SlotsForDate: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on Tuesday, got %v", slots)
	}
}

func TestSlotsForDateRespectsDurationBound(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "12:00")}

	slots, err := SlotsForDate(windows, monday, 90)
	if err != nil {
		t.Fatalf("SlotsForDate: %v", err)
	}
	// 11:00 + 90min would overrun the 12:00 end.
	if len(slots) != 2 || slots[0] != "09:00" || slots[1] != "10:00" {
		t.Fatalf("expected [09:00 10:00], got %v", slots)
	}
}

func TestSlotsForDateEverySlotFitsInsideItsWindow(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "08:30", "11:00"),
		window(1, "14:00", "18:00"),
	}
	for _, duration := range []int{30, 45, 60, 90} {
		slots, err := SlotsForDate(windows, monday, duration)
		if err != nil {
			t.Fatalf("SlotsForDate(duration=%d): %v", duration, err)
		}
		for _, slot := range slots {
			start, err := ParseClock(slot)
			if err != nil {
				t.Fatalf("generated slot %q is not parseable: %v", slot, err)
			}
			inWindow := false
			for _, w := range windows {
				ws, _ := ParseClock(w.StartTime)
				we, _ := ParseClock(w.EndTime)
				if start >= ws && start+Clock(duration) <= we {
					inWindow = true
				}
			}
			if !inWindow {
				t.Fatalf("slot %q (duration %d) escapes all windows", slot, duration)
			}
		}
	}
}

func TestSlotsForDatePropagatesBadWindowTimes(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "9am", "12:00")}
	if _, err := SlotsForDate(windows, monday, 60); err == nil {
		t.Fatal("expected error for malformed window time")
	}
}

func TestIsBookableDateMatchesEachWeekdayIndependently(t *testing.T) {
	for day := 0; day < 7; day++ {
		windows := []models.AvailabilityWindow{window(day, "09:00", "17:00")}
		for offset := 0; offset < 7; offset++ {
			date := monday.AddDate(0, 0, offset)
			want := int(date.Weekday()) == day
			if got := IsBookableDate(windows, date); got != want {
				t.Fatalf("day %d, date %s: expected %v, got %v", day, date.Weekday(), want, got)
			}
		}
	}
}

func TestIsBookableDateFalseWithoutWindows(t *testing.T) {
	if IsBookableDate(nil, monday) {
		t.Fatal("expected false with no windows")
	}
}

func TestWindowCoversBounds(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "12:00")}

	cases := []struct {
		start    time.Time
		duration int
		want     bool
	}{
		{monday.Add(9 * time.Hour), 60, true},
		{monday.Add(11 * time.Hour), 60, true},
		{monday.Add(11 * time.Hour), 90, false},
		{monday.Add(8 * time.Hour), 60, false},
		{tuesday.Add(9 * time.Hour), 60, false},
	}
	for _, tc := range cases {
		got, err := WindowCovers(windows, tc.start, tc.duration)
		if err != nil {
			t.Fatalf("WindowCovers(%s, %d): %v", tc.start, tc.duration, err)
		}
		if got != tc.want {
			t.Fatalf("WindowCovers(%s, %d): expected %v, got %v", tc.start, tc.duration, tc.want, got)
		}
	}
}
