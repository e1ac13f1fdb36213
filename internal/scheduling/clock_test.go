package scheduling

import (
	"errors"
	"testing"
)

func TestParseClockRoundTrips(t *testing.T) {
	for _, input := range []string{"00:00", "09:05", "12:30", "23:59"} {
		c, err := ParseClock(input)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", input, err)
		}
		if c.String() != input {
			t.Fatalf("expected %q, got %q", input, c.String())
		}
	}
}

func TestParseClockRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "9:00", "24:00", "12:60", "12h30", "12:3", "ab:cd"} {
		if _, err := ParseClock(input); !errors.Is(err, ErrBadTimeFormat) {
			t.Fatalf("ParseClock(%q): expected ErrBadTimeFormat, got %v", input, err)
		}
	}
}

func TestTo12HourConversions(t *testing.T) {
	cases := map[string]string{
		"00:15": "12:15 AM",
		"09:00": "9:00 AM",
		"12:00": "12:00 PM",
		"14:30": "2:30 PM",
		"23:59": "11:59 PM",
	}
	for in, want := range cases {
		got, err := To12Hour(in)
		if err != nil {
			t.Fatalf("To12Hour(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("To12Hour(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTo24HourInvertsTo12Hour(t *testing.T) {
	for _, in := range []string{"00:15", "09:00", "12:00", "14:30", "23:59"} {
		twelve, err := To12Hour(in)
		if err != nil {
			t.Fatalf("To12Hour(%q): %v", in, err)
		}
		back, err := To24Hour(twelve)
		if err != nil {
			t.Fatalf("To24Hour(%q): %v", twelve, err)
		}
		if back != in {
			t.Fatalf("round trip of %q gave %q", in, back)
		}
	}
}

func TestTo24HourRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "14:30", "13:00 PM", "0:30 AM", "9:30 XM"} {
		if _, err := To24Hour(input); !errors.Is(err, ErrBadTimeFormat) {
			t.Fatalf("To24Hour(%q): expected ErrBadTimeFormat, got %v", input, err)
		}
	}
}
