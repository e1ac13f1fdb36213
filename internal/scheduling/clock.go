package scheduling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadTimeFormat = errors.New("bad time format")

// Clock is a wall-clock time of day expressed as minutes since midnight.
type Clock int

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	return Clock(hour*60 + minute), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// To12Hour converts a 24-hour "HH:MM" string to its "H:MM AM/PM" form.
func To12Hour(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	hour, minute := int(c)/60, int(c)%60
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix), nil
}

// To24Hour converts a "H:MM AM/PM" string back to 24-hour "HH:MM".
func To24Hour(s string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	suffix := strings.ToUpper(fields[1])
	if suffix != "AM" && suffix != "PM" {
		return "", fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	parts := strings.Split(fields[0], ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 1 || hour > 12 {
		return "", fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	if hour == 12 {
		hour = 0
	}
	if suffix == "PM" {
		hour += 12
	}
	return Clock(hour*60 + minute).String(), nil
}
