package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTimeFormat is returned when a tag value matches none of the
// accepted time grammars.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// timePattern accepts "H", "H:MM", "HH:MM", each with an optional
// am/pm suffix (a space before the suffix is allowed).
var timePattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(?:\s?(am|pm))?$`)

// ParseTime converts a human-entered time string from an instance tag
// into a TimeOfDay.
//
// Accepted forms (case-insensitive, surrounding whitespace ignored):
//
//	"9am", "5pm", "9:00am", "5:30 PM"  - 12-hour, hour 1-12
//	"09:00", "17:30"                   - 24-hour, hour 0-23
//
// A bare hour implies minute zero. "12am" is midnight, "12pm" is noon.
// A 24-hour value (hour > 12) carrying a meridiem suffix is rejected.
func ParseTime(raw string) (TimeOfDay, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
	}
	if minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	switch m[3] {
	case "am":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}
