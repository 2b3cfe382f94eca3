package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay represents a wall-clock hour/minute pair with no date or
// timezone attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// TimeOfDayFrom extracts the hour/minute pair from a full timestamp.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// Equal reports whether both values name the same minute of the day.
func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t.Hour == other.Hour && t.Minute == other.Minute
}

// String formats the value as zero-padded 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
