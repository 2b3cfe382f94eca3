package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeValidFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want TimeOfDay
	}{
		{"09:00", TimeOfDay{9, 0}},
		{"17:30", TimeOfDay{17, 30}},
		{"06:30", TimeOfDay{6, 30}},
		{"00:00", TimeOfDay{0, 0}},
		{"23:59", TimeOfDay{23, 59}},
		{"9:00am", TimeOfDay{9, 0}},
		{"5:30pm", TimeOfDay{17, 30}},
		{"9am", TimeOfDay{9, 0}},
		{"5pm", TimeOfDay{17, 0}},
		{"12am", TimeOfDay{0, 0}},
		{"12pm", TimeOfDay{12, 0}},
		{"12:30am", TimeOfDay{0, 30}},
		{"09:00 AM", TimeOfDay{9, 0}},
		{"05:30 PM", TimeOfDay{17, 30}},
		{"  8:15pm  ", TimeOfDay{20, 15}},
		{"7", TimeOfDay{7, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseTime(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeInvalidFormats(t *testing.T) {
	cases := []string{
		"",
		"invalid",
		"abc:def",
		"25:00",
		"24:00",
		"12:60",
		"13pm",
		"0am",
		"17:30pm", // 24-hour value with a meridiem suffix
		"9:5",     // single-digit minutes
		"9:00:00",
		"9 : 00",
	}

	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseTime(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTimeFormat)
		})
	}
}

func TestParseTimeRoundTrip(t *testing.T) {
	// Parsed 12-hour values re-render as their 24-hour equivalents.
	cases := map[string]string{
		"9am":    "09:00",
		"12am":   "00:00",
		"12pm":   "12:00",
		"5:30pm": "17:30",
		"17:30":  "17:30",
	}

	for raw, want := range cases {
		got, err := ParseTime(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got.String())
	}
}
