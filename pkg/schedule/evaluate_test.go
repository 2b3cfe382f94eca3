package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowNormal(t *testing.T) {
	w := Window{On: TimeOfDay{9, 0}, Off: TimeOfDay{17, 0}}
	assert.False(t, w.Overnight())

	cases := []struct {
		now  TimeOfDay
		want bool
	}{
		{TimeOfDay{8, 59}, false},
		{TimeOfDay{9, 0}, true}, // on boundary is inclusive
		{TimeOfDay{12, 0}, true},
		{TimeOfDay{16, 59}, true},
		{TimeOfDay{17, 0}, false}, // off boundary is exclusive
		{TimeOfDay{23, 30}, false},
		{TimeOfDay{0, 0}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, w.Contains(tc.now), "now=%s", tc.now)
	}
}

func TestWindowOvernight(t *testing.T) {
	w := Window{On: TimeOfDay{22, 0}, Off: TimeOfDay{6, 0}}
	assert.True(t, w.Overnight())

	cases := []struct {
		now  TimeOfDay
		want bool
	}{
		{TimeOfDay{21, 59}, false},
		{TimeOfDay{22, 0}, true},
		{TimeOfDay{23, 0}, true},
		{TimeOfDay{0, 0}, true},
		{TimeOfDay{5, 59}, true},
		{TimeOfDay{6, 0}, false},
		{TimeOfDay{12, 0}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, w.Contains(tc.now), "now=%s", tc.now)
	}
}

func TestWindowDegenerate(t *testing.T) {
	// Equal on/off never matches: the instance stays stopped.
	w := Window{On: TimeOfDay{9, 0}, Off: TimeOfDay{9, 0}}
	for _, now := range []TimeOfDay{{0, 0}, {8, 59}, {9, 0}, {9, 1}, {23, 59}} {
		assert.False(t, w.Contains(now), "now=%s", now)
	}
}

func TestWindowContainsIsPure(t *testing.T) {
	w := Window{On: TimeOfDay{9, 0}, Off: TimeOfDay{17, 0}}
	now := TimeOfDay{10, 30}
	first := w.Contains(now)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, w.Contains(now))
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	assert.True(t, TimeOfDay{9, 0}.Before(TimeOfDay{9, 1}))
	assert.True(t, TimeOfDay{8, 59}.Before(TimeOfDay{9, 0}))
	assert.False(t, TimeOfDay{9, 0}.Before(TimeOfDay{9, 0}))
	assert.True(t, TimeOfDay{9, 0}.Equal(TimeOfDay{9, 0}))
	assert.False(t, TimeOfDay{9, 0}.Equal(TimeOfDay{9, 1}))
}
