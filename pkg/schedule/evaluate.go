package schedule

// Window is the on/off pair parsed from an instance's schedule tags.
type Window struct {
	On  TimeOfDay
	Off TimeOfDay
}

// Overnight reports whether the window spans midnight, i.e. the on
// time is numerically later than the off time.
func (w Window) Overnight() bool {
	return w.Off.Before(w.On)
}

// Contains reports whether an instance with this window should be
// running at the given local time.
//
// Boundaries are half-open: the on time is inclusive and the off time
// exclusive, so exactly one state transition happens at each boundary
// minute. A window whose on and off times are equal never matches;
// such an instance stays stopped.
func (w Window) Contains(now TimeOfDay) bool {
	if w.On.Equal(w.Off) {
		return false
	}
	if w.Overnight() {
		return !now.Before(w.On) || now.Before(w.Off)
	}
	return !now.Before(w.On) && now.Before(w.Off)
}
