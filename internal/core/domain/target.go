package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// QueryMode selects which route attribute a target refers to.
type QueryMode string

// Available query modes.
const (
	// QueryModeDistance compares route length in meters.
	QueryModeDistance QueryMode = "distance"

	// QueryModeDuration compares route duration in minutes.
	QueryModeDuration QueryMode = "duration"
)

// IsValid returns true if the mode is recognised.
func (m QueryMode) IsValid() bool {
	switch m {
	case QueryModeDistance, QueryModeDuration:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m QueryMode) String() string {
	return string(m)
}

// Unit returns the unit suffix a user types for this mode.
func (m QueryMode) Unit() string {
	if m == QueryModeDuration {
		return "min"
	}
	return "km"
}

// Target is a requested route distance or duration.
type Target struct {
	// Mode selects distance or duration.
	Mode QueryMode

	// Value is in kilometres for distance targets and minutes for duration targets.
	Value float64
}

// ParseTarget parses user input such as "2km", "2,5 km" or "30min".
func ParseTarget(input string) (Target, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, ",", ".")

	var mode QueryMode
	switch {
	case strings.HasSuffix(s, "km"):
		mode = QueryModeDistance
		s = strings.TrimSuffix(s, "km")
	case strings.HasSuffix(s, "min"):
		mode = QueryModeDuration
		s = strings.TrimSuffix(s, "min")
	default:
		return Target{}, fmt.Errorf("%w: %q (use e.g. 2km or 30min)", ErrInvalidTarget, input)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q is not a number", ErrInvalidTarget, input)
	}
	if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return Target{}, fmt.Errorf("%w: %q must be positive", ErrInvalidTarget, input)
	}

	return Target{Mode: mode, Value: value}, nil
}

// Normalised returns the target in store units: meters for distance, minutes for duration.
func (t Target) Normalised() int {
	if t.Mode == QueryModeDuration {
		return int(math.Round(t.Value))
	}
	return int(math.Round(t.Value * 1000))
}

// String renders the target the way a user would type it.
func (t Target) String() string {
	return strconv.FormatFloat(t.Value, 'f', -1, 64) + t.Mode.Unit()
}

// windowEpsilon absorbs float error such as 1000*0.7 = 699.9999999999999.
const windowEpsilon = 1e-9

// ToleranceWindow returns the inclusive [lo, hi] band of target*(1±tolerancePercent/100),
// truncated to whole units.
func ToleranceWindow(target int, tolerancePercent float64) (lo, hi int) {
	frac := tolerancePercent / 100.0
	lo = int(math.Floor(float64(target)*(1.0-frac) + windowEpsilon))
	hi = int(math.Floor(float64(target)*(1.0+frac) + windowEpsilon))
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

// RouteQuery describes a tolerance-band lookup against the route store.
type RouteQuery struct {
	// Mode selects length or duration comparison.
	Mode QueryMode

	// Target is the normalised target (meters or minutes).
	Target int

	// TolerancePercent is the half-width of the band in percent of Target.
	TolerancePercent float64

	// Limit caps the number of routes returned. Zero means no cap.
	Limit int
}

// Window returns the inclusive value band for the query.
func (q RouteQuery) Window() (lo, hi int) {
	return ToleranceWindow(q.Target, q.TolerancePercent)
}

// Delta returns the absolute distance between a route's value and the target.
func (q RouteQuery) Delta(r Route) int {
	d := r.Value(q.Mode) - q.Target
	if d < 0 {
		return -d
	}
	return d
}
