package timezone

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownRegion is returned when a region has no timezone mapping.
var ErrUnknownRegion = errors.New("unknown region")

// regionZones maps AWS region codes to the IANA timezone of their
// primary location.
var regionZones = map[string]string{
	"us-east-1":      "America/New_York",
	"us-east-2":      "America/New_York",
	"us-west-1":      "America/Los_Angeles",
	"us-west-2":      "America/Los_Angeles",
	"us-gov-west-1":  "America/Los_Angeles",
	"us-gov-east-1":  "America/New_York",
	"ca-central-1":   "America/Toronto",
	"eu-west-1":      "Europe/Dublin",
	"eu-west-2":      "Europe/London",
	"eu-west-3":      "Europe/Paris",
	"eu-central-1":   "Europe/Berlin",
	"eu-north-1":     "Europe/Stockholm",
	"eu-south-1":     "Europe/Rome",
	"eu-south-2":     "Europe/Madrid",
	"ap-northeast-1": "Asia/Tokyo",
	"ap-northeast-2": "Asia/Seoul",
	"ap-northeast-3": "Asia/Tokyo",
	"ap-southeast-1": "Asia/Singapore",
	"ap-southeast-2": "Australia/Sydney",
	"ap-southeast-3": "Asia/Jakarta",
	"ap-southeast-4": "Australia/Melbourne",
	"ap-south-1":     "Asia/Kolkata",
	"ap-south-2":     "Asia/Hong_Kong",
	"sa-east-1":      "America/Sao_Paulo",
	"af-south-1":     "Africa/Johannesburg",
	"me-south-1":     "Asia/Bahrain",
	"me-central-1":   "Asia/Dubai",
	"cn-north-1":     "Asia/Shanghai",
	"cn-northwest-1": "Asia/Shanghai",
	"il-central-1":   "Asia/Jerusalem",
}

// ZoneName returns the IANA timezone name for an AWS region.
func ZoneName(region string) (string, error) {
	name, ok := regionZones[region]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	return name, nil
}

// IsKnownRegion checks if a region has a timezone mapping.
func IsKnownRegion(region string) bool {
	_, ok := regionZones[region]
	return ok
}

// Resolver maps regions to time.Locations, falling back to a
// configured zone for regions it does not know.
type Resolver struct {
	fallback *time.Location
}

// NewResolver creates a Resolver with the given fallback zone.
// An empty zone name means UTC.
func NewResolver(fallbackZone string) (*Resolver, error) {
	if fallbackZone == "" {
		return &Resolver{fallback: time.UTC}, nil
	}
	loc, err := time.LoadLocation(fallbackZone)
	if err != nil {
		return nil, fmt.Errorf("loading fallback timezone %q: %w", fallbackZone, err)
	}
	return &Resolver{fallback: loc}, nil
}

// Resolve returns the location for a region. The second return value
// reports whether the fallback zone was used because the region is
// unmapped or its zone data is unavailable.
func (r *Resolver) Resolve(region string) (*time.Location, bool) {
	name, err := ZoneName(region)
	if err != nil {
		return r.fallback, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return r.fallback, true
	}
	return loc, false
}
