// Package profile holds per-athlete configuration the core components take
// by value: thresholds, zone-method preferences, sport scaling factors, and
// the last persisted training-load snapshot.
package profile

import (
	"context"
	"errors"
	"time"

	"example.com/training/internal/zones"
)

// ErrNotFound is returned when no profile exists for an athlete.
var ErrNotFound = errors.New("athlete profile not found")

// ZoneConfig is the athlete's chosen calculation method per channel.
type ZoneConfig struct {
	HRMethod    string     `json:"hr_method"`
	HRKind      zones.Kind `json:"hr_activity"`
	PowerMethod string     `json:"power_method"`
	PowerKind   zones.Kind `json:"power_activity"`
}

// DefaultZoneConfig mirrors the defaults new athletes start with.
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		HRMethod:    "joe_friel",
		HRKind:      zones.KindRunning,
		PowerMethod: "andy_coggan",
		PowerKind:   zones.KindCycling,
	}
}

// LoadSnapshot is the last persisted CTL/ATL pair, the seed for the
// fitness/fatigue recurrence. A zero AsOf means the athlete has no history.
type LoadSnapshot struct {
	CTL  float64   `json:"ctl"`
	ATL  float64   `json:"atl"`
	AsOf time.Time `json:"as_of"`
}

// Profile is one athlete's configuration. It is read once per request and
// passed by value into the zone and load calculators.
type Profile struct {
	AthleteID    string           `json:"athlete_id"`
	PrimarySport string           `json:"primary_sport"`
	Thresholds   zones.Thresholds `json:"thresholds"`
	ZoneConfig   ZoneConfig       `json:"zone_config"`
	// Scaling maps sport name to TSS effectiveness toward the primary
	// sport's load; absent sports scale at 1.0.
	Scaling  map[string]float64 `json:"sport_scaling,omitempty"`
	Snapshot LoadSnapshot       `json:"load_snapshot"`
}

// ScalingFor returns the TSS scaling factor for a sport.
func (p Profile) ScalingFor(sport string) float64 {
	if f, ok := p.Scaling[sport]; ok && f > 0 {
		return f
	}
	return 1.0
}

// Store captures profile persistence.
type Store interface {
	Get(ctx context.Context, athleteID string) (*Profile, error)
	UpdateThresholds(ctx context.Context, athleteID string, t zones.Thresholds) error
	UpdateZoneConfig(ctx context.Context, athleteID string, cfg ZoneConfig) error
	SaveSnapshot(ctx context.Context, athleteID string, snap LoadSnapshot) error
}
