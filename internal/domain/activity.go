// Package domain defines the activity model shared by the reconciliation
// and training-load components.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when an activity cannot be located or is not
	// owned by the requesting athlete.
	ErrNotFound = errors.New("activity not found")
	// ErrValidation marks a malformed activity or sample.
	ErrValidation = errors.New("validation failed")
)

// Source identifies where an activity record originated.
type Source string

const (
	SourceUpload     Source = "upload"
	SourceGarmin     Source = "garmin"
	SourceConcept2   Source = "concept2"
	SourceReconciled Source = "reconciled"
)

// Sport classifies an activity.
type Sport string

const (
	SportRowing   Sport = "rowing"
	SportCycling  Sport = "cycling"
	SportRunning  Sport = "running"
	SportSwimming Sport = "swimming"
	SportStrength Sport = "strength"
	SportOther    Sport = "other"
)

// Sample is one instant's measurement within an activity. All measured
// fields are optional; a nil pointer means the device did not report that
// channel at this instant.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	HeartRate   *int      `json:"heart_rate,omitempty"`
	Power       *int      `json:"power,omitempty"`
	Cadence     *int      `json:"cadence,omitempty"`
	Speed       *float64  `json:"speed,omitempty"`
	Distance    *float64  `json:"distance,omitempty"`
	Altitude    *float64  `json:"altitude,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Lap summarises one lap of an activity.
type Lap struct {
	StartTime      time.Time `json:"start_time"`
	TotalTimerTime float64   `json:"total_timer_time"`
	TotalDistance  *float64  `json:"total_distance,omitempty"`
	AvgHeartRate   *int      `json:"avg_heart_rate,omitempty"`
	MaxHeartRate   *int      `json:"max_heart_rate,omitempty"`
	AvgPower       *int      `json:"avg_power,omitempty"`
	MaxPower       *int      `json:"max_power,omitempty"`
	AvgCadence     *int      `json:"avg_cadence,omitempty"`
	AvgSpeed       *float64  `json:"avg_speed,omitempty"`
}

// Summary holds the derived aggregates of an activity. A nil field means the
// underlying channel had no samples; it is never zero-filled.
type Summary struct {
	AvgHeartRate    *int     `json:"avg_heart_rate,omitempty"`
	MaxHeartRate    *int     `json:"max_heart_rate,omitempty"`
	AvgPower        *int     `json:"avg_power,omitempty"`
	MaxPower        *int     `json:"max_power,omitempty"`
	NormalizedPower *float64 `json:"normalized_power,omitempty"`
	AvgCadence      *int     `json:"avg_cadence,omitempty"`
	AvgSpeed        *float64 `json:"avg_speed,omitempty"`
	MaxSpeed        *float64 `json:"max_speed,omitempty"`
	TotalDistance   *float64 `json:"total_distance,omitempty"`
	TotalAscent     *float64 `json:"total_ascent,omitempty"`
	TotalDescent    *float64 `json:"total_descent,omitempty"`
	TSS             *float64 `json:"tss,omitempty"`
	ScaledTSS       *float64 `json:"scaled_tss,omitempty"`
	IntensityFactor *float64 `json:"intensity_factor,omitempty"`
}

// Activity is a bounded, dated training session. Samples are owned
// exclusively by their activity; callers copy them before handing them to
// another activity.
type Activity struct {
	ID        string `json:"id"`
	AthleteID string `json:"athlete_id"`
	Source    Source `json:"source"`

	// Identity for deduplication across sources.
	SourceID         *string `json:"source_id,omitempty"`
	ContentHash      *string `json:"content_hash,omitempty"`
	OriginalFilename *string `json:"original_filename,omitempty"`

	Sport       Sport   `json:"sport"`
	SubSport    *string `json:"sub_sport,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	TotalTimerTime   float64    `json:"total_timer_time"`
	TotalElapsedTime *float64   `json:"total_elapsed_time,omitempty"`

	Summary

	Samples []Sample `json:"samples,omitempty"`
	Laps    []Lap    `json:"laps,omitempty"`

	Reconciled     bool     `json:"is_reconciled"`
	ReconciledFrom []string `json:"reconciled_from,omitempty"`
	// SupersededBy points at the reconciled activity that replaced this one.
	// Superseded activities are retained for audit but excluded from
	// listing, overlap, and load queries.
	SupersededBy *string `json:"superseded_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EndOrStart returns the end time, defaulting to the start time when no end
// was recorded.
func (a *Activity) EndOrStart() time.Time {
	if a.EndTime != nil {
		return *a.EndTime
	}
	return a.StartTime
}

// DisplayName returns the activity name or a filename-based fallback.
func (a *Activity) DisplayName() string {
	if a.Name != nil && *a.Name != "" {
		return *a.Name
	}
	if a.OriginalFilename != nil && *a.OriginalFilename != "" {
		return *a.OriginalFilename
	}
	return a.ID
}

// Validate enforces the structural invariants on an activity. Decoder output
// is untrusted input, so every ingested activity passes through here before
// it is persisted.
func (a *Activity) Validate() error {
	if a.AthleteID == "" {
		return fmt.Errorf("%w: athlete_id is required", ErrValidation)
	}
	if a.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrValidation)
	}
	if a.EndTime != nil && a.EndTime.Before(a.StartTime) {
		return fmt.Errorf("%w: end_time precedes start_time", ErrValidation)
	}
	if a.TotalTimerTime < 0 {
		return fmt.Errorf("%w: total_timer_time is negative", ErrValidation)
	}
	if a.Sport == "" {
		return fmt.Errorf("%w: sport is required", ErrValidation)
	}

	var lastDistance float64
	var haveDistance bool
	for i := range a.Samples {
		s := &a.Samples[i]
		if s.Timestamp.IsZero() {
			return fmt.Errorf("%w: sample %d has no timestamp", ErrValidation, i)
		}
		if s.HeartRate != nil && *s.HeartRate < 0 {
			return fmt.Errorf("%w: sample %d has negative heart rate", ErrValidation, i)
		}
		if s.Power != nil && *s.Power < 0 {
			return fmt.Errorf("%w: sample %d has negative power", ErrValidation, i)
		}
		if s.Distance != nil {
			if haveDistance && *s.Distance < lastDistance {
				return fmt.Errorf("%w: sample %d has decreasing cumulative distance", ErrValidation, i)
			}
			lastDistance = *s.Distance
			haveDistance = true
		}
	}
	return nil
}
