// Package events defines the payloads published to the activity event topic.
package events

import "time"

// ActivityIngested is emitted when a new activity is accepted into the
// store, whether uploaded or synced from a provider.
type ActivityIngested struct {
	ActivityID string    `json:"activity_id"`
	AthleteID  string    `json:"athlete_id"`
	Source     string    `json:"source"`
	Sport      string    `json:"sport"`
	StartTime  time.Time `json:"start_time"`
	DurationS  float64   `json:"duration_s"`
	TSS        *float64  `json:"tss,omitempty"`
	ScaledTSS  *float64  `json:"scaled_tss,omitempty"`
}

// ActivityReconciled is emitted when two activities are merged. The
// superseded sources stay readable but leave every listing and load query.
type ActivityReconciled struct {
	ActivityID    string    `json:"activity_id"`
	AthleteID     string    `json:"athlete_id"`
	SupersededIDs []string  `json:"superseded_ids"`
	Sport         string    `json:"sport"`
	StartTime     time.Time `json:"start_time"`
	DurationS     float64   `json:"duration_s"`
	ScaledTSS     *float64  `json:"scaled_tss,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TrainingLoadRecomputed is emitted whenever an athlete's fitness/fatigue
// snapshot is rolled forward. At most one event per athlete per snapshot day
// is kept pending; a later recompute for the same day replaces it.
type TrainingLoadRecomputed struct {
	AthleteID string    `json:"athlete_id"`
	CTL       float64   `json:"ctl"`
	ATL       float64   `json:"atl"`
	AsOf      time.Time `json:"as_of"`
}
