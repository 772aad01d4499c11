// Package dedup screens newly ingested activities against an athlete's
// history for exact and near-duplicate recordings.
package dedup

import (
	"context"
	"time"

	"example.com/training/internal/domain"
)

const (
	// windowTolerance widens the query window on both sides so that
	// recordings with slightly skewed clocks still match.
	windowTolerance = 5 * time.Minute
	// minOverlap is the true overlap a pair must share before it is
	// reported. Back-to-back sessions touch inside the tolerance but never
	// exceed this.
	minOverlap = 60 * time.Second
)

// Store is the slice of the activity store the detector needs. Both lookups
// exclude superseded activities.
type Store interface {
	FindByHash(ctx context.Context, athleteID, hash string) (*domain.Activity, error)
	FindOverlapping(ctx context.Context, athleteID string, windowStart, windowEnd time.Time) ([]domain.Activity, error)
}

// Candidate reports one conflicting existing activity. It is never
// persisted; it lives for the duration of one ingestion request.
type Candidate struct {
	ExistingID     string     `json:"existing_id"`
	ExistingName   *string    `json:"existing_name,omitempty"`
	ExistingStart  time.Time  `json:"existing_start"`
	ExistingEnd    *time.Time `json:"existing_end,omitempty"`
	NewStart       time.Time  `json:"new_start"`
	NewEnd         *time.Time `json:"new_end,omitempty"`
	OverlapSeconds float64    `json:"overlap_seconds"`
}

// Detector finds duplicate candidates for a new activity.
type Detector struct {
	store Store
}

// NewDetector constructs a Detector.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// FindDuplicates screens activity against the athlete's history. An exact
// content-hash match short-circuits: it is returned alone with the new
// activity's full moving duration as the overlap, and no time-window check
// runs. Otherwise every stored activity whose window intersects the
// tolerance-expanded window and truly overlaps by more than a minute is
// reported, in store query order.
func (d *Detector) FindDuplicates(ctx context.Context, activity *domain.Activity) ([]Candidate, error) {
	if activity.ContentHash != nil && *activity.ContentHash != "" {
		exact, err := d.store.FindByHash(ctx, activity.AthleteID, *activity.ContentHash)
		if err != nil {
			return nil, err
		}
		if exact != nil {
			return []Candidate{newCandidate(exact, activity, activity.TotalTimerTime)}, nil
		}
	}

	windowStart := activity.StartTime.Add(-windowTolerance)
	windowEnd := activity.EndOrStart().Add(windowTolerance)

	existing, err := d.store.FindOverlapping(ctx, activity.AthleteID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0)
	for i := range existing {
		overlap := overlapSeconds(activity, &existing[i])
		if overlap > minOverlap.Seconds() {
			candidates = append(candidates, newCandidate(&existing[i], activity, overlap))
		}
	}
	return candidates, nil
}

// overlapSeconds computes the true (untolerated) overlap of the two
// activities' recorded windows.
func overlapSeconds(a, b *domain.Activity) float64 {
	start := a.StartTime
	if b.StartTime.After(start) {
		start = b.StartTime
	}
	end := a.EndOrStart()
	if bEnd := b.EndOrStart(); bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Seconds()
}

func newCandidate(existing, incoming *domain.Activity, overlap float64) Candidate {
	return Candidate{
		ExistingID:     existing.ID,
		ExistingName:   existing.Name,
		ExistingStart:  existing.StartTime,
		ExistingEnd:    existing.EndTime,
		NewStart:       incoming.StartTime,
		NewEnd:         incoming.EndTime,
		OverlapSeconds: overlap,
	}
}
