package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"example.com/training/internal/load"
	"example.com/training/internal/profile"
)

// LoadHandler rolls the athlete's fitness/fatigue snapshot forward whenever
// an activity lands or a merge supersedes its sources.
type LoadHandler struct {
	engine   *load.Engine
	profiles profile.Store
}

// NewLoadHandler constructs a LoadHandler.
func NewLoadHandler(engine *load.Engine, profiles profile.Store) *LoadHandler {
	return &LoadHandler{engine: engine, profiles: profiles}
}

type activityEvent struct {
	AthleteID string    `json:"athlete_id"`
	StartTime time.Time `json:"start_time"`
}

// Handle recomputes the athlete's CTL/ATL through the event's day and
// persists the result as the new snapshot seed. Unknown event types are
// skipped so the topic can grow without redeploying the consumer.
func (h *LoadHandler) Handle(ctx context.Context, msg Message) error {
	switch msg.EventType {
	case "activity.ingested", "activity.reconciled":
	default:
		return nil
	}

	var event activityEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", msg.EventType, err)
	}
	if event.AthleteID == "" {
		return fmt.Errorf("%s event without athlete_id", msg.EventType)
	}

	prof, err := h.profileOrDefault(ctx, event.AthleteID)
	if err != nil {
		return err
	}

	// A forward event leaves the persisted snapshot valid, so the
	// recurrence rolls ahead from the day after it. An activity landing on
	// or before the snapshot day invalidates it, and the replay starts at
	// the activity instead.
	start := event.StartTime
	if !prof.Snapshot.AsOf.IsZero() {
		nextDay := dayStart(prof.Snapshot.AsOf).AddDate(0, 0, 1)
		if !event.StartTime.Before(nextDay) {
			start = nextDay
		}
	}

	asOf := time.Now().UTC()
	if start.After(asOf) {
		start = asOf
	}
	series, err := h.engine.Range(ctx, event.AthleteID, prof, start, asOf)
	if err != nil {
		return err
	}
	last := series[len(series)-1]

	return h.profiles.SaveSnapshot(ctx, event.AthleteID, profile.LoadSnapshot{
		CTL:  last.CTL,
		ATL:  last.ATL,
		AsOf: last.Date,
	})
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (h *LoadHandler) profileOrDefault(ctx context.Context, athleteID string) (profile.Profile, error) {
	prof, err := h.profiles.Get(ctx, athleteID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Profile{AthleteID: athleteID, ZoneConfig: profile.DefaultZoneConfig()}, nil
		}
		return profile.Profile{}, err
	}
	return *prof, nil
}
