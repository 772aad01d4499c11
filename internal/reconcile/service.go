// Package reconcile orchestrates activity ingestion and merging on top of
// the detector, combiner, and load calculator.
package reconcile

import (
	"context"
	"errors"
	"time"

	"example.com/training/internal/dedup"
	"example.com/training/internal/domain"
	"example.com/training/internal/load"
	"example.com/training/internal/merge"
	"example.com/training/internal/profile"
)

// ErrDuplicate is returned by Ingest when duplicate candidates exist and the
// caller did not force the save. Nothing is persisted in that case.
var ErrDuplicate = errors.New("duplicate activity candidates found")

// Service wires the reconciliation workflows together.
type Service struct {
	activities domain.ActivityStore
	profiles   profile.Store
	detector   *dedup.Detector
}

// NewService constructs a Service.
func NewService(activities domain.ActivityStore, profiles profile.Store) *Service {
	return &Service{
		activities: activities,
		profiles:   profiles,
		detector:   dedup.NewDetector(activities),
	}
}

// Ingest validates, screens, scores, and persists a decoded activity. When
// duplicates are found and force is false the candidates are returned with
// ErrDuplicate and the activity is not saved; callers re-submit with force
// to override.
func (s *Service) Ingest(ctx context.Context, activity *domain.Activity, force bool) ([]dedup.Candidate, error) {
	if err := activity.Validate(); err != nil {
		return nil, err
	}

	if !force {
		candidates, err := s.detector.FindDuplicates(ctx, activity)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			return candidates, ErrDuplicate
		}
	}

	prof, err := s.profileOrDefault(ctx, activity.AthleteID)
	if err != nil {
		return nil, err
	}
	load.ComputeActivityLoad(activity, prof)

	if err := s.activities.Save(ctx, activity); err != nil {
		return nil, err
	}
	return nil, nil
}

// Combine merges two of the athlete's activities into a reconciled one. The
// offset shifts the second activity; prefer selects which source wins
// conflicting samples. Both sources are marked superseded in the same
// transaction that inserts the merged activity.
func (s *Service) Combine(ctx context.Context, athleteID, idA, idB string, offset time.Duration, prefer int) (*domain.Activity, error) {
	a, b, err := s.pair(ctx, athleteID, idA, idB)
	if err != nil {
		return nil, err
	}

	merged, err := merge.Combine(a, b, offset, prefer)
	if err != nil {
		return nil, err
	}

	prof, err := s.profileOrDefault(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	load.ComputeActivityLoad(merged, prof)

	if err := s.activities.SaveReconciled(ctx, merged, a.ID, b.ID); err != nil {
		return nil, err
	}
	return merged, nil
}

// Overlay returns the alignment series for two activities without touching
// either.
func (s *Service) Overlay(ctx context.Context, athleteID, idA, idB string, offset time.Duration) (merge.Overlay, error) {
	a, b, err := s.pair(ctx, athleteID, idA, idB)
	if err != nil {
		return merge.Overlay{}, err
	}
	return merge.OverlayData(a, b, offset), nil
}

// Get fetches one activity, including superseded ones.
func (s *Service) Get(ctx context.Context, athleteID, activityID string) (*domain.Activity, error) {
	return s.activities.Get(ctx, athleteID, activityID)
}

// List pages through the athlete's live activities.
func (s *Service) List(ctx context.Context, athleteID string, filter domain.ListFilter, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	return s.activities.List(ctx, athleteID, filter, cursor, limit)
}

// Delete removes one activity.
func (s *Service) Delete(ctx context.Context, athleteID, activityID string) error {
	return s.activities.Delete(ctx, athleteID, activityID)
}

func (s *Service) pair(ctx context.Context, athleteID, idA, idB string) (*domain.Activity, *domain.Activity, error) {
	a, err := s.activities.Get(ctx, athleteID, idA)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.activities.Get(ctx, athleteID, idB)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (s *Service) profileOrDefault(ctx context.Context, athleteID string) (profile.Profile, error) {
	prof, err := s.profiles.Get(ctx, athleteID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Profile{AthleteID: athleteID, ZoneConfig: profile.DefaultZoneConfig()}, nil
		}
		return profile.Profile{}, err
	}
	return *prof, nil
}
