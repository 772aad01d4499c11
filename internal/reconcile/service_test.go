package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/training/internal/domain"
	"example.com/training/internal/profile"
	"example.com/training/internal/zones"
)

type stubActivities struct {
	stored      map[string]*domain.Activity
	overlapping []domain.Activity

	saveCalls int
	saved     *domain.Activity
}

func newStubActivities() *stubActivities {
	return &stubActivities{stored: make(map[string]*domain.Activity)}
}

func (s *stubActivities) Save(_ context.Context, activity *domain.Activity) error {
	s.saveCalls++
	s.saved = activity
	s.stored[activity.ID] = activity
	return nil
}

func (s *stubActivities) Get(_ context.Context, athleteID, activityID string) (*domain.Activity, error) {
	a, ok := s.stored[activityID]
	if !ok || a.AthleteID != athleteID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (s *stubActivities) Delete(_ context.Context, _, activityID string) error {
	delete(s.stored, activityID)
	return nil
}

func (s *stubActivities) FindByHash(_ context.Context, _, _ string) (*domain.Activity, error) {
	return nil, nil
}

func (s *stubActivities) FindOverlapping(_ context.Context, _ string, _, _ time.Time) ([]domain.Activity, error) {
	return s.overlapping, nil
}

func (s *stubActivities) FindByDateRange(_ context.Context, _ string, _, _ time.Time) ([]domain.Activity, error) {
	return nil, nil
}

func (s *stubActivities) List(_ context.Context, _ string, _ domain.ListFilter, _ *domain.Cursor, _ int) ([]domain.Activity, *domain.Cursor, error) {
	return nil, nil, nil
}

func (s *stubActivities) SaveReconciled(_ context.Context, merged *domain.Activity, _, _ string) error {
	s.stored[merged.ID] = merged
	return nil
}

type stubProfiles struct {
	profile *profile.Profile
}

func (s *stubProfiles) Get(_ context.Context, _ string) (*profile.Profile, error) {
	if s.profile == nil {
		return nil, profile.ErrNotFound
	}
	return s.profile, nil
}

func (s *stubProfiles) UpdateThresholds(_ context.Context, _ string, _ zones.Thresholds) error {
	return nil
}

func (s *stubProfiles) UpdateZoneConfig(_ context.Context, _ string, _ profile.ZoneConfig) error {
	return nil
}

func (s *stubProfiles) SaveSnapshot(_ context.Context, _ string, _ profile.LoadSnapshot) error {
	return nil
}

func newActivity(start time.Time, dur time.Duration) *domain.Activity {
	end := start.Add(dur)
	return &domain.Activity{
		ID:             "incoming",
		AthleteID:      "athlete-1",
		Source:         domain.SourceUpload,
		Sport:          domain.SportRowing,
		StartTime:      start,
		EndTime:        &end,
		TotalTimerTime: dur.Seconds(),
	}
}

func TestIngestRejectsInvalidActivity(t *testing.T) {
	service := NewService(newStubActivities(), &stubProfiles{})

	activity := newActivity(time.Now().UTC(), time.Hour)
	activity.AthleteID = ""

	_, err := service.Ingest(context.Background(), activity, false)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestIngestReturnsCandidatesWithoutPersisting(t *testing.T) {
	start := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	existingEnd := start.Add(time.Hour)
	store := newStubActivities()
	store.overlapping = []domain.Activity{{
		ID:        "existing",
		AthleteID: "athlete-1",
		Sport:     domain.SportRowing,
		StartTime: start,
		EndTime:   &existingEnd,
	}}
	service := NewService(store, &stubProfiles{})

	candidates, err := service.Ingest(context.Background(), newActivity(start, time.Hour), false)
	require.ErrorIs(t, err, ErrDuplicate)
	require.Len(t, candidates, 1)
	require.Equal(t, "existing", candidates[0].ExistingID)
	require.Zero(t, store.saveCalls)
}

func TestIngestForceSkipsDetection(t *testing.T) {
	start := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	existingEnd := start.Add(time.Hour)
	store := newStubActivities()
	store.overlapping = []domain.Activity{{
		ID:        "existing",
		AthleteID: "athlete-1",
		Sport:     domain.SportRowing,
		StartTime: start,
		EndTime:   &existingEnd,
	}}
	service := NewService(store, &stubProfiles{})

	candidates, err := service.Ingest(context.Background(), newActivity(start, time.Hour), true)
	require.NoError(t, err)
	require.Empty(t, candidates)
	require.Equal(t, 1, store.saveCalls)
}

func TestIngestScoresWithProfile(t *testing.T) {
	start := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	store := newStubActivities()
	profiles := &stubProfiles{profile: &profile.Profile{
		AthleteID:  "athlete-1",
		Thresholds: zones.Thresholds{LTHR: 160},
		ZoneConfig: profile.DefaultZoneConfig(),
		Scaling:    map[string]float64{"rowing": 0.9},
	}}
	service := NewService(store, profiles)

	activity := newActivity(start, time.Hour)
	avgHR := 160
	activity.AvgHeartRate = &avgHR

	_, err := service.Ingest(context.Background(), activity, false)
	require.NoError(t, err)
	require.NotNil(t, store.saved.TSS)
	require.Equal(t, float64(100), *store.saved.TSS)
	require.Equal(t, float64(90), *store.saved.ScaledTSS)
}

func TestCombinePersistsMergedActivity(t *testing.T) {
	start := time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)
	store := newStubActivities()

	a := newActivity(start, 30*time.Minute)
	a.ID = "act-a"
	hr := 140
	a.Samples = []domain.Sample{{Timestamp: start, HeartRate: &hr}}
	b := newActivity(start, 30*time.Minute)
	b.ID = "act-b"
	power := 200
	b.Samples = []domain.Sample{{Timestamp: start, Power: &power}}
	store.stored["act-a"] = a
	store.stored["act-b"] = b

	service := NewService(store, &stubProfiles{})

	merged, err := service.Combine(context.Background(), "athlete-1", "act-a", "act-b", 0, 1)
	require.NoError(t, err)
	require.True(t, merged.Reconciled)
	require.Len(t, merged.Samples, 1)
	require.NotNil(t, merged.Samples[0].HeartRate)
	require.NotNil(t, merged.Samples[0].Power)
	require.Contains(t, store.stored, merged.ID)
}

func TestCombineMissingActivity(t *testing.T) {
	service := NewService(newStubActivities(), &stubProfiles{})

	_, err := service.Combine(context.Background(), "athlete-1", "act-a", "act-b", 0, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
