package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/training/internal/domain"
)

type stubStore struct {
	byHash      *domain.Activity
	overlapping []domain.Activity

	hashCalls    int
	overlapCalls int
	windowStart  time.Time
	windowEnd    time.Time
}

func (s *stubStore) FindByHash(ctx context.Context, athleteID, hash string) (*domain.Activity, error) {
	s.hashCalls++
	return s.byHash, nil
}

func (s *stubStore) FindOverlapping(ctx context.Context, athleteID string, windowStart, windowEnd time.Time) ([]domain.Activity, error) {
	s.overlapCalls++
	s.windowStart = windowStart
	s.windowEnd = windowEnd
	return s.overlapping, nil
}

func storedActivity(id string, start time.Time, dur time.Duration) domain.Activity {
	end := start.Add(dur)
	return domain.Activity{
		ID:             id,
		AthleteID:      "athlete-1",
		Sport:          domain.SportRowing,
		StartTime:      start,
		EndTime:        &end,
		TotalTimerTime: dur.Seconds(),
	}
}

func incomingActivity(start time.Time, dur time.Duration) *domain.Activity {
	a := storedActivity("incoming", start, dur)
	return &a
}

func TestFindDuplicatesHashShortCircuit(t *testing.T) {
	start := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	existing := storedActivity("existing", start, time.Hour)
	store := &stubStore{byHash: &existing}
	detector := NewDetector(store)

	incoming := incomingActivity(start, time.Hour)
	hash := "abc123"
	incoming.ContentHash = &hash

	candidates, err := detector.FindDuplicates(context.Background(), incoming)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "existing", candidates[0].ExistingID)
	require.Equal(t, float64(3600), candidates[0].OverlapSeconds)
	require.Zero(t, store.overlapCalls)
}

func TestFindDuplicatesReportsTimeOverlap(t *testing.T) {
	start := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	existing := storedActivity("existing", start, time.Hour)
	store := &stubStore{overlapping: []domain.Activity{existing}}
	detector := NewDetector(store)

	// 10:55 to 11:30 against 10:00 to 11:00 shares 300s.
	incoming := incomingActivity(start.Add(55*time.Minute), 35*time.Minute)

	candidates, err := detector.FindDuplicates(context.Background(), incoming)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, float64(300), candidates[0].OverlapSeconds)
	require.Equal(t, 1, store.overlapCalls)
	require.Zero(t, store.hashCalls)

	require.Equal(t, incoming.StartTime.Add(-5*time.Minute), store.windowStart)
	require.Equal(t, incoming.EndOrStart().Add(5*time.Minute), store.windowEnd)
}

func TestFindDuplicatesIgnoresBackToBackSessions(t *testing.T) {
	start := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	existing := storedActivity("existing", start, time.Hour)
	store := &stubStore{overlapping: []domain.Activity{existing}}
	detector := NewDetector(store)

	// Second session starts the instant the first ends: zero true overlap.
	incoming := incomingActivity(start.Add(time.Hour), 30*time.Minute)

	candidates, err := detector.FindDuplicates(context.Background(), incoming)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestFindDuplicatesOverlapMustExceedMinimum(t *testing.T) {
	start := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	existing := storedActivity("existing", start, time.Hour)
	store := &stubStore{overlapping: []domain.Activity{existing}}
	detector := NewDetector(store)

	// Exactly 60s of overlap is not enough.
	incoming := incomingActivity(start.Add(59*time.Minute), 30*time.Minute)

	candidates, err := detector.FindDuplicates(context.Background(), incoming)
	require.NoError(t, err)
	require.Empty(t, candidates)

	// One second more crosses the threshold.
	incoming = incomingActivity(start.Add(59*time.Minute-time.Second), 30*time.Minute)
	candidates, err = detector.FindDuplicates(context.Background(), incoming)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, float64(61), candidates[0].OverlapSeconds)
}
