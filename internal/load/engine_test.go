package load

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/training/internal/domain"
	"example.com/training/internal/profile"
)

type rangeStore struct {
	activities []domain.Activity
}

func (s *rangeStore) FindByDateRange(ctx context.Context, athleteID string, start, end time.Time) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range s.activities {
		if !a.StartTime.Before(start) && a.StartTime.Before(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func dayActivity(day time.Time, sport domain.Sport, scaledTSS, hours, distanceM float64) domain.Activity {
	tss := scaledTSS
	end := day.Add(time.Duration(hours * float64(time.Hour)))
	return domain.Activity{
		ID:             day.Format("2006-01-02") + "-" + string(sport),
		AthleteID:      "athlete-1",
		Sport:          sport,
		StartTime:      day.Add(8 * time.Hour),
		EndTime:        &end,
		TotalTimerTime: hours * 3600,
		Summary: domain.Summary{
			TSS:           &tss,
			ScaledTSS:     &scaledTSS,
			TotalDistance: &distanceM,
		},
	}
}

func TestRangeSeedsFromZero(t *testing.T) {
	day1 := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	store := &rangeStore{activities: []domain.Activity{
		dayActivity(day1, domain.SportRowing, 100, 1, 0),
	}}
	engine := NewEngine(store)

	series, err := engine.Range(context.Background(), "athlete-1", profile.Profile{}, day1, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, series, 2)

	require.Equal(t, day1, series[0].Date)
	require.Equal(t, float64(100), series[0].TSS)
	require.Equal(t, 2.4, series[0].CTL)
	require.Equal(t, 14.3, series[0].ATL)
	require.Equal(t, float64(0), series[0].TSB)

	// Form on day two reflects day one's fitness minus fatigue.
	require.Equal(t, -11.9, series[1].TSB)
	require.Equal(t, 2.3, series[1].CTL)
	require.Equal(t, 12.2, series[1].ATL)
}

func TestRangeSeedsFromSnapshot(t *testing.T) {
	start := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	engine := NewEngine(&rangeStore{})

	prof := profile.Profile{
		Snapshot: profile.LoadSnapshot{CTL: 50, ATL: 40, AsOf: start.AddDate(0, 0, -1)},
	}

	series, err := engine.Range(context.Background(), "athlete-1", prof, start, start)
	require.NoError(t, err)
	require.Len(t, series, 1)

	// A rest day decays the snapshot values.
	require.Equal(t, 48.8, series[0].CTL)
	require.Equal(t, 34.3, series[0].ATL)
	require.Equal(t, float64(10), series[0].TSB)
}

func TestRangeReplaysHistoryBehindSnapshot(t *testing.T) {
	start := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	store := &rangeStore{activities: []domain.Activity{
		dayActivity(start.AddDate(0, 0, -2), domain.SportRowing, 100, 1, 0),
		dayActivity(start.AddDate(0, 0, -1), domain.SportRowing, 100, 1, 0),
	}}
	engine := NewEngine(store)

	// The snapshot postdates the window start, so it cannot seed the
	// recurrence; the series rebuilds from the athlete's first activity
	// rather than restarting at zero.
	prof := profile.Profile{
		Snapshot: profile.LoadSnapshot{CTL: 50, ATL: 40, AsOf: start.AddDate(0, 0, 1)},
	}

	series, err := engine.Range(context.Background(), "athlete-1", prof, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, series, 2)

	require.Equal(t, start, series[0].Date)
	require.Equal(t, float64(0), series[0].TSS)
	require.Equal(t, 4.6, series[0].CTL)
	require.Equal(t, 22.7, series[0].ATL)
	require.Equal(t, -21.8, series[0].TSB)

	require.Equal(t, 4.5, series[1].CTL)
	require.Equal(t, 19.5, series[1].ATL)
	require.Equal(t, -18.1, series[1].TSB)
}

func TestRangeRejectsInvertedWindow(t *testing.T) {
	engine := NewEngine(&rangeStore{})
	start := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)

	_, err := engine.Range(context.Background(), "athlete-1", profile.Profile{}, start, start.AddDate(0, 0, -1))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestCurrentSnapshot(t *testing.T) {
	asOf := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	store := &rangeStore{activities: []domain.Activity{
		dayActivity(asOf, domain.SportRowing, 100, 1, 10000),
	}}
	engine := NewEngine(store)

	snap, err := engine.CurrentSnapshot(context.Background(), "athlete-1", profile.Profile{}, asOf)
	require.NoError(t, err)

	require.Equal(t, asOf, snap.AsOf)
	require.Equal(t, 2.4, snap.CTL)
	require.Equal(t, 14.3, snap.ATL)
	require.Equal(t, float64(0), snap.TSB)

	require.Equal(t, float64(100), snap.TSS7Day)
	require.Equal(t, float64(1), snap.Hours7Day)
	require.Equal(t, float64(10), snap.DistanceKm7Day)
	require.Equal(t, float64(100), snap.TSS28Day)

	// All CTL was gained on the final day of each window.
	require.Equal(t, 2.4, snap.RampRate7Day)
	require.Equal(t, 0.6, snap.RampRate28Day)
	require.Equal(t, 0.2, snap.RampRate90Day)
}

func TestWeeklySummaries(t *testing.T) {
	asOf := time.Date(2026, time.April, 12, 0, 0, 0, 0, time.UTC) // Sunday
	week15 := time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC)
	week14 := time.Date(2026, time.March, 30, 0, 0, 0, 0, time.UTC)

	store := &rangeStore{activities: []domain.Activity{
		dayActivity(week15.AddDate(0, 0, 1), domain.SportRowing, 80, 1, 12000),
		dayActivity(week15.AddDate(0, 0, 2), domain.SportCycling, 40, 1.5, 40000),
		dayActivity(week14.AddDate(0, 0, 1), domain.SportRunning, 60, 0.5, 8000),
	}}
	engine := NewEngine(store)

	out, err := engine.WeeklySummaries(context.Background(), "athlete-1", asOf, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)

	require.Equal(t, week15, out[0].WeekStart)
	require.Equal(t, "2026-W15", out[0].Week)
	require.Equal(t, float64(120), out[0].TotalTSS)
	require.Equal(t, 2, out[0].ActivityCount)
	require.Equal(t, 2.5, out[0].Hours)
	require.Equal(t, float64(52), out[0].DistanceKm)
	require.Equal(t, float64(80), out[0].TSSBySport["rowing"])
	require.Equal(t, float64(40), out[0].TSSBySport["cycling"])

	require.Equal(t, week14, out[1].WeekStart)
	require.Equal(t, float64(60), out[1].TotalTSS)
	require.Equal(t, float64(60), out[1].TSSBySport["running"])

	// Weeks with no activities still appear.
	require.Equal(t, week14.AddDate(0, 0, -7), out[2].WeekStart)
	require.Zero(t, out[2].ActivityCount)
	require.Equal(t, float64(0), out[2].TotalTSS)
}
