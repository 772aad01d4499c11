package load

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"example.com/training/internal/domain"
	"example.com/training/internal/profile"
)

const (
	ctlTimeConstant = 42
	atlTimeConstant = 7
)

// ErrInvalidRange is returned when a query window ends before it starts.
var ErrInvalidRange = errors.New("range end precedes range start")

// Store is the activity lookup the engine depends on. Superseded activities
// are excluded by the store so a merge never double-counts its sources.
type Store interface {
	FindByDateRange(ctx context.Context, athleteID string, start, end time.Time) ([]domain.Activity, error)
}

// Engine derives the daily fitness/fatigue/form series from stored
// activities.
type Engine struct {
	store Store
}

// NewEngine constructs an Engine.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// DailyLoad is one day of the model. Days without activities appear with a
// zero TSS; the exponential averages still decay through them.
type DailyLoad struct {
	Date      time.Time `json:"date"`
	TSS       float64   `json:"tss"`
	ScaledTSS float64   `json:"scaled_tss"`
	CTL       float64   `json:"ctl"`
	ATL       float64   `json:"atl"`
	TSB       float64   `json:"tsb"`
}

// Snapshot is the current state of the model plus short-horizon volume and
// ramp figures.
type Snapshot struct {
	AsOf time.Time `json:"as_of"`
	CTL  float64   `json:"ctl"`
	ATL  float64   `json:"atl"`
	TSB  float64   `json:"tsb"`

	TSS7Day        float64 `json:"tss_7d"`
	Hours7Day      float64 `json:"hours_7d"`
	DistanceKm7Day float64 `json:"distance_km_7d"`

	TSS28Day        float64 `json:"tss_28d"`
	Hours28Day      float64 `json:"hours_28d"`
	DistanceKm28Day float64 `json:"distance_km_28d"`

	RampRate7Day  float64 `json:"ramp_rate_7d"`
	RampRate28Day float64 `json:"ramp_rate_28d"`
	RampRate90Day float64 `json:"ramp_rate_90d"`
}

// WeeklySummary aggregates one ISO week, Monday through Sunday.
type WeeklySummary struct {
	WeekStart     time.Time          `json:"week_start"`
	Week          string             `json:"week"`
	TotalTSS      float64            `json:"total_tss"`
	TSSBySport    map[string]float64 `json:"tss_by_sport"`
	ActivityCount int                `json:"activity_count"`
	Hours         float64            `json:"hours"`
	DistanceKm    float64            `json:"distance_km"`
}

// Range computes the daily series for [start, end], both inclusive, at day
// granularity in UTC. A persisted snapshot that predates the range seeds the
// recurrence and rolls forward through the intervening days so the returned
// values continue the athlete's history. A snapshot taken on or after the
// range start cannot seed mid-window, so the series replays the athlete's
// full activity history from zero instead. An athlete with no history at
// all seeds from zero at the range start.
func (e *Engine) Range(ctx context.Context, athleteID string, prof profile.Profile, start, end time.Time) ([]DailyLoad, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	computeStart := start
	var ctl, atl float64
	seeded := false
	if !prof.Snapshot.AsOf.IsZero() {
		if asOf := dateOnly(prof.Snapshot.AsOf); asOf.Before(start) {
			ctl = prof.Snapshot.CTL
			atl = prof.Snapshot.ATL
			computeStart = asOf.AddDate(0, 0, 1)
			seeded = true
		}
	}

	queryStart := computeStart
	if !prof.Snapshot.AsOf.IsZero() && !seeded {
		queryStart = time.Time{}
	}

	activities, err := e.store.FindByDateRange(ctx, athleteID, queryStart, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if queryStart.IsZero() {
		for i := range activities {
			if day := dateOnly(activities[i].StartTime); day.Before(computeStart) {
				computeStart = day
			}
		}
	}
	raw, scaled := dailyTotals(activities)

	out := make([]DailyLoad, 0, int(end.Sub(start).Hours()/24)+1)
	for day := computeStart; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayScaled := scaled[day]
		tsb := ctl - atl
		ctl += (dayScaled - ctl) / ctlTimeConstant
		atl += (dayScaled - atl) / atlTimeConstant
		if day.Before(start) {
			continue
		}
		out = append(out, DailyLoad{
			Date:      day,
			TSS:       round1(raw[day]),
			ScaledTSS: round1(dayScaled),
			CTL:       round1(ctl),
			ATL:       round1(atl),
			TSB:       round1(tsb),
		})
	}
	return out, nil
}

// CurrentSnapshot evaluates the model through asOf and attaches volume sums
// and ramp rates. Ramp rate over N days is the CTL gained per week,
// (CTL_t - CTL_{t-N}) * 7 / N.
func (e *Engine) CurrentSnapshot(ctx context.Context, athleteID string, prof profile.Profile, asOf time.Time) (Snapshot, error) {
	asOf = dateOnly(asOf)
	series, err := e.Range(ctx, athleteID, prof, asOf.AddDate(0, 0, -90), asOf)
	if err != nil {
		return Snapshot{}, err
	}
	last := series[len(series)-1]

	snap := Snapshot{
		AsOf: asOf,
		CTL:  last.CTL,
		ATL:  last.ATL,
		TSB:  last.TSB,

		RampRate7Day:  rampRate(series, 7),
		RampRate28Day: rampRate(series, 28),
		RampRate90Day: rampRate(series, 90),
	}

	activities, err := e.store.FindByDateRange(ctx, athleteID, asOf.AddDate(0, 0, -27), asOf.AddDate(0, 0, 1))
	if err != nil {
		return Snapshot{}, err
	}
	sevenDayStart := asOf.AddDate(0, 0, -6)
	for i := range activities {
		a := &activities[i]
		tss := activityScaledTSS(a)
		snap.TSS28Day += tss
		snap.Hours28Day += a.TotalTimerTime / 3600
		if a.TotalDistance != nil {
			snap.DistanceKm28Day += *a.TotalDistance / 1000
		}
		if !dateOnly(a.StartTime).Before(sevenDayStart) {
			snap.TSS7Day += tss
			snap.Hours7Day += a.TotalTimerTime / 3600
			if a.TotalDistance != nil {
				snap.DistanceKm7Day += *a.TotalDistance / 1000
			}
		}
	}
	snap.TSS7Day = round1(snap.TSS7Day)
	snap.Hours7Day = round1(snap.Hours7Day)
	snap.DistanceKm7Day = round1(snap.DistanceKm7Day)
	snap.TSS28Day = round1(snap.TSS28Day)
	snap.Hours28Day = round1(snap.Hours28Day)
	snap.DistanceKm28Day = round1(snap.DistanceKm28Day)
	return snap, nil
}

// WeeklySummaries aggregates the most recent weeks ending at asOf, most
// recent first. Weeks follow ISO numbering and start on Monday.
func (e *Engine) WeeklySummaries(ctx context.Context, athleteID string, asOf time.Time, weeks int) ([]WeeklySummary, error) {
	if weeks <= 0 {
		weeks = 1
	}
	asOf = dateOnly(asOf)
	currentMonday := mondayOf(asOf)
	earliest := currentMonday.AddDate(0, 0, -7*(weeks-1))

	activities, err := e.store.FindByDateRange(ctx, athleteID, earliest, asOf.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	byWeek := make(map[time.Time]*WeeklySummary, weeks)
	for i := range activities {
		a := &activities[i]
		monday := mondayOf(dateOnly(a.StartTime))
		week, ok := byWeek[monday]
		if !ok {
			week = newWeeklySummary(monday)
			byWeek[monday] = week
		}
		tss := activityScaledTSS(a)
		week.TotalTSS += tss
		week.TSSBySport[string(a.Sport)] += tss
		week.ActivityCount++
		week.Hours += a.TotalTimerTime / 3600
		if a.TotalDistance != nil {
			week.DistanceKm += *a.TotalDistance / 1000
		}
	}

	out := make([]WeeklySummary, 0, weeks)
	for monday := currentMonday; !monday.Before(earliest); monday = monday.AddDate(0, 0, -7) {
		week, ok := byWeek[monday]
		if !ok {
			week = newWeeklySummary(monday)
		}
		week.TotalTSS = round1(week.TotalTSS)
		week.Hours = round1(week.Hours)
		week.DistanceKm = round1(week.DistanceKm)
		for sport, tss := range week.TSSBySport {
			week.TSSBySport[sport] = round1(tss)
		}
		out = append(out, *week)
	}
	return out, nil
}

func newWeeklySummary(monday time.Time) *WeeklySummary {
	year, week := monday.ISOWeek()
	return &WeeklySummary{
		WeekStart:  monday,
		Week:       fmt.Sprintf("%d-W%02d", year, week),
		TSSBySport: make(map[string]float64),
	}
}

// rampRate reads CTL at the ends of the window off the computed series. A
// series shorter than the window anchors at its first day.
func rampRate(series []DailyLoad, days int) float64 {
	if len(series) < 2 {
		return 0
	}
	lastIdx := len(series) - 1
	baseIdx := lastIdx - days
	if baseIdx < 0 {
		baseIdx = 0
	}
	gained := series[lastIdx].CTL - series[baseIdx].CTL
	return round1(gained * 7 / float64(days))
}

func dailyTotals(activities []domain.Activity) (raw, scaled map[time.Time]float64) {
	raw = make(map[time.Time]float64, len(activities))
	scaled = make(map[time.Time]float64, len(activities))
	for i := range activities {
		a := &activities[i]
		day := dateOnly(a.StartTime)
		if a.TSS != nil {
			raw[day] += *a.TSS
		}
		scaled[day] += activityScaledTSS(a)
	}
	return raw, scaled
}

// activityScaledTSS reads the scaled stress of an activity, falling back to
// the unscaled value for records ingested before scaling existed.
func activityScaledTSS(a *domain.Activity) float64 {
	if a.ScaledTSS != nil {
		return *a.ScaledTSS
	}
	if a.TSS != nil {
		return *a.TSS
	}
	return 0
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// mondayOf returns the Monday of t's ISO week.
func mondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
