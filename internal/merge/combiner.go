// Package merge reconciles two overlapping activities into one canonical
// activity. All functions are pure: inputs are never mutated.
package merge

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"example.com/training/internal/domain"
)

// ErrBadPreference is returned when the preferred-source selector is not 1 or 2.
var ErrBadPreference = errors.New("prefer_data_from must be 1 or 2")

// Combine merges activity B into activity A after shifting B's samples by
// offset (positive delays B). Samples are bucketed by whole second; within a
// bucket the preferred source wins field by field, falling back to the other
// source's value where the preferred sample has none. Ownership checks
// belong to the caller; Combine only merges.
func Combine(a, b *domain.Activity, offset time.Duration, prefer int) (*domain.Activity, error) {
	if prefer != 1 && prefer != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrBadPreference, prefer)
	}

	shifted := shiftSamples(b.Samples, offset)

	var primary, secondary []domain.Sample
	if prefer == 1 {
		primary, secondary = a.Samples, shifted
	} else {
		primary, secondary = shifted, a.Samples
	}
	samples := mergeSamples(primary, secondary)

	start := a.StartTime
	if bStart := b.StartTime.Add(offset); bStart.Before(start) {
		start = bStart
	}
	end := a.EndOrStart()
	if bEnd := b.EndOrStart().Add(offset); bEnd.After(end) {
		end = bEnd
	}
	duration := end.Sub(start).Seconds()

	name := fmt.Sprintf("Combined: %s + %s", nameOrDefault(a, "Activity 1"), nameOrDefault(b, "Activity 2"))

	merged := &domain.Activity{
		ID:             uuid.NewString(),
		AthleteID:      a.AthleteID,
		Source:         domain.SourceReconciled,
		Sport:          a.Sport,
		SubSport:       copyString(a.SubSport),
		Name:           &name,
		StartTime:      start,
		EndTime:        &end,
		TotalTimerTime: duration,
		Samples:        samples,
		Laps:           concatLaps(a.Laps, b.Laps),
		Reconciled:     true,
		ReconciledFrom: []string{a.ID, b.ID},
		CreatedAt:      time.Now().UTC(),
	}
	elapsed := duration
	merged.TotalElapsedTime = &elapsed

	recomputeSummary(merged)
	return merged, nil
}

// shiftSamples returns a deep copy of samples with every timestamp moved by
// offset.
func shiftSamples(samples []domain.Sample, offset time.Duration) []domain.Sample {
	out := make([]domain.Sample, len(samples))
	for i, s := range samples {
		out[i] = copySample(s)
		out[i].Timestamp = s.Timestamp.Add(offset)
	}
	return out
}

// mergeSamples buckets both series by floor-of-second. The secondary series
// is laid down first (last write wins within it); the primary series then
// overlays each bucket field by field.
func mergeSamples(primary, secondary []domain.Sample) []domain.Sample {
	byTime := make(map[int64]domain.Sample, len(primary)+len(secondary))

	for _, s := range secondary {
		byTime[s.Timestamp.Unix()] = copySample(s)
	}
	for _, s := range primary {
		key := s.Timestamp.Unix()
		if existing, ok := byTime[key]; ok {
			byTime[key] = overlaySample(existing, s)
		} else {
			byTime[key] = copySample(s)
		}
	}

	out := make([]domain.Sample, 0, len(byTime))
	for _, s := range byTime {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// overlaySample copies every present field of src over dst. The field list
// is deliberately explicit: adding a measured channel to Sample means
// extending this function, not relying on reflection.
func overlaySample(dst, src domain.Sample) domain.Sample {
	out := dst
	out.Timestamp = src.Timestamp
	if src.HeartRate != nil {
		out.HeartRate = copyInt(src.HeartRate)
	}
	if src.Power != nil {
		out.Power = copyInt(src.Power)
	}
	if src.Cadence != nil {
		out.Cadence = copyInt(src.Cadence)
	}
	if src.Speed != nil {
		out.Speed = copyFloat(src.Speed)
	}
	if src.Distance != nil {
		out.Distance = copyFloat(src.Distance)
	}
	if src.Altitude != nil {
		out.Altitude = copyFloat(src.Altitude)
	}
	if src.Latitude != nil {
		out.Latitude = copyFloat(src.Latitude)
	}
	if src.Longitude != nil {
		out.Longitude = copyFloat(src.Longitude)
	}
	if src.Temperature != nil {
		out.Temperature = copyFloat(src.Temperature)
	}
	return out
}

// recomputeSummary rebuilds the derived aggregates from the merged samples.
// A field with no samples stays unset. Elevation needs at least two altitude
// samples.
func recomputeSummary(a *domain.Activity) {
	var (
		hrs, powers, cadences []int
		speeds, altitudes     []float64
		maxDistance           float64
		haveDistance          bool
	)
	for i := range a.Samples {
		s := &a.Samples[i]
		if s.HeartRate != nil {
			hrs = append(hrs, *s.HeartRate)
		}
		if s.Power != nil {
			powers = append(powers, *s.Power)
		}
		if s.Cadence != nil {
			cadences = append(cadences, *s.Cadence)
		}
		if s.Speed != nil {
			speeds = append(speeds, *s.Speed)
		}
		if s.Altitude != nil {
			altitudes = append(altitudes, *s.Altitude)
		}
		if s.Distance != nil && (!haveDistance || *s.Distance > maxDistance) {
			maxDistance = *s.Distance
			haveDistance = true
		}
	}

	if len(hrs) > 0 {
		avg := roundAvgInt(hrs)
		max := maxInt(hrs)
		a.AvgHeartRate = &avg
		a.MaxHeartRate = &max
	}
	if len(powers) > 0 {
		avg := roundAvgInt(powers)
		max := maxInt(powers)
		a.AvgPower = &avg
		a.MaxPower = &max
	}
	if len(cadences) > 0 {
		avg := roundAvgInt(cadences)
		a.AvgCadence = &avg
	}
	if len(speeds) > 0 {
		avg := avgFloat(speeds)
		max := maxFloat(speeds)
		a.AvgSpeed = &avg
		a.MaxSpeed = &max
	}
	if haveDistance {
		a.TotalDistance = &maxDistance
	}
	if len(altitudes) > 1 {
		var ascent, descent float64
		for i := 1; i < len(altitudes); i++ {
			diff := altitudes[i] - altitudes[i-1]
			if diff > 0 {
				ascent += diff
			} else {
				descent += -diff
			}
		}
		ascent = math.Round(ascent*10) / 10
		descent = math.Round(descent*10) / 10
		a.TotalAscent = &ascent
		a.TotalDescent = &descent
	}
}

func concatLaps(a, b []domain.Lap) []domain.Lap {
	out := make([]domain.Lap, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func nameOrDefault(a *domain.Activity, fallback string) string {
	if a.Name != nil && *a.Name != "" {
		return *a.Name
	}
	return fallback
}

func copySample(s domain.Sample) domain.Sample {
	return domain.Sample{
		Timestamp:   s.Timestamp,
		HeartRate:   copyInt(s.HeartRate),
		Power:       copyInt(s.Power),
		Cadence:     copyInt(s.Cadence),
		Speed:       copyFloat(s.Speed),
		Distance:    copyFloat(s.Distance),
		Altitude:    copyFloat(s.Altitude),
		Latitude:    copyFloat(s.Latitude),
		Longitude:   copyFloat(s.Longitude),
		Temperature: copyFloat(s.Temperature),
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func roundAvgInt(values []int) int {
	var sum int
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

func maxInt(values []int) int {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func avgFloat(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxFloat(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
