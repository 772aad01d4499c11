package merge

import (
	"time"

	"example.com/training/internal/domain"
)

// Series is one activity's channels re-based to elapsed seconds since the
// earlier of the two starts.
type Series struct {
	Name      string     `json:"name"`
	TimeS     []float64  `json:"time_s"`
	HeartRate []*int     `json:"heart_rate"`
	Power     []*int     `json:"power"`
	Speed     []*float64 `json:"speed"`
}

// Overlay carries the two parallel series used for visual alignment before a
// merge is committed.
type Overlay struct {
	ActivityA Series `json:"file_1"`
	ActivityB Series `json:"file_2"`
}

// OverlayData extracts the alignment series for both activities. The offset
// applies to B only; nothing is mutated or stored.
func OverlayData(a, b *domain.Activity, offset time.Duration) Overlay {
	base := a.StartTime
	if b.StartTime.Before(base) {
		base = b.StartTime
	}
	return Overlay{
		ActivityA: extractSeries(a, base, 0),
		ActivityB: extractSeries(b, base, offset),
	}
}

func extractSeries(a *domain.Activity, base time.Time, offset time.Duration) Series {
	s := Series{
		Name:      a.DisplayName(),
		TimeS:     make([]float64, 0, len(a.Samples)),
		HeartRate: make([]*int, 0, len(a.Samples)),
		Power:     make([]*int, 0, len(a.Samples)),
		Speed:     make([]*float64, 0, len(a.Samples)),
	}
	for i := range a.Samples {
		sample := &a.Samples[i]
		ts := sample.Timestamp.Add(offset)
		s.TimeS = append(s.TimeS, ts.Sub(base).Seconds())
		s.HeartRate = append(s.HeartRate, copyInt(sample.HeartRate))
		s.Power = append(s.Power, copyInt(sample.Power))
		s.Speed = append(s.Speed, copyFloat(sample.Speed))
	}
	return s
}
