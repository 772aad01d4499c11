// Package decode turns raw FIT file bytes into the internal activity model.
package decode

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tormoder/fit"

	"example.com/training/internal/domain"
)

var (
	// ErrDecode marks an unparseable or non-activity FIT file.
	ErrDecode = errors.New("fit decode failed")
	// ErrNoSession marks an activity file without a session message.
	ErrNoSession = errors.New("fit file has no session")
)

// Activity decodes data into a domain activity for the given athlete. The
// content hash is taken over the raw bytes so byte-identical re-uploads are
// recognized regardless of filename. Session summary fields are preferred;
// where the device omitted them they are rebuilt from the record series.
func Activity(data []byte, athleteID, filename string) (*domain.Activity, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	activityFile, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: not an activity file: %v", ErrDecode, err)
	}
	if len(activityFile.Sessions) == 0 {
		return nil, ErrNoSession
	}
	session := activityFile.Sessions[0]

	samples := buildSamples(activityFile.Records)

	hash := sha256.Sum256(data)
	contentHash := hex.EncodeToString(hash[:])

	a := &domain.Activity{
		ID:          uuid.NewString(),
		AthleteID:   athleteID,
		Source:      domain.SourceUpload,
		ContentHash: &contentHash,
		Sport:       mapSport(session.Sport),
		CreatedAt:   time.Now().UTC(),
		Samples:     samples,
		Laps:        buildLaps(activityFile.Laps),
	}
	if filename != "" {
		a.OriginalFilename = &filename
	}
	if sub := subSportName(session.SubSport); sub != "" {
		a.SubSport = &sub
	}

	a.StartTime = validTime(session.StartTime)
	if a.StartTime.IsZero() && len(samples) > 0 {
		a.StartTime = samples[0].Timestamp
	}
	if end := validTime(session.Timestamp); !end.IsZero() {
		a.EndTime = &end
	} else if len(samples) > 0 {
		end := samples[len(samples)-1].Timestamp
		a.EndTime = &end
	}

	a.TotalTimerTime = positiveScaled(session.GetTotalTimerTimeScaled())
	if a.TotalTimerTime == 0 && a.EndTime != nil {
		a.TotalTimerTime = a.EndTime.Sub(a.StartTime).Seconds()
	}
	if elapsed := positiveScaled(session.GetTotalElapsedTimeScaled()); elapsed > 0 {
		a.TotalElapsedTime = &elapsed
	}

	fillSummary(a, session, samples)
	return a, nil
}

func fillSummary(a *domain.Activity, session *fit.SessionMsg, samples []domain.Sample) {
	if v := validUint8(session.AvgHeartRate); v > 0 {
		hr := int(v)
		a.AvgHeartRate = &hr
	}
	if v := validUint8(session.MaxHeartRate); v > 0 {
		hr := int(v)
		a.MaxHeartRate = &hr
	}
	if v := validUint16(session.AvgPower); v > 0 {
		p := int(v)
		a.AvgPower = &p
	}
	if v := validUint16(session.MaxPower); v > 0 {
		p := int(v)
		a.MaxPower = &p
	}
	if v := validUint8(session.AvgCadence); v > 0 {
		c := int(v)
		a.AvgCadence = &c
	}

	if v := positiveScaled(session.GetEnhancedAvgSpeedScaled()); v > 0 {
		a.AvgSpeed = &v
	} else if v := positiveScaled(session.GetAvgSpeedScaled()); v > 0 {
		a.AvgSpeed = &v
	}
	if v := positiveScaled(session.GetEnhancedMaxSpeedScaled()); v > 0 {
		a.MaxSpeed = &v
	} else if v := positiveScaled(session.GetMaxSpeedScaled()); v > 0 {
		a.MaxSpeed = &v
	}

	if v := positiveScaled(session.GetTotalDistanceScaled()); v > 0 {
		a.TotalDistance = &v
	} else if d := lastDistance(samples); d > 0 {
		a.TotalDistance = &d
	}
	if v := validUint16(session.TotalAscent); v > 0 {
		asc := float64(v)
		a.TotalAscent = &asc
	}
	if v := validUint16(session.TotalDescent); v > 0 {
		desc := float64(v)
		a.TotalDescent = &desc
	}
}

func buildSamples(records []*fit.RecordMsg) []domain.Sample {
	samples := make([]domain.Sample, 0, len(records))
	for _, rec := range records {
		ts := validTime(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		s := domain.Sample{Timestamp: ts}
		if rec.HeartRate != math.MaxUint8 {
			hr := int(rec.HeartRate)
			s.HeartRate = &hr
		}
		if rec.Power != math.MaxUint16 {
			p := int(rec.Power)
			s.Power = &p
		}
		if cad, ok := recordCadence(rec); ok {
			s.Cadence = &cad
		}
		if v, ok := recordSpeed(rec); ok {
			s.Speed = &v
		}
		if v := rec.GetDistanceScaled(); isFinite(v) && v >= 0 {
			d := v
			s.Distance = &d
		}
		if v := rec.GetAltitudeScaled(); isFinite(v) {
			alt := v
			s.Altitude = &alt
		}
		if lat := rec.PositionLat.Degrees(); isFinite(lat) {
			if lng := rec.PositionLong.Degrees(); isFinite(lng) {
				s.Latitude = &lat
				s.Longitude = &lng
			}
		}
		if rec.Temperature != math.MaxInt8 {
			temp := float64(rec.Temperature)
			s.Temperature = &temp
		}
		samples = append(samples, s)
	}
	return samples
}

func buildLaps(laps []*fit.LapMsg) []domain.Lap {
	out := make([]domain.Lap, 0, len(laps))
	for _, lap := range laps {
		l := domain.Lap{
			StartTime:      validTime(lap.StartTime),
			TotalTimerTime: positiveScaled(lap.GetTotalTimerTimeScaled()),
		}
		if l.TotalTimerTime == 0 {
			l.TotalTimerTime = positiveScaled(lap.GetTotalElapsedTimeScaled())
		}
		if v := positiveScaled(lap.GetTotalDistanceScaled()); v > 0 {
			l.TotalDistance = &v
		}
		if v := validUint8(lap.AvgHeartRate); v > 0 {
			hr := int(v)
			l.AvgHeartRate = &hr
		}
		if v := validUint8(lap.MaxHeartRate); v > 0 {
			hr := int(v)
			l.MaxHeartRate = &hr
		}
		if v := validUint16(lap.AvgPower); v > 0 {
			p := int(v)
			l.AvgPower = &p
		}
		if v := validUint16(lap.MaxPower); v > 0 {
			p := int(v)
			l.MaxPower = &p
		}
		if v := validUint8(lap.AvgCadence); v > 0 {
			c := int(v)
			l.AvgCadence = &c
		}
		if v := positiveScaled(lap.GetAvgSpeedScaled()); v > 0 {
			l.AvgSpeed = &v
		}
		out = append(out, l)
	}
	return out
}

func recordCadence(rec *fit.RecordMsg) (int, bool) {
	if v := rec.GetCadence256Scaled(); isFinite(v) && v > 0 {
		return int(math.Round(v)), true
	}
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	return int(rec.Cadence), true
}

func recordSpeed(rec *fit.RecordMsg) (float64, bool) {
	if v := rec.GetEnhancedSpeedScaled(); isFinite(v) && v >= 0 {
		return v, true
	}
	if v := rec.GetSpeedScaled(); isFinite(v) && v >= 0 {
		return v, true
	}
	return 0, false
}

func mapSport(s fit.Sport) domain.Sport {
	switch s {
	case fit.SportRowing:
		return domain.SportRowing
	case fit.SportCycling:
		return domain.SportCycling
	case fit.SportRunning:
		return domain.SportRunning
	case fit.SportSwimming:
		return domain.SportSwimming
	case fit.SportTraining:
		return domain.SportStrength
	default:
		return domain.SportOther
	}
}

func subSportName(s fit.SubSport) string {
	name := strings.ToLower(fmt.Sprint(s))
	if name == "generic" || strings.HasPrefix(name, "subsportinvalid") {
		return ""
	}
	return strings.TrimPrefix(name, "subsport")
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t.UTC()
}

func positiveScaled(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

func lastDistance(samples []domain.Sample) float64 {
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].Distance != nil {
			return *samples[i].Distance
		}
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}
