// Package load computes training stress per activity and the rolling
// fitness, fatigue, and form model derived from it.
package load

import (
	"math"
	"time"

	"example.com/training/internal/domain"
	"example.com/training/internal/profile"
)

const (
	// rollingWindow is the averaging window for normalized power.
	rollingWindow = 30
	// maxGapFill is the widest recording gap that is bridged by repeating
	// the last power reading. Longer gaps break the series.
	maxGapFill = 30 * time.Second
)

// NormalizedPower computes the 30-second-smoothed fourth-power mean of the
// power channel. The samples are resampled to 1 Hz; gaps up to 30 seconds
// carry the previous reading forward. Returns false when fewer than 30
// seconds of usable power exist.
func NormalizedPower(samples []domain.Sample) (float64, bool) {
	series := powerSeries(samples)
	if len(series) < rollingWindow {
		return 0, false
	}

	var sum float64
	for i := 0; i < rollingWindow; i++ {
		sum += float64(series[i])
	}
	var fourthSum float64
	count := 0
	avg := sum / rollingWindow
	fourthSum += math.Pow(avg, 4)
	count++
	for i := rollingWindow; i < len(series); i++ {
		sum += float64(series[i] - series[i-rollingWindow])
		avg = sum / rollingWindow
		fourthSum += math.Pow(avg, 4)
		count++
	}
	return math.Pow(fourthSum/float64(count), 0.25), true
}

// powerSeries flattens the power channel into a 1 Hz slice, carrying
// readings across short gaps.
func powerSeries(samples []domain.Sample) []int {
	series := make([]int, 0, len(samples))
	var lastTime time.Time
	var lastPower int
	havePrev := false
	for i := range samples {
		s := &samples[i]
		if s.Power == nil {
			continue
		}
		if havePrev {
			gap := s.Timestamp.Sub(lastTime)
			if gap > time.Second && gap <= maxGapFill {
				for fill := time.Second; fill < gap; fill += time.Second {
					series = append(series, lastPower)
				}
			}
		}
		series = append(series, *s.Power)
		lastTime = s.Timestamp
		lastPower = *s.Power
		havePrev = true
	}
	return series
}

// ComputeActivityLoad fills the load fields of the activity summary:
// normalized power, intensity factor, TSS, and sport-scaled TSS. Power-based
// TSS is preferred; running activities anchor to the running FTP when one is
// set. Without usable power the heart-rate estimate is used. Activities with
// neither channel are left without a TSS.
func ComputeActivityLoad(a *domain.Activity, prof profile.Profile) {
	if np, ok := NormalizedPower(a.Samples); ok {
		ftp := thresholdPowerFor(a.Sport, prof.Thresholds.FTP, prof.Thresholds.RunningFTP)
		if ftp > 0 {
			intensity := np / float64(ftp)
			tss := a.TotalTimerTime * np * intensity / (float64(ftp) * 3600) * 100
			setLoad(a, &np, intensity, tss, prof.ScalingFor(string(a.Sport)))
			return
		}
	}

	if a.AvgHeartRate != nil && prof.Thresholds.LTHR > 0 {
		ratio := float64(*a.AvgHeartRate) / float64(prof.Thresholds.LTHR)
		hours := a.TotalTimerTime / 3600
		tss := hours * ratio * ratio * 100
		setLoad(a, nil, ratio, tss, prof.ScalingFor(string(a.Sport)))
	}
}

func thresholdPowerFor(sport domain.Sport, ftp, runningFTP int) int {
	if sport == domain.SportRunning && runningFTP > 0 {
		return runningFTP
	}
	return ftp
}

func setLoad(a *domain.Activity, np *float64, intensity, tss, scaling float64) {
	if np != nil {
		rounded := math.Round(*np*10) / 10
		a.NormalizedPower = &rounded
	}
	intensity = math.Round(intensity*100) / 100
	tss = math.Round(tss*10) / 10
	scaled := math.Round(tss*scaling*10) / 10
	a.IntensityFactor = &intensity
	a.TSS = &tss
	a.ScaledTSS = &scaled
}
