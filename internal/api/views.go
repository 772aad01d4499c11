package api

import (
	"time"

	"example.com/training/internal/domain"
)

// ActivityView exposes an activity without its sample series.
type ActivityView struct {
	ActivityID       string     `json:"activity_id"`
	AthleteID        string     `json:"athlete_id"`
	Source           string     `json:"source"`
	Sport            string     `json:"sport"`
	SubSport         *string    `json:"sub_sport,omitempty"`
	Name             *string    `json:"name,omitempty"`
	Description      *string    `json:"description,omitempty"`
	OriginalFilename *string    `json:"original_filename,omitempty"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	TotalTimerTime   float64    `json:"total_timer_time"`
	TotalElapsedTime *float64   `json:"total_elapsed_time,omitempty"`

	AvgHeartRate    *int     `json:"avg_heart_rate,omitempty"`
	MaxHeartRate    *int     `json:"max_heart_rate,omitempty"`
	AvgPower        *int     `json:"avg_power,omitempty"`
	MaxPower        *int     `json:"max_power,omitempty"`
	NormalizedPower *float64 `json:"normalized_power,omitempty"`
	AvgCadence      *int     `json:"avg_cadence,omitempty"`
	AvgSpeed        *float64 `json:"avg_speed,omitempty"`
	MaxSpeed        *float64 `json:"max_speed,omitempty"`
	TotalDistance   *float64 `json:"total_distance,omitempty"`
	TotalAscent     *float64 `json:"total_ascent,omitempty"`
	TotalDescent    *float64 `json:"total_descent,omitempty"`
	TSS             *float64 `json:"tss,omitempty"`
	ScaledTSS       *float64 `json:"scaled_tss,omitempty"`
	IntensityFactor *float64 `json:"intensity_factor,omitempty"`

	SampleCount    int       `json:"sample_count"`
	LapCount       int       `json:"lap_count"`
	Reconciled     bool      `json:"is_reconciled"`
	ReconciledFrom []string  `json:"reconciled_from,omitempty"`
	SupersededBy   *string   `json:"superseded_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ActivityID:       a.ID,
		AthleteID:        a.AthleteID,
		Source:           string(a.Source),
		Sport:            string(a.Sport),
		SubSport:         a.SubSport,
		Name:             a.Name,
		Description:      a.Description,
		OriginalFilename: a.OriginalFilename,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		TotalTimerTime:   a.TotalTimerTime,
		TotalElapsedTime: a.TotalElapsedTime,
		AvgHeartRate:     a.AvgHeartRate,
		MaxHeartRate:     a.MaxHeartRate,
		AvgPower:         a.AvgPower,
		MaxPower:         a.MaxPower,
		NormalizedPower:  a.NormalizedPower,
		AvgCadence:       a.AvgCadence,
		AvgSpeed:         a.AvgSpeed,
		MaxSpeed:         a.MaxSpeed,
		TotalDistance:    a.TotalDistance,
		TotalAscent:      a.TotalAscent,
		TotalDescent:     a.TotalDescent,
		TSS:              a.TSS,
		ScaledTSS:        a.ScaledTSS,
		IntensityFactor:  a.IntensityFactor,
		SampleCount:      len(a.Samples),
		LapCount:         len(a.Laps),
		Reconciled:       a.Reconciled,
		ReconciledFrom:   a.ReconciledFrom,
		SupersededBy:     a.SupersededBy,
		CreatedAt:        a.CreatedAt,
	}
}

// SamplesView packages an activity's raw series for charting.
type SamplesView struct {
	ActivityID string          `json:"activity_id"`
	Samples    []domain.Sample `json:"samples"`
	Laps       []domain.Lap    `json:"laps"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
