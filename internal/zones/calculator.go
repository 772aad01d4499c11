// Package zones derives absolute training-zone boundaries from an athlete's
// threshold values using published percentage tables.
package zones

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownMethod is returned when a method id does not resolve, even
	// after modality suffixing.
	ErrUnknownMethod = errors.New("unknown zone method")
	// ErrMissingThreshold is returned when the threshold value the method
	// requires is absent or non-positive.
	ErrMissingThreshold = errors.New("missing threshold value")
)

// ThresholdType names the physiological anchor a method's percentages apply to.
type ThresholdType string

const (
	ThresholdLTHR          ThresholdType = "LTHR"
	ThresholdFTP           ThresholdType = "FTP"
	ThresholdRunningFTP    ThresholdType = "rFTP"
	ThresholdCriticalPower ThresholdType = "CP"
)

// Kind is the activity modality zones are being calculated for.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
	KindRowing  Kind = "rowing"
	KindOther   Kind = "other"
)

// Thresholds carries an athlete's threshold values. Zero means unset.
type Thresholds struct {
	LTHR          int `json:"threshold_hr,omitempty"`
	MaxHR         int `json:"max_hr,omitempty"`
	RestingHR     int `json:"resting_hr,omitempty"`
	FTP           int `json:"threshold_power,omitempty"`
	RunningFTP    int `json:"running_threshold_power,omitempty"`
	CriticalPower int `json:"critical_power,omitempty"`
}

// Zone is one absolute band within a ZoneSet.
type Zone struct {
	Number int     `json:"zone_number"`
	Label  string  `json:"name"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// ZoneSet is the computed result for one method and threshold. Immutable
// once computed.
type ZoneSet struct {
	MethodID      string        `json:"method_id"`
	Method        string        `json:"method"`
	Kind          Kind          `json:"activity"`
	ThresholdType ThresholdType `json:"threshold_type"`
	Threshold     float64       `json:"threshold_value"`
	Zones         []Zone        `json:"zones"`
}

// MethodInfo describes one available method for listing endpoints.
type MethodInfo struct {
	ID            string        `json:"method_id"`
	Name          string        `json:"name"`
	ZoneCount     int           `json:"zone_count"`
	ThresholdType ThresholdType `json:"threshold_type"`
	Supports      []Kind        `json:"supports"`
}

// CalculateHR computes heart-rate zones for the given method and modality.
// Generic ids without a modality marker resolve by appending "_cycle" or
// "_run" based on kind.
func CalculateHR(methodID string, kind Kind, lthr int) (ZoneSet, error) {
	def, ok := resolve(hrMethods, methodID, kind)
	if !ok {
		return ZoneSet{}, fmt.Errorf("%w: %s", ErrUnknownMethod, methodID)
	}
	if lthr <= 0 {
		return ZoneSet{}, fmt.Errorf("%w: LTHR is required for %s", ErrMissingThreshold, def.name)
	}
	return build(def, kind, float64(lthr)), nil
}

// CalculatePower computes power zones for the given method and modality. The
// method's table decides which threshold it anchors to (FTP, rFTP, or CP).
func CalculatePower(methodID string, kind Kind, thresholds Thresholds) (ZoneSet, error) {
	def, ok := resolve(powerMethods, methodID, kind)
	if !ok {
		return ZoneSet{}, fmt.Errorf("%w: %s", ErrUnknownMethod, methodID)
	}

	var threshold int
	switch def.thresholdType {
	case ThresholdCriticalPower:
		threshold = thresholds.CriticalPower
	case ThresholdRunningFTP:
		threshold = thresholds.RunningFTP
	default:
		threshold = thresholds.FTP
	}
	if threshold <= 0 {
		return ZoneSet{}, fmt.Errorf("%w: %s is required for %s", ErrMissingThreshold, def.thresholdType, def.name)
	}
	return build(def, kind, float64(threshold)), nil
}

// HRMethods lists every heart-rate method in table order.
func HRMethods() []MethodInfo {
	return describe(hrMethods, supportedHRKinds)
}

// PowerMethods lists every power method in table order.
func PowerMethods() []MethodInfo {
	return describe(powerMethods, supportedPowerKinds)
}

func resolve(defs []methodDef, methodID string, kind Kind) (methodDef, bool) {
	if def, ok := lookup(defs, methodID); ok {
		return def, true
	}
	// Generic ids like "joe_friel" carry no modality; retry with a suffix.
	suffix := "_run"
	if kind == KindCycling {
		suffix = "_cycle"
	}
	return lookup(defs, methodID+suffix)
}

func lookup(defs []methodDef, id string) (methodDef, bool) {
	for _, def := range defs {
		if def.id == id {
			return def, true
		}
	}
	return methodDef{}, false
}

// build applies the table to the threshold. Bounds round half away from
// zero; every table uses the same rule.
func build(def methodDef, kind Kind, threshold float64) ZoneSet {
	set := ZoneSet{
		MethodID:      def.id,
		Method:        def.name,
		Kind:          kind,
		ThresholdType: def.thresholdType,
		Threshold:     threshold,
		Zones:         make([]Zone, 0, len(def.rows)),
	}
	for _, row := range def.rows {
		set.Zones = append(set.Zones, Zone{
			Number: row.number,
			Label:  row.label,
			Lower:  math.Round(threshold * row.lowerPct),
			Upper:  math.Round(threshold * row.upperPct),
		})
	}
	return set
}

func describe(defs []methodDef, supports func(string) []Kind) []MethodInfo {
	out := make([]MethodInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, MethodInfo{
			ID:            def.id,
			Name:          def.name,
			ZoneCount:     len(def.rows),
			ThresholdType: def.thresholdType,
			Supports:      supports(def.id),
		})
	}
	return out
}

func supportedHRKinds(id string) []Kind {
	switch {
	case strings.Contains(id, "run"):
		return []Kind{KindRunning}
	case strings.Contains(id, "cycle"):
		return []Kind{KindCycling}
	default:
		return []Kind{KindRunning, KindCycling, KindRowing, KindOther}
	}
}

func supportedPowerKinds(id string) []Kind {
	switch {
	case strings.Contains(id, "run"):
		return []Kind{KindRunning}
	case strings.Contains(id, "cycle"):
		return []Kind{KindCycling}
	default:
		return []Kind{KindCycling, KindRowing, KindOther}
	}
}
