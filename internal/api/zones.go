package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"example.com/training/internal/auth"
	"example.com/training/internal/profile"
	"example.com/training/internal/zones"
)

func (h *Handler) hrZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	prof, err := h.profileOrDefault(r, claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	query := r.URL.Query()
	methodID := query.Get("method")
	if methodID == "" {
		methodID = prof.ZoneConfig.HRMethod
	}
	kind := prof.ZoneConfig.HRKind
	if raw := query.Get("activity"); raw != "" {
		kind = zones.Kind(raw)
	}
	lthr := prof.Thresholds.LTHR
	if raw := query.Get("lthr"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid lthr")
			return
		}
		lthr = parsed
	}

	set, err := zones.CalculateHR(methodID, kind, lthr)
	if err != nil {
		writeZonesError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) powerZones(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	prof, err := h.profileOrDefault(r, claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	query := r.URL.Query()
	methodID := query.Get("method")
	if methodID == "" {
		methodID = prof.ZoneConfig.PowerMethod
	}
	kind := prof.ZoneConfig.PowerKind
	if raw := query.Get("activity"); raw != "" {
		kind = zones.Kind(raw)
	}

	thresholds := prof.Thresholds
	overrides := map[string]*int{
		"ftp":  &thresholds.FTP,
		"rftp": &thresholds.RunningFTP,
		"cp":   &thresholds.CriticalPower,
	}
	for param, target := range overrides {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid "+param)
			return
		}
		*target = parsed
	}

	set, err := zones.CalculatePower(methodID, kind, thresholds)
	if err != nil {
		writeZonesError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) hrZoneMethods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"methods": zones.HRMethods()})
}

func (h *Handler) powerZoneMethods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"methods": zones.PowerMethods()})
}

// UpdateThresholdsRequest is the payload for PUT /v1/zones/thresholds.
type UpdateThresholdsRequest struct {
	LTHR          int `json:"threshold_hr"`
	MaxHR         int `json:"max_hr"`
	RestingHR     int `json:"resting_hr"`
	FTP           int `json:"threshold_power"`
	RunningFTP    int `json:"running_threshold_power"`
	CriticalPower int `json:"critical_power"`
}

// Validate rejects negative values; zero means unset.
func (r UpdateThresholdsRequest) Validate() error {
	for _, v := range []int{r.LTHR, r.MaxHR, r.RestingHR, r.FTP, r.RunningFTP, r.CriticalPower} {
		if v < 0 {
			return errors.New("threshold values must not be negative")
		}
	}
	return nil
}

func (h *Handler) updateThresholds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}

	var req UpdateThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	thresholds := zones.Thresholds{
		LTHR:          req.LTHR,
		MaxHR:         req.MaxHR,
		RestingHR:     req.RestingHR,
		FTP:           req.FTP,
		RunningFTP:    req.RunningFTP,
		CriticalPower: req.CriticalPower,
	}
	if err := h.profiles.UpdateThresholds(r.Context(), claims.Subject, thresholds); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, thresholds)
}

// UpdateZoneConfigRequest is the payload for PUT /v1/zones/config.
type UpdateZoneConfigRequest struct {
	HRMethod    string `json:"hr_method"`
	HRKind      string `json:"hr_activity"`
	PowerMethod string `json:"power_method"`
	PowerKind   string `json:"power_activity"`
}

func (h *Handler) updateZoneConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}

	var req UpdateZoneConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	cfg := profile.DefaultZoneConfig()
	if req.HRMethod != "" {
		cfg.HRMethod = req.HRMethod
	}
	if req.HRKind != "" {
		cfg.HRKind = zones.Kind(req.HRKind)
	}
	if req.PowerMethod != "" {
		cfg.PowerMethod = req.PowerMethod
	}
	if req.PowerKind != "" {
		cfg.PowerKind = zones.Kind(req.PowerKind)
	}

	// Reject method ids that resolve to nothing before they reach storage.
	if _, err := zones.CalculateHR(cfg.HRMethod, cfg.HRKind, 160); err != nil && errors.Is(err, zones.ErrUnknownMethod) {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown hr method "+cfg.HRMethod)
		return
	}
	if _, err := zones.CalculatePower(cfg.PowerMethod, cfg.PowerKind, zones.Thresholds{FTP: 250, RunningFTP: 250, CriticalPower: 250}); err != nil && errors.Is(err, zones.ErrUnknownMethod) {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown power method "+cfg.PowerMethod)
		return
	}

	if err := h.profiles.UpdateZoneConfig(r.Context(), claims.Subject, cfg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) profileOrDefault(r *http.Request, athleteID string) (profile.Profile, error) {
	prof, err := h.profiles.Get(r.Context(), athleteID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Profile{AthleteID: athleteID, ZoneConfig: profile.DefaultZoneConfig()}, nil
		}
		return profile.Profile{}, err
	}
	return *prof, nil
}

func writeZonesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, zones.ErrUnknownMethod):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, zones.ErrMissingThreshold):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}
