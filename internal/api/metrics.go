package api

import (
	"net/http"
	"strconv"
	"time"

	"example.com/training/internal/auth"
	"example.com/training/internal/load"
)

// MetricsRangeResponse packages the daily fitness/fatigue series.
type MetricsRangeResponse struct {
	Start time.Time        `json:"start"`
	End   time.Time        `json:"end"`
	Days  []load.DailyLoad `json:"days"`
}

func (h *Handler) metricsRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeMetricsRead, auth.ScopeActivitiesRead)
	if !ok {
		return
	}

	query := r.URL.Query()
	start, err := parseDay(query.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDay(query.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "end must be YYYY-MM-DD")
		return
	}

	prof, err := h.profileOrDefault(r, claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days, err := h.engine.Range(r.Context(), claims.Subject, prof, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MetricsRangeResponse{Start: start, End: end, Days: days})
}

func (h *Handler) metricsSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeMetricsRead, auth.ScopeActivitiesRead)
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := parseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	prof, err := h.profileOrDefault(r, claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	snapshot, err := h.engine.CurrentSnapshot(r.Context(), claims.Subject, prof, asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// MetricsWeeklyResponse packages weekly summaries, most recent first.
type MetricsWeeklyResponse struct {
	Weeks []load.WeeklySummary `json:"weeks"`
}

func (h *Handler) metricsWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeMetricsRead, auth.ScopeActivitiesRead)
	if !ok {
		return
	}

	weeks := 12
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 52 {
				parsed = 52
			}
			weeks = parsed
		}
	}

	summaries, err := h.engine.WeeklySummaries(r.Context(), claims.Subject, time.Now().UTC(), weeks)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MetricsWeeklyResponse{Weeks: summaries})
}
