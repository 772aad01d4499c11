// Package api exposes HTTP handlers for the training service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/training/internal/auth"
	"example.com/training/internal/decode"
	"example.com/training/internal/dedup"
	"example.com/training/internal/domain"
	"example.com/training/internal/load"
	"example.com/training/internal/merge"
	"example.com/training/internal/persistence"
	"example.com/training/internal/profile"
	"example.com/training/internal/reconcile"
)

const defaultMaxUploadBytes = 25 << 20

// Handler coordinates HTTP requests with the reconciliation service and the
// load engine.
type Handler struct {
	service        *reconcile.Service
	profiles       profile.Store
	engine         *load.Engine
	maxUploadBytes int64
}

// NewHandler builds a Handler.
func NewHandler(service *reconcile.Service, profiles profile.Store, engine *load.Engine, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{service: service, profiles: profiles, engine: engine, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/activities/upload", h.uploadActivity)
	mux.HandleFunc("/v1/activities/combine", h.combineActivities)
	mux.HandleFunc("/v1/activities/overlay", h.overlayActivities)
	mux.HandleFunc("/v1/zones/hr", h.hrZones)
	mux.HandleFunc("/v1/zones/hr/methods", h.hrZoneMethods)
	mux.HandleFunc("/v1/zones/power", h.powerZones)
	mux.HandleFunc("/v1/zones/power/methods", h.powerZoneMethods)
	mux.HandleFunc("/v1/zones/thresholds", h.updateThresholds)
	mux.HandleFunc("/v1/zones/config", h.updateZoneConfig)
	mux.HandleFunc("/v1/metrics/range", h.metricsRange)
	mux.HandleFunc("/v1/metrics/snapshot", h.metricsSnapshot)
	mux.HandleFunc("/v1/metrics/weekly", h.metricsWeekly)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.getActivity(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.deleteActivity(w, r, id)
	case sub == "samples" && r.Method == http.MethodGet:
		h.getActivitySamples(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// UploadConflictResponse is returned with 409 when duplicates are detected.
// The upload is not persisted; clients re-submit with force=true to keep both.
type UploadConflictResponse struct {
	Detail     string            `json:"detail"`
	Candidates []dedup.Candidate `json:"duplicate_candidates"`
}

func (h *Handler) uploadActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to read upload")
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "upload exceeds size limit")
		return
	}

	activity, err := decode.Activity(data, claims.Subject, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, "decode_failed", err.Error())
		return
	}
	if name := strings.TrimSpace(r.FormValue("name")); name != "" {
		activity.Name = &name
	}

	force := r.FormValue("force") == "true"
	candidates, err := h.service.Ingest(r.Context(), activity, force)
	if err != nil {
		if errors.Is(err, reconcile.ErrDuplicate) {
			writeJSON(w, http.StatusConflict, UploadConflictResponse{
				Detail:     "possible duplicate activities found",
				Candidates: candidates,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	activity, err := h.service.Get(r.Context(), claims.Subject, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) getActivitySamples(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	activity, err := h.service.Get(r.Context(), claims.Subject, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SamplesView{
		ActivityID: activity.ID,
		Samples:    activity.Samples,
		Laps:       activity.Laps,
	})
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), claims.Subject, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	var filter domain.ListFilter
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := parseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid start date")
			return
		}
		filter.Start = &start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := parseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid end date")
			return
		}
		end = end.AddDate(0, 0, 1)
		filter.End = &end
	}
	if raw := r.URL.Query().Get("sport"); raw != "" {
		sport := domain.Sport(raw)
		filter.Sport = &sport
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.List(r.Context(), claims.Subject, filter, cursor, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

// CombineRequest is the payload for POST /v1/activities/combine.
type CombineRequest struct {
	ActivityID1    string  `json:"activity_id_1"`
	ActivityID2    string  `json:"activity_id_2"`
	OffsetSeconds  float64 `json:"offset_seconds"`
	PreferDataFrom int     `json:"prefer_data_from"`
}

// Validate ensures request correctness.
func (r CombineRequest) Validate() error {
	if strings.TrimSpace(r.ActivityID1) == "" || strings.TrimSpace(r.ActivityID2) == "" {
		return errors.New("activity_id_1 and activity_id_2 are required")
	}
	if r.ActivityID1 == r.ActivityID2 {
		return errors.New("cannot combine an activity with itself")
	}
	if r.PreferDataFrom != 1 && r.PreferDataFrom != 2 {
		return errors.New("prefer_data_from must be 1 or 2")
	}
	return nil
}

func (h *Handler) combineActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req CombineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	offset := time.Duration(req.OffsetSeconds * float64(time.Second))
	merged, err := h.service.Combine(r.Context(), claims.Subject, req.ActivityID1, req.ActivityID2, offset, req.PreferDataFrom)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(*merged))
}

func (h *Handler) overlayActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	query := r.URL.Query()
	id1 := query.Get("activity_id_1")
	id2 := query.Get("activity_id_2")
	if id1 == "" || id2 == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "activity_id_1 and activity_id_2 are required")
		return
	}
	var offsetSeconds float64
	if raw := query.Get("offset_seconds"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid offset_seconds")
			return
		}
		offsetSeconds = parsed
	}

	offset := time.Duration(offsetSeconds * float64(time.Second))
	overlay, err := h.service.Overlay(r.Context(), claims.Subject, id1, id2, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlay)
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, merge.ErrBadPreference),
		errors.Is(err, load.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func parseDay(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
