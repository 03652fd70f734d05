package protocols

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rangemedical/clinic-ops/internal/observability/metrics"
	"github.com/rangemedical/clinic-ops/internal/schedule"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// CacheInvalidator drops any cached portal payload for a patient after a
// tracker mutation.
type CacheInvalidator interface {
	InvalidatePatient(ctx context.Context, patientID string)
}

// TrackerHandler serves the patient-facing injection tracker, keyed by the
// protocol's opaque access token.
type TrackerHandler struct {
	repo    *Repository
	cache   CacheInvalidator
	metrics *metrics.TrackerMetrics
	logger  *logging.Logger
	today   func() time.Time
}

func NewTrackerHandler(repo *Repository, cache CacheInvalidator, m *metrics.TrackerMetrics, logger *logging.Logger) *TrackerHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrackerHandler{
		repo:    repo,
		cache:   cache,
		metrics: m,
		logger:  logger,
		today:   func() time.Time { return time.Now() },
	}
}

type trackerDay struct {
	Day         int        `json:"day"`
	Date        string     `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	OffDay      bool       `json:"off_day"`
	IsCurrent   bool       `json:"is_current"`
	IsPast      bool       `json:"is_past"`
}

type trackerResponse struct {
	Protocol *Protocol                 `json:"protocol"`
	Days     []trackerDay              `json:"days,omitempty"`
	Stats    *schedule.Stats           `json:"stats,omitempty"`
	Sessions *schedule.SessionProgress `json:"sessions,omitempty"`
	Upcoming []schedule.UpcomingDose   `json:"upcoming,omitempty"`
}

// Get handles GET /track/{token}.
func (h *TrackerHandler) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	token := chi.URLParam(r, "token")

	p, err := h.repo.GetByToken(r.Context(), token)
	if err != nil {
		h.logger.Error("tracker fetch failed", "error", err)
		h.metrics.ObservePortalRequest("tracker", "error")
		http.Error(w, "failed to load protocol", http.StatusInternalServerError)
		return
	}
	if p == nil {
		h.metrics.ObservePortalRequest("tracker", "not_found")
		http.Error(w, "protocol not found", http.StatusNotFound)
		return
	}

	days, err := h.repo.Days(r.Context(), p.ID)
	if err != nil {
		h.logger.Error("tracker days fetch failed", "protocol_id", p.ID, "error", err)
		h.metrics.ObservePortalRequest("tracker", "error")
		http.Error(w, "failed to load protocol", http.StatusInternalServerError)
		return
	}

	resp := h.buildPayload(p, days)
	p.AccessToken = ""

	h.metrics.ObservePortalRequest("tracker", "ok")
	h.metrics.ObserveTrackerLatency("tracker", time.Since(start).Seconds())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *TrackerHandler) buildPayload(p *Protocol, days []DayRecord) trackerResponse {
	resp := trackerResponse{Protocol: p}
	today := h.today()

	if p.TimeBound() {
		plan := p.Plan(days)
		stats := schedule.ComputeStats(plan, today)
		resp.Stats = &stats
		resp.Upcoming = schedule.NextDosingDates(plan, today,
			schedule.DefaultUpcomingLimit, schedule.DefaultHorizonDays)

		resp.Days = make([]trackerDay, 0, len(days))
		for _, d := range days {
			resp.Days = append(resp.Days, trackerDay{
				Day:         d.Day,
				Date:        d.Date.Format("2006-01-02"),
				Completed:   d.Completed,
				CompletedAt: d.CompletedAt,
				OffDay:      schedule.IsOffDay(d.Day, plan.Frequency, plan.StartDate),
				IsCurrent:   d.Day == stats.CurrentDay,
				IsPast:      d.Day < stats.CurrentDay,
			})
		}
		return resp
	}

	completed := 0
	for _, d := range days {
		if d.Completed {
			completed++
		}
	}
	progress := schedule.ComputeSessionProgress(completed, p.TotalSessions)
	resp.Sessions = &progress
	return resp
}

type toggleDayRequest struct {
	Day    int    `json:"day"`
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// ToggleDay handles POST /track/{token}/days. Action "add" marks the day
// complete, "remove" unmarks it. Session-based protocols log or remove a
// session instead; day is ignored for them.
func (h *TrackerHandler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req toggleDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Action != "add" && req.Action != "remove" {
		http.Error(w, "action must be add or remove", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByToken(r.Context(), token)
	if err != nil {
		h.logger.Error("tracker fetch failed", "error", err)
		http.Error(w, "failed to load protocol", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "protocol not found", http.StatusNotFound)
		return
	}

	if p.TimeBound() {
		if req.Day < 1 || req.Day > p.DurationDays {
			h.metrics.ObserveDayToggle(req.Action, "invalid_day")
			http.Error(w, "invalid day number", http.StatusBadRequest)
			return
		}
		if req.Action == "add" {
			freq := schedule.ParseFrequency(p.DoseFrequency)
			if schedule.IsOffDay(req.Day, freq, p.StartDate) {
				h.metrics.ObserveDayToggle(req.Action, "off_day")
				http.Error(w, "cannot log an off day", http.StatusBadRequest)
				return
			}
		}
		err = h.repo.SetDayCompleted(r.Context(), p.ID, req.Day, req.Action == "add", req.Notes)
	} else if req.Action == "add" {
		_, err = h.repo.LogSession(r.Context(), p.ID)
	} else {
		err = h.repo.RemoveLastSession(r.Context(), p.ID)
	}

	if errors.Is(err, sql.ErrNoRows) {
		h.metrics.ObserveDayToggle(req.Action, "not_found")
		http.Error(w, "day record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("day toggle failed", "protocol_id", p.ID, "day", req.Day, "error", err)
		h.metrics.ObserveDayToggle(req.Action, "error")
		http.Error(w, "failed to update day", http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.InvalidatePatient(r.Context(), p.PatientID)
	}

	h.logger.Info("day toggled",
		"protocol_id", p.ID,
		"day", req.Day,
		"action", req.Action)
	h.metrics.ObserveDayToggle(req.Action, "ok")

	days, err := h.repo.Days(r.Context(), p.ID)
	if err != nil {
		h.logger.Error("tracker days refresh failed", "protocol_id", p.ID, "error", err)
		http.Error(w, "failed to reload protocol", http.StatusInternalServerError)
		return
	}

	resp := h.buildPayload(p, days)
	p.AccessToken = ""
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
