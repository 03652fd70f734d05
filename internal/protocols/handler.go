package protocols

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// GET /admin/protocols?status=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.repo.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		h.logger.Error("list protocols failed", "error", err)
		http.Error(w, "failed to list protocols", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"protocols": list,
		"total":     len(list),
	})
}

// GET /admin/protocols/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get protocol failed", "protocol_id", id, "error", err)
		http.Error(w, "failed to load protocol", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "protocol not found", http.StatusNotFound)
		return
	}

	days, err := h.repo.Days(r.Context(), id)
	if err != nil {
		h.logger.Error("load protocol days failed", "protocol_id", id, "error", err)
		http.Error(w, "failed to load protocol", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"protocol": p,
		"days":     days,
	})
}

type createProtocolRequest struct {
	PatientID           string `json:"patient_id"`
	ProgramName         string `json:"program_name"`
	ProtocolType        string `json:"protocol_type"`
	Medication          string `json:"medication"`
	DoseAmount          string `json:"dose_amount"`
	DoseFrequency       string `json:"dose_frequency"`
	Route               string `json:"route"`
	StartDate           string `json:"start_date"`
	DurationDays        int    `json:"duration_days"`
	TotalSessions       int    `json:"total_sessions"`
	SpecialInstructions string `json:"special_instructions"`
}

// POST /admin/protocols
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" || req.ProgramName == "" {
		http.Error(w, "patient_id and program_name are required", http.StatusBadRequest)
		return
	}
	if req.DurationDays <= 0 && req.TotalSessions <= 0 {
		http.Error(w, "duration_days or total_sessions is required", http.StatusBadRequest)
		return
	}

	p := &Protocol{
		PatientID:           req.PatientID,
		ProgramName:         req.ProgramName,
		ProtocolType:        req.ProtocolType,
		Medication:          req.Medication,
		DoseAmount:          req.DoseAmount,
		DoseFrequency:       req.DoseFrequency,
		Route:               req.Route,
		DurationDays:        req.DurationDays,
		TotalSessions:       req.TotalSessions,
		SpecialInstructions: req.SpecialInstructions,
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		p.StartDate = &start
	}
	if p.DurationDays > 0 && p.StartDate == nil {
		http.Error(w, "start_date is required for time-bound protocols", http.StatusBadRequest)
		return
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		h.logger.Error("create protocol failed", "patient_id", req.PatientID, "error", err)
		http.Error(w, "failed to create protocol", http.StatusInternalServerError)
		return
	}

	h.logger.Info("protocol created",
		"protocol_id", p.ID,
		"patient_id", p.PatientID,
		"program", p.ProgramName,
		"duration_days", p.DurationDays)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// PUT /admin/protocols/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get protocol failed", "protocol_id", id, "error", err)
		http.Error(w, "failed to load protocol", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "protocol not found", http.StatusNotFound)
		return
	}

	var req createProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProgramName != "" {
		existing.ProgramName = req.ProgramName
	}
	existing.Medication = req.Medication
	existing.DoseAmount = req.DoseAmount
	existing.DoseFrequency = req.DoseFrequency
	existing.Route = req.Route
	existing.SpecialInstructions = req.SpecialInstructions

	if err := h.repo.Update(r.Context(), existing); err != nil {
		h.logger.Error("update protocol failed", "protocol_id", id, "error", err)
		http.Error(w, "failed to update protocol", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(existing)
}

// POST /admin/protocols/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.repo.Complete(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "protocol not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("complete protocol failed", "protocol_id", id, "error", err)
		http.Error(w, "failed to complete protocol", http.StatusInternalServerError)
		return
	}

	h.logger.Info("protocol completed", "protocol_id", id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}
