package patients

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// GET /admin/patients?search=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.repo.List(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		h.logger.Error("list patients failed", "error", err)
		http.Error(w, "failed to list patients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"patients": list,
		"total":    len(list),
	})
}

// GET /admin/patients/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get patient failed", "patient_id", id, "error", err)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// POST /admin/patients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if p.FirstName == "" && p.LastName == "" {
		http.Error(w, "patient name is required", http.StatusBadRequest)
		return
	}
	p.Phone = NormalizeE164(p.Phone)

	if err := h.repo.Create(r.Context(), &p); err != nil {
		h.logger.Error("create patient failed", "error", err)
		http.Error(w, "failed to create patient", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// PUT /admin/patients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = id
	p.Phone = NormalizeE164(p.Phone)

	err := h.repo.Update(r.Context(), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("update patient failed", "patient_id", id, "error", err)
		http.Error(w, "failed to update patient", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

type mergeRequest struct {
	PrimaryID   string `json:"primary_id"`
	DuplicateID string `json:"duplicate_id"`
	Preview     bool   `json:"preview"`
}

// Merge handles POST /admin/patients/merge. With preview=true it reports
// what would move; otherwise it performs the merge.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.PrimaryID == "" || req.DuplicateID == "" {
		http.Error(w, "both primary_id and duplicate_id are required", http.StatusBadRequest)
		return
	}
	if req.PrimaryID == req.DuplicateID {
		http.Error(w, "cannot merge a patient with themselves", http.StatusBadRequest)
		return
	}

	primary, err := h.repo.Get(r.Context(), req.PrimaryID)
	if err != nil {
		h.logger.Error("merge: load primary failed", "patient_id", req.PrimaryID, "error", err)
		http.Error(w, "failed to load patients", http.StatusInternalServerError)
		return
	}
	if primary == nil {
		http.Error(w, "primary patient not found", http.StatusNotFound)
		return
	}
	duplicate, err := h.repo.Get(r.Context(), req.DuplicateID)
	if err != nil {
		h.logger.Error("merge: load duplicate failed", "patient_id", req.DuplicateID, "error", err)
		http.Error(w, "failed to load patients", http.StatusInternalServerError)
		return
	}
	if duplicate == nil {
		http.Error(w, "duplicate patient not found", http.StatusNotFound)
		return
	}

	if req.Preview {
		counts, err := h.repo.CountChildRows(r.Context(), duplicate.ID)
		if err != nil {
			h.logger.Error("merge preview failed", "error", err)
			http.Error(w, "failed to build preview", http.StatusInternalServerError)
			return
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(MergePreview{
			Primary:       candidate(primary),
			Duplicate:     candidate(duplicate),
			RecordsToMove: counts,
			TotalRecords:  total,
		})
		return
	}

	result, err := h.repo.Merge(r.Context(), primary, duplicate)
	if err != nil {
		h.logger.Error("merge failed",
			"primary_id", req.PrimaryID,
			"duplicate_id", req.DuplicateID,
			"error", err,
		)
		http.Error(w, "merge failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patients merged",
		"primary_id", result.PrimaryID,
		"deleted_id", result.DeletedID,
		"fields_updated", result.FieldsUpdated,
	)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func candidate(p *Patient) MergeCandidate {
	return MergeCandidate{
		ID:           p.ID,
		Name:         p.Name(),
		Email:        p.Email,
		Phone:        p.Phone,
		GHLContactID: p.GHLContactID,
		CreatedAt:    p.CreatedAt,
	}
}
