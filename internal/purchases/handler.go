package purchases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rangemedical/clinic-ops/internal/notify"
	"github.com/rangemedical/clinic-ops/internal/patients"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// PatientDirectory resolves patient records for receipt delivery.
type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patients.Patient, error)
}

// ReceiptSender emails a receipt after an approval.
type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, r notify.Receipt) error
}

type Handler struct {
	repo     *Repository
	patients PatientDirectory
	receipts ReceiptSender
	logger   *logging.Logger
}

func NewHandler(repo *Repository, patients PatientDirectory, receipts ReceiptSender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, patients: patients, receipts: receipts, logger: logger}
}

// GET /admin/purchases?category=&search=&days=&patient_id=&limit=&offset=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, revenue, err := h.repo.List(r.Context(), Filter{
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		PatientID: q.Get("patient_id"),
		Days:      days,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.logger.Error("list purchases failed", "error", err)
		http.Error(w, "failed to list purchases", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"purchases": list,
		"total":     len(list),
		"revenue":   revenue,
	})
}

// GET /admin/purchases/review
func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ReviewQueue(r.Context())
	if err != nil {
		h.logger.Error("review queue failed", "error", err)
		http.Error(w, "failed to load review queue", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"purchases": list,
		"total":     len(list),
	})
}

// POST /admin/purchases/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		PatientID string `json:"patient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" {
		http.Error(w, "patient_id is required", http.StatusBadRequest)
		return
	}

	purchase, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get purchase failed", "purchase_id", id, "error", err)
		http.Error(w, "failed to load purchase", http.StatusInternalServerError)
		return
	}
	if purchase == nil {
		http.Error(w, "purchase not found", http.StatusNotFound)
		return
	}

	if err := h.repo.Approve(r.Context(), id, req.PatientID); err != nil {
		h.logger.Error("approve purchase failed", "purchase_id", id, "error", err)
		http.Error(w, "failed to approve purchase", http.StatusInternalServerError)
		return
	}

	h.logger.Info("purchase approved",
		"purchase_id", id,
		"patient_id", req.PatientID,
		"item", purchase.ItemName)

	if h.receipts != nil && h.patients != nil {
		patient, err := h.patients.Get(r.Context(), req.PatientID)
		if err == nil && patient != nil {
			receipt := notify.Receipt{
				PatientName:  patient.Name(),
				PatientEmail: patient.Email,
				ItemName:     purchase.ItemName,
				Quantity:     purchase.Quantity,
				Amount:       purchase.Amount,
				PurchaseDate: purchase.PurchaseDate,
			}
			if err := h.receipts.SendPurchaseReceipt(r.Context(), receipt); err != nil {
				h.logger.Error("receipt send failed", "purchase_id", id, "error", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// POST /admin/purchases/{id}/dismiss
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.repo.Dismiss(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "purchase not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("dismiss purchase failed", "purchase_id", id, "error", err)
		http.Error(w, "failed to dismiss purchase", http.StatusInternalServerError)
		return
	}

	h.logger.Info("purchase dismissed", "purchase_id", id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// PUT /admin/purchases/{id}
func (h *Handler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Amount *float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount == nil || *req.Amount < 0 {
		http.Error(w, "amount must be a non-negative number", http.StatusBadRequest)
		return
	}

	err := h.repo.UpdateAmount(r.Context(), id, *req.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "purchase not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("update purchase amount failed", "purchase_id", id, "error", err)
		http.Error(w, "failed to update amount", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}
