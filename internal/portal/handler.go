package portal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rangemedical/clinic-ops/internal/observability/metrics"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

type Handler struct {
	service *Service
	metrics *metrics.TrackerMetrics
	logger  *logging.Logger
}

func NewHandler(service *Service, m *metrics.TrackerMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, metrics: m, logger: logger}
}

// Get handles GET /portal/{token}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	token := chi.URLParam(r, "token")

	payload, err := h.service.Load(r.Context(), token)
	if err != nil {
		h.logger.Error("portal load failed", "error", err)
		h.metrics.ObservePortalRequest("portal", "error")
		http.Error(w, "failed to load portal", http.StatusInternalServerError)
		return
	}
	if payload == nil {
		h.metrics.ObservePortalRequest("portal", "not_found")
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	h.metrics.ObservePortalRequest("portal", "ok")
	h.metrics.ObserveTrackerLatency("portal", time.Since(start).Seconds())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
