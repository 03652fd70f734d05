package pos

import (
	"encoding/json"
	"net/http"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// Handler serves the POS service list to the admin dashboard.
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

// List handles GET /admin/services.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list services failed", "error", err)
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []Service{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"services": services})
}
