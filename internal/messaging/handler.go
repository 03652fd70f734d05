package messaging

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// GET /admin/conversations/{contactID}
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	entries, err := h.service.History(r.Context(), contactID)
	if err != nil {
		h.logger.Error("conversation history failed", "contact_id", contactID, "error", err)
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"messages": entries,
		"total":    len(entries),
	})
}

type sendMessageRequest struct {
	PatientID   string `json:"patient_id"`
	ContactID   string `json:"ghl_contact_id"`
	FirstName   string `json:"first_name"`
	AccessToken string `json:"access_token"`
	MessageType string `json:"message_type"`
	Message     string `json:"message"`
}

// POST /admin/messages/send
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContactID == "" {
		http.Error(w, "ghl_contact_id is required", http.StatusBadRequest)
		return
	}

	var msg *Message
	var err error
	switch req.MessageType {
	case KindPortal, KindOnboard:
		msg, err = h.service.SendPatientLink(r.Context(), SendLinkRequest{
			PatientID:   req.PatientID,
			ContactID:   req.ContactID,
			FirstName:   req.FirstName,
			AccessToken: req.AccessToken,
			Kind:        req.MessageType,
		})
	case KindCustom, "":
		msg, err = h.service.SendCustom(r.Context(), req.PatientID, req.ContactID, req.Message)
	default:
		http.Error(w, "message_type must be portal, onboard, or custom", http.StatusBadRequest)
		return
	}

	if errors.Is(err, ErrSuppressed) {
		http.Error(w, "send suppressed", http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("send message failed", "contact_id", req.ContactID, "error", err)
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": msg,
	})
}
