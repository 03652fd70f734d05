package messaging

import "time"

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"

	KindPortal   = "portal"
	KindOnboard  = "onboard"
	KindReminder = "reminder"
	KindCustom   = "custom"
)

// Message is one SMS recorded against a patient.
type Message struct {
	ID                string    `json:"id"`
	PatientID         string    `json:"patient_id,omitempty"`
	GHLContactID      string    `json:"ghl_contact_id,omitempty"`
	Direction         string    `json:"direction"`
	Kind              string    `json:"kind,omitempty"`
	Body              string    `json:"body"`
	Status            string    `json:"status"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// HistoryEntry is one CRM conversation message shaped for the admin UI.
type HistoryEntry struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	Body      string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
