package purchases

import (
	"encoding/json"
	"time"
)

// Purchase is one POS transaction imported from the payment provider.
// Imports that could not be matched to a patient land in the review queue
// (NeedsReview) until staff link or dismiss them.
type Purchase struct {
	ID           string          `json:"id"`
	PatientID    string          `json:"patient_id,omitempty"`
	PatientName  string          `json:"patient_name,omitempty"`
	PatientEmail string          `json:"patient_email,omitempty"`
	GHLContactID string          `json:"ghl_contact_id,omitempty"`
	ItemName     string          `json:"item_name"`
	Category     string          `json:"category,omitempty"`
	Quantity     int             `json:"quantity"`
	Amount       float64         `json:"amount"`
	ListPrice    *float64        `json:"list_price,omitempty"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Source       string          `json:"source,omitempty"`
	NeedsReview  bool            `json:"needs_review"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	RawPayload   json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Discounted reports whether the paid amount differs from list price.
func (p *Purchase) Discounted() bool {
	if p.ListPrice == nil {
		return false
	}
	diff := *p.ListPrice - p.Amount
	return diff > 0.01 || diff < -0.01
}

// Filter narrows purchase listings.
type Filter struct {
	Category  string
	Search    string
	PatientID string
	Days      int
	Limit     int
	Offset    int
}
