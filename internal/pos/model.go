package pos

import "time"

// Service is one sellable line item on the POS screen. Price is in cents.
type Service struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Recurring bool      `json:"recurring"`
	Interval  string    `json:"interval,omitempty"`
	Active    bool      `json:"active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
