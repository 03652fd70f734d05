package patients

import "time"

type Patient struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Gender       string     `json:"gender,omitempty"`
	Address      string     `json:"address,omitempty"`
	GHLContactID string     `json:"ghl_contact_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Name returns the patient's display name.
func (p Patient) Name() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// MergePreview describes what a merge would do before it is confirmed.
type MergePreview struct {
	Primary       MergeCandidate `json:"primary"`
	Duplicate     MergeCandidate `json:"duplicate"`
	RecordsToMove map[string]int `json:"records_to_move"`
	TotalRecords  int            `json:"total_records"`
}

// MergeCandidate is the identifying slice of a patient shown in the preview.
type MergeCandidate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	GHLContactID string    `json:"ghl_contact_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MergeResult reports a completed merge.
type MergeResult struct {
	PrimaryID     string         `json:"primary_id"`
	DeletedID     string         `json:"deleted_id"`
	RecordsMoved  map[string]int `json:"records_moved"`
	FieldsUpdated []string       `json:"fields_updated"`
}
