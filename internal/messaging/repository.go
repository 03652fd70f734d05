package messaging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const messageColumns = `id, patient_id, ghl_contact_id, direction, kind, body, status, provider_message_id, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record persists one sent or received message.
func (r *Repository) Record(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, nullable(m.PatientID), nullable(m.GHLContactID), m.Direction,
		nullable(m.Kind), m.Body, m.Status, nullable(m.ProviderMessageID), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("messaging: record: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's recorded messages, newest first.
func (r *Repository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2`,
		patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("messaging: list: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		var patID, contactID, kind, providerID sql.NullString
		if err := rows.Scan(&m.ID, &patID, &contactID, &m.Direction, &kind,
			&m.Body, &m.Status, &providerID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("messaging: list scan: %w", err)
		}
		m.PatientID = patID.String
		m.GHLContactID = contactID.String
		m.Kind = kind.String
		m.ProviderMessageID = providerID.String
		out = append(out, &m)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
