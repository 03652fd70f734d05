package pos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const serviceColumns = `id, name, category, price, recurring, interval, active, sort_order, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns active services ordered for the POS screen.
func (r *Repository) ListActive(ctx context.Context) ([]Service, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM pos_services WHERE active = true ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("pos: list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		var interval sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Recurring,
			&interval, &s.Active, &s.SortOrder, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("pos: scan service: %w", err)
		}
		s.Interval = interval.String
		services = append(services, s)
	}
	return services, rows.Err()
}

// DeactivateAll marks every existing service inactive ahead of a reseed.
func (r *Repository) DeactivateAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE pos_services SET active = false`); err != nil {
		return fmt.Errorf("pos: deactivate services: %w", err)
	}
	return nil
}

// Insert adds one service row. A missing ID is generated.
func (r *Repository) Insert(ctx context.Context, s Service) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	var interval any
	if s.Interval != "" {
		interval = s.Interval
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pos_services (id, name, category, price, recurring, interval, active, sort_order) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Category, s.Price, s.Recurring, interval, s.Active, s.SortOrder)
	if err != nil {
		return fmt.Errorf("pos: insert service %q: %w", s.Name, err)
	}
	return nil
}
