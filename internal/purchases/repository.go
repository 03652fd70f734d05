package purchases

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const purchaseColumns = `id, patient_id, patient_name, patient_email, ghl_contact_id, item_name, category, quantity, amount, list_price, purchase_date, source, needs_review, reviewed_at, raw_payload, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanPurchase(row interface{ Scan(...any) error }) (*Purchase, error) {
	var p Purchase
	var patientID, patientName, patientEmail, ghlContactID, category, source sql.NullString
	var listPrice sql.NullFloat64
	var reviewedAt sql.NullTime
	var rawPayload []byte
	err := row.Scan(&p.ID, &patientID, &patientName, &patientEmail, &ghlContactID,
		&p.ItemName, &category, &p.Quantity, &p.Amount, &listPrice,
		&p.PurchaseDate, &source, &p.NeedsReview, &reviewedAt, &rawPayload, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.PatientID = patientID.String
	p.PatientName = patientName.String
	p.PatientEmail = patientEmail.String
	p.GHLContactID = ghlContactID.String
	p.Category = category.String
	p.Source = source.String
	if listPrice.Valid {
		v := listPrice.Float64
		p.ListPrice = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	p.RawPayload = rawPayload
	return &p, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Purchase, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	p, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("purchases: get: %w", err)
	}
	return p, nil
}

// List returns filtered purchases newest first, plus the summed revenue of
// the returned page.
func (r *Repository) List(ctx context.Context, f Filter) ([]*Purchase, float64, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 200
	}

	query := `SELECT ` + purchaseColumns + ` FROM purchases`
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" && f.Category != "All" {
		conds = append(conds, `category = `+arg(f.Category))
	}
	if f.PatientID != "" {
		conds = append(conds, `patient_id = `+arg(f.PatientID))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, `(patient_name ILIKE `+arg(pattern)+
			` OR item_name ILIKE `+arg(pattern)+
			` OR patient_email ILIKE `+arg(pattern)+`)`)
	}
	if f.Days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -f.Days)
		conds = append(conds, `purchase_date >= `+arg(cutoff))
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += fmt.Sprintf(` ORDER BY purchase_date DESC LIMIT %d OFFSET %d`, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("purchases: list: %w", err)
	}
	defer rows.Close()

	var out []*Purchase
	var revenue float64
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("purchases: list scan: %w", err)
		}
		out = append(out, p)
		revenue += p.Amount
	}
	return out, revenue, rows.Err()
}

// ReviewQueue returns unreviewed purchases, oldest first so staff work
// through the backlog in order.
func (r *Repository) ReviewQueue(ctx context.Context) ([]*Purchase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE needs_review = true ORDER BY purchase_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("purchases: review queue: %w", err)
	}
	defer rows.Close()

	var out []*Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("purchases: review queue scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Approve links the purchase to a patient and clears it from the review
// queue.
func (r *Repository) Approve(ctx context.Context, id, patientID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET patient_id = $1, needs_review = false, reviewed_at = $2 WHERE id = $3`,
		patientID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("purchases: approve: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Dismiss clears a purchase from the review queue without linking it.
func (r *Repository) Dismiss(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET needs_review = false, reviewed_at = $1 WHERE id = $2`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("purchases: dismiss: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateAmount corrects the paid amount after review against list price.
func (r *Repository) UpdateAmount(ctx context.Context, id string, amount float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET amount = $1 WHERE id = $2`, amount, id)
	if err != nil {
		return fmt.Errorf("purchases: update amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TotalsByPatient sums purchase count and spend for one patient, used by
// the portal.
func (r *Repository) TotalsByPatient(ctx context.Context, patientID string) (int, float64, error) {
	var count int
	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM purchases WHERE patient_id = $1`,
		patientID).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("purchases: totals: %w", err)
	}
	return count, total.Float64, nil
}
