package protocols

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const protocolColumns = `id, patient_id, program_name, protocol_type, medication, dose_amount, dose_frequency, route, start_date, end_date, duration_days, total_sessions, status, access_token, special_instructions, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanProtocol(row interface{ Scan(...any) error }) (*Protocol, error) {
	var p Protocol
	var medication, doseAmount, doseFrequency, route, instructions sql.NullString
	var startDate, endDate sql.NullTime
	var durationDays, totalSessions sql.NullInt64
	err := row.Scan(&p.ID, &p.PatientID, &p.ProgramName, &p.ProtocolType,
		&medication, &doseAmount, &doseFrequency, &route,
		&startDate, &endDate, &durationDays, &totalSessions,
		&p.Status, &p.AccessToken, &instructions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Medication = medication.String
	p.DoseAmount = doseAmount.String
	p.DoseFrequency = doseFrequency.String
	p.Route = route.String
	p.SpecialInstructions = instructions.String
	if startDate.Valid {
		t := startDate.Time
		p.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		p.EndDate = &t
	}
	p.DurationDays = int(durationDays.Int64)
	p.TotalSessions = int(totalSessions.Int64)
	return &p, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Protocol, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+protocolColumns+` FROM protocols WHERE id = $1`, id)
	p, err := scanProtocol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("protocols: get: %w", err)
	}
	return p, nil
}

func (r *Repository) GetByToken(ctx context.Context, token string) (*Protocol, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+protocolColumns+` FROM protocols WHERE access_token = $1`, token)
	p, err := scanProtocol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("protocols: get by token: %w", err)
	}
	return p, nil
}

// List returns protocols filtered by status ("" means all), newest first.
func (r *Repository) List(ctx context.Context, status string, limit int) ([]*Protocol, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + protocolColumns + ` FROM protocols`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("protocols: list: %w", err)
	}
	defer rows.Close()

	var out []*Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, fmt.Errorf("protocols: list scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) ListByPatient(ctx context.Context, patientID string) ([]*Protocol, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+protocolColumns+` FROM protocols WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID)
	if err != nil {
		return nil, fmt.Errorf("protocols: list by patient: %w", err)
	}
	defer rows.Close()

	var out []*Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, fmt.Errorf("protocols: list by patient scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts the protocol and, for time-bound protocols, one day record
// per day index with its derived calendar date. ID, access token, end date,
// and timestamps are filled in on the passed struct.
func (r *Repository) Create(ctx context.Context, p *Protocol) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.AccessToken == "" {
		p.AccessToken = newAccessToken()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.TimeBound() && p.StartDate != nil && p.EndDate == nil {
		end := p.StartDate.AddDate(0, 0, p.DurationDays-1)
		p.EndDate = &end
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("protocols: create begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO protocols (`+protocolColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.PatientID, p.ProgramName, p.ProtocolType,
		nullable(p.Medication), nullable(p.DoseAmount), nullable(p.DoseFrequency), nullable(p.Route),
		p.StartDate, p.EndDate, p.DurationDays, p.TotalSessions,
		p.Status, p.AccessToken, nullable(p.SpecialInstructions), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("protocols: create insert: %w", err)
	}

	if p.TimeBound() && p.StartDate != nil {
		for day := 1; day <= p.DurationDays; day++ {
			date := p.StartDate.AddDate(0, 0, day-1)
			_, err = tx.ExecContext(ctx,
				`INSERT INTO protocol_days (protocol_id, day, date, completed)
				 VALUES ($1, $2, $3, false)`,
				p.ID, day, date)
			if err != nil {
				return fmt.Errorf("protocols: create day %d: %w", day, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("protocols: create commit: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, p *Protocol) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE protocols SET program_name = $1, medication = $2, dose_amount = $3,
		 dose_frequency = $4, route = $5, special_instructions = $6, status = $7,
		 updated_at = $8 WHERE id = $9`,
		p.ProgramName, nullable(p.Medication), nullable(p.DoseAmount),
		nullable(p.DoseFrequency), nullable(p.Route), nullable(p.SpecialInstructions),
		p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("protocols: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Complete marks the protocol finished.
func (r *Repository) Complete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE protocols SET status = $1, updated_at = $2 WHERE id = $3`,
		StatusCompleted, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("protocols: complete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Days returns the protocol's day records ordered by day index.
func (r *Repository) Days(ctx context.Context, protocolID string) ([]DayRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, protocol_id, day, date, completed, completed_at, notes FROM protocol_days
		 WHERE protocol_id = $1 ORDER BY day ASC`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("protocols: days: %w", err)
	}
	defer rows.Close()

	var out []DayRecord
	for rows.Next() {
		var d DayRecord
		var completedAt sql.NullTime
		var notes sql.NullString
		if err := rows.Scan(&d.ID, &d.ProtocolID, &d.Day, &d.Date, &d.Completed, &completedAt, &notes); err != nil {
			return nil, fmt.Errorf("protocols: days scan: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			d.CompletedAt = &t
		}
		d.Notes = notes.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetDayCompleted marks or unmarks one day record. Returns sql.ErrNoRows
// when the protocol has no record for that day index.
func (r *Repository) SetDayCompleted(ctx context.Context, protocolID string, day int, completed bool, notes string) error {
	var res sql.Result
	var err error
	if completed {
		res, err = r.db.ExecContext(ctx,
			`UPDATE protocol_days SET completed = true, completed_at = $1, notes = $2
			 WHERE protocol_id = $3 AND day = $4`,
			time.Now().UTC(), nullable(notes), protocolID, day)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE protocol_days SET completed = false, completed_at = NULL, notes = NULL
			 WHERE protocol_id = $1 AND day = $2`,
			protocolID, day)
	}
	if err != nil {
		return fmt.Errorf("protocols: set day completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountCompleted returns the number of completed day records, used for
// session-based protocols.
func (r *Repository) CountCompleted(ctx context.Context, protocolID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM protocol_days WHERE protocol_id = $1 AND completed = true`,
		protocolID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("protocols: count completed: %w", err)
	}
	return n, nil
}

// LogSession records one used session for a session-based protocol and
// returns the new session index.
func (r *Repository) LogSession(ctx context.Context, protocolID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO protocol_days (protocol_id, day, date, completed, completed_at)
		 SELECT $1, COALESCE(MAX(day), 0) + 1, $2, true, $3
		 FROM protocol_days WHERE protocol_id = $1
		 RETURNING day`,
		protocolID, time.Now().UTC(), time.Now().UTC()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("protocols: log session: %w", err)
	}
	return n, nil
}

// RemoveLastSession deletes the most recent logged session.
func (r *Repository) RemoveLastSession(ctx context.Context, protocolID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM protocol_days WHERE protocol_id = $1
		 AND day = (SELECT MAX(day) FROM protocol_days WHERE protocol_id = $1)`,
		protocolID)
	if err != nil {
		return fmt.Errorf("protocols: remove session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func newAccessToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
