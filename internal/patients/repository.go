package patients

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const patientColumns = `id, first_name, last_name, email, phone, date_of_birth, gender, address, ghl_contact_id, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*Patient, error) {
	var p Patient
	var dob sql.NullTime
	var gender, address, ghl sql.NullString
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&dob, &gender, &address, &ghl, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		d := dob.Time
		p.DateOfBirth = &d
	}
	p.Gender = gender.String
	p.Address = address.String
	p.GHLContactID = ghl.String
	return &p, nil
}

// List returns patients matching the search term against name, email, or
// phone, most recently updated first. An empty search returns everyone.
func (r *Repository) List(ctx context.Context, search string, limit int) ([]Patient, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE $1 = ''
		   OR first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		   OR phone LIKE '%' || $1 || '%'
		ORDER BY updated_at DESC
		LIMIT $2`, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if out == nil {
		out = []Patient{}
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Patient, error) {
	p, err := scanPatient(r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) Create(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (id, first_name, last_name, email, phone, date_of_birth, gender, address, ghl_contact_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.DateOfBirth, nullable(p.Gender), nullable(p.Address), nullable(p.GHLContactID), now)
	return err
}

func (r *Repository) Update(ctx context.Context, p *Patient) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET first_name=$2, last_name=$3, email=$4, phone=$5, date_of_birth=$6,
		    gender=$7, address=$8, ghl_contact_id=$9, updated_at=$10
		WHERE id=$1`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth,
		nullable(p.Gender), nullable(p.Address), nullable(p.GHLContactID), now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// childTables are the tables whose rows follow a patient through a merge.
var childTables = []string{"protocols", "purchases", "messages"}

// CountChildRows counts rows in each child table owned by the given patient.
// Tables with no rows are omitted from the map.
func (r *Repository) CountChildRows(ctx context.Context, patientID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range childTables {
		var n int
		err := r.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE patient_id = $1`, table),
			patientID).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("patients: count %s: %w", table, err)
		}
		if n > 0 {
			counts[table] = n
		}
	}
	return counts, nil
}

// Merge re-points every child row of duplicateID at primaryID, backfills
// fields the primary is missing from the duplicate, and deletes the duplicate
// record. Runs in a single transaction so a failure leaves both patients
// intact.
func (r *Repository) Merge(ctx context.Context, primary, duplicate *Patient) (*MergeResult, error) {
	counts, err := r.CountChildRows(ctx, duplicate.ID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("patients: begin merge: %w", err)
	}
	defer tx.Rollback()

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET patient_id = $1 WHERE patient_id = $2`, table),
			primary.ID, duplicate.ID); err != nil {
			return nil, fmt.Errorf("patients: move %s rows: %w", table, err)
		}
	}

	fields := backfillFields(primary, duplicate)
	if len(fields) > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE patients
			SET first_name=$2, last_name=$3, email=$4, phone=$5, date_of_birth=$6,
			    gender=$7, address=$8, ghl_contact_id=$9, updated_at=$10
			WHERE id=$1`,
			primary.ID, primary.FirstName, primary.LastName, primary.Email, primary.Phone,
			primary.DateOfBirth, nullable(primary.Gender), nullable(primary.Address),
			nullable(primary.GHLContactID), time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("patients: backfill primary: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, duplicate.ID); err != nil {
		return nil, fmt.Errorf("patients: delete duplicate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("patients: commit merge: %w", err)
	}

	return &MergeResult{
		PrimaryID:     primary.ID,
		DeletedID:     duplicate.ID,
		RecordsMoved:  counts,
		FieldsUpdated: fields,
	}, nil
}

// backfillFields copies values the primary is missing from the duplicate,
// mutating primary in place, and returns the names of the fields it set.
func backfillFields(primary, duplicate *Patient) []string {
	var fields []string
	if primary.GHLContactID == "" && duplicate.GHLContactID != "" {
		primary.GHLContactID = duplicate.GHLContactID
		fields = append(fields, "ghl_contact_id")
	}
	if primary.FirstName == "" && duplicate.FirstName != "" {
		primary.FirstName = duplicate.FirstName
		fields = append(fields, "first_name")
	}
	if primary.LastName == "" && duplicate.LastName != "" {
		primary.LastName = duplicate.LastName
		fields = append(fields, "last_name")
	}
	if primary.Email == "" && duplicate.Email != "" {
		primary.Email = duplicate.Email
		fields = append(fields, "email")
	}
	if primary.Phone == "" && duplicate.Phone != "" {
		primary.Phone = duplicate.Phone
		fields = append(fields, "phone")
	}
	if primary.DateOfBirth == nil && duplicate.DateOfBirth != nil {
		primary.DateOfBirth = duplicate.DateOfBirth
		fields = append(fields, "date_of_birth")
	}
	if primary.Gender == "" && duplicate.Gender != "" {
		primary.Gender = duplicate.Gender
		fields = append(fields, "gender")
	}
	if primary.Address == "" && duplicate.Address != "" {
		primary.Address = duplicate.Address
		fields = append(fields, "address")
	}
	sort.Strings(fields)
	return fields
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
