package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code raised when the
// (session_id, student_id) constraint fires.
const uniqueViolation = "23505"

// PostgresRepository persists attendance records in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordColumns = `id, session_id, student_id, status, marked_at, latitude, longitude, device_info, created_at`

// Insert writes a new record, failing with ErrDuplicate when one
// already exists for the (session, student) pair. The constraint is
// the real guarantee against concurrent double-scans.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records
			(id, session_id, student_id, status, marked_at, latitude, longitude, device_info)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.MarkedAt, rec.Latitude, rec.Longitude, rec.DeviceInfo)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Record{}, ErrDuplicate
		}
		return Record{}, err
	}
	return rec, nil
}

// Upsert writes a record, replacing status and marked_at on conflict.
// This is the manual-override conflict policy; self-scans go through
// Insert.
func (r *PostgresRepository) Upsert(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records
			(id, session_id, student_id, status, marked_at, latitude, longitude, device_info)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT ON CONSTRAINT attendance_session_student_uniq DO UPDATE
			SET status = EXCLUDED.status, marked_at = EXCLUDED.marked_at
		RETURNING `+recordColumns+`
	`, rec.ID, rec.SessionID, rec.StudentID, rec.Status, rec.MarkedAt, rec.Latitude, rec.Longitude, rec.DeviceInfo)
	return scanRecord(row)
}

// ByID returns a single record.
func (r *PostgresRepository) ByID(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE id = $1`, id)
	return scanRecord(row)
}

// BySessionAndStudent returns the record for a (session, student)
// pair, or ErrNotFound.
func (r *PostgresRepository) BySessionAndStudent(ctx context.Context, sessionID, studentID string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`, sessionID, studentID)
	return scanRecord(row)
}

// BySession returns all records for one session.
func (r *PostgresRepository) BySession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByStudent returns a page of a student's records, newest first,
// optionally filtered by subject.
func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID string, f ListFilter) ([]Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + prefixedRecordColumns("r") + `
		FROM attendance_records r
		JOIN lecture_sessions s ON s.id = r.session_id
		WHERE r.student_id = $1`
	args := []any{studentID}
	if f.SubjectCode != "" {
		query += fmt.Sprintf(" AND s.subject_code = $%d", len(args)+1)
		args = append(args, f.SubjectCode)
	}
	query += fmt.Sprintf(" ORDER BY r.marked_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// AllByStudent returns every record for a student, for summaries.
func (r *PostgresRepository) AllByStudent(ctx context.Context, studentID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// UpdateStatus changes a record's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records SET status = $2 WHERE id = $1
		RETURNING `+recordColumns+`
	`, id, status)
	return scanRecord(row)
}

// Delete removes a record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func prefixedRecordColumns(alias string) string {
	return alias + ".id, " + alias + ".session_id, " + alias + ".student_id, " + alias + ".status, " +
		alias + ".marked_at, " + alias + ".latitude, " + alias + ".longitude, " + alias + ".device_info, " + alias + ".created_at"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Status, &rec.MarkedAt,
		&rec.Latitude, &rec.Longitude, &rec.DeviceInfo, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
