package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepository persists lecture sessions in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, teacher_id, branch_id, subject_code, subject_name, semester, section,
	start_time, end_time, session_date, token, expires_at, is_active, created_at`

// Create inserts a new session.
func (r *PostgresRepository) Create(ctx context.Context, s LectureSession) (LectureSession, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO lecture_sessions
			(id, teacher_id, branch_id, subject_code, subject_name, semester, section,
			 start_time, end_time, session_date, token, expires_at, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at
	`, s.ID, s.TeacherID, s.BranchID, s.SubjectCode, s.SubjectName, s.Semester, s.Section,
		s.StartTime, s.EndTime, s.Date, s.Token, s.ExpiresAt, s.IsActive)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return LectureSession{}, err
	}
	return s, nil
}

// ByToken fetches a session by its QR credential token.
func (r *PostgresRepository) ByToken(ctx context.Context, token string) (LectureSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM lecture_sessions WHERE token = $1`, token)
	return scanSession(row)
}

// ByID fetches a session by id.
func (r *PostgresRepository) ByID(ctx context.Context, id string) (LectureSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM lecture_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// ListByTeacher returns a teacher's sessions, newest first, with
// optional date/branch/subject filters.
func (r *PostgresRepository) ListByTeacher(ctx context.Context, teacherID string, f ListFilter) ([]LectureSession, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + sessionColumns + ` FROM lecture_sessions WHERE teacher_id = $1`
	args := []any{teacherID}
	if f.Date != nil {
		query += fmt.Sprintf(" AND session_date::date = $%d::date", len(args)+1)
		args = append(args, *f.Date)
	}
	if f.BranchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", len(args)+1)
		args = append(args, f.BranchID)
	}
	if f.SubjectCode != "" {
		query += fmt.Sprintf(" AND subject_code = $%d", len(args)+1)
		args = append(args, f.SubjectCode)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListByCohort returns all sessions scheduled for a cohort, for
// attendance summaries.
func (r *PostgresRepository) ListByCohort(ctx context.Context, branchID string, semester int, section string) ([]LectureSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM lecture_sessions
		WHERE branch_id = $1 AND semester = $2 AND section = $3
		ORDER BY created_at
	`, branchID, semester, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Close flips is_active to false. Closed is terminal; there is no
// reopen path.
func (r *PostgresRepository) Close(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lecture_sessions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (LectureSession, error) {
	var s LectureSession
	err := row.Scan(&s.ID, &s.TeacherID, &s.BranchID, &s.SubjectCode, &s.SubjectName,
		&s.Semester, &s.Section, &s.StartTime, &s.EndTime, &s.Date, &s.Token,
		&s.ExpiresAt, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LectureSession{}, ErrNotFound
		}
		return LectureSession{}, err
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]LectureSession, error) {
	var res []LectureSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
