package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresRepository persists identity data in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AccountByEmail looks up a login identity by email.
func (r *PostgresRepository) AccountByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts WHERE email = $1
	`, email)
	return scanAccount(row)
}

// AccountByID looks up a login identity by id.
func (r *PostgresRepository) AccountByID(ctx context.Context, id string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts WHERE id = $1
	`, id)
	return scanAccount(row)
}

// CreateAccount inserts a new account. The password hash must already be set.
func (r *PostgresRepository) CreateAccount(ctx context.Context, acct Account) (Account, error) {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	if !acct.Role.Valid() {
		return Account{}, fmt.Errorf("identity: invalid role %q", acct.Role)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, acct.ID, acct.Name, acct.Email, acct.PasswordHash, acct.Role)
	if err := row.Scan(&acct.CreatedAt); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// StudentByAccount returns the student profile owned by an account.
func (r *PostgresRepository) StudentByAccount(ctx context.Context, accountID string) (StudentProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.account_id, p.branch_id, p.roll, p.semester, p.section, a.name
		FROM student_profiles p JOIN accounts a ON a.id = p.account_id
		WHERE p.account_id = $1
	`, accountID)
	return scanStudent(row)
}

// StudentByID returns a student profile by its own id.
func (r *PostgresRepository) StudentByID(ctx context.Context, id string) (StudentProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.account_id, p.branch_id, p.roll, p.semester, p.section, a.name
		FROM student_profiles p JOIN accounts a ON a.id = p.account_id
		WHERE p.id = $1
	`, id)
	return scanStudent(row)
}

// TeacherByAccount returns the teacher profile owned by an account.
func (r *PostgresRepository) TeacherByAccount(ctx context.Context, accountID string) (TeacherProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.account_id, p.branch_id, p.department, a.name
		FROM teacher_profiles p JOIN accounts a ON a.id = p.account_id
		WHERE p.account_id = $1
	`, accountID)
	return scanTeacher(row)
}

// TeacherByID returns a teacher profile by its own id.
func (r *PostgresRepository) TeacherByID(ctx context.Context, id string) (TeacherProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.account_id, p.branch_id, p.department, a.name
		FROM teacher_profiles p JOIN accounts a ON a.id = p.account_id
		WHERE p.id = $1
	`, id)
	return scanTeacher(row)
}

// BranchByID returns a branch by id.
func (r *PostgresRepository) BranchByID(ctx context.Context, id string) (Branch, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, code, name FROM branches WHERE id = $1`, id)
	var b Branch
	if err := row.Scan(&b.ID, &b.Code, &b.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Branch{}, ErrNotFound
		}
		return Branch{}, err
	}
	return b, nil
}

// StudentsByCohort lists all students in a (branch, semester, section)
// cohort ordered by roll number, for roster building.
func (r *PostgresRepository) StudentsByCohort(ctx context.Context, branchID string, semester int, section string) ([]StudentProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.account_id, p.branch_id, p.roll, p.semester, p.section, a.name
		FROM student_profiles p JOIN accounts a ON a.id = p.account_id
		WHERE p.branch_id = $1 AND p.semester = $2 AND p.section = $3
		ORDER BY p.roll
	`, branchID, semester, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []StudentProfile
	for rows.Next() {
		var s StudentProfile
		if err := rows.Scan(&s.ID, &s.AccountID, &s.BranchID, &s.Roll, &s.Semester, &s.Section, &s.Name); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// CountStudentsByCohort counts the students a session for this
// cohort applies to.
func (r *PostgresRepository) CountStudentsByCohort(ctx context.Context, branchID string, semester int, section string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM student_profiles
		WHERE branch_id = $1 AND semester = $2 AND section = $3
	`, branchID, semester, section).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func scanStudent(row rowScanner) (StudentProfile, error) {
	var s StudentProfile
	if err := row.Scan(&s.ID, &s.AccountID, &s.BranchID, &s.Roll, &s.Semester, &s.Section, &s.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudentProfile{}, ErrNotFound
		}
		return StudentProfile{}, err
	}
	return s, nil
}

func scanTeacher(row rowScanner) (TeacherProfile, error) {
	var t TeacherProfile
	if err := row.Scan(&t.ID, &t.AccountID, &t.BranchID, &t.Department, &t.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TeacherProfile{}, ErrNotFound
		}
		return TeacherProfile{}, err
	}
	return t, nil
}
