package identity

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("identity: not found")

// Role is the closed set of account roles. Authorization decisions
// compare against these values at the API boundary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Account is a login identity with a role tag.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetPassword hashes and stores the given clear password.
func (a *Account) SetPassword(clear string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(clear), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether clear matches the stored hash.
func (a Account) CheckPassword(clear string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(clear)) == nil
}

// Branch is an academic department (master data).
type Branch struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// StudentProfile carries the cohort fields compared against a session
// during eligibility checks: branch, semester, section.
type StudentProfile struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	BranchID  string `json:"branch_id"`
	Roll      string `json:"roll"`
	Semester  int    `json:"semester"`
	Section   string `json:"section"`
	Name      string `json:"name"`
}

// TeacherProfile links an account to its teaching branch.
type TeacherProfile struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	BranchID   string `json:"branch_id"`
	Department string `json:"department"`
	Name       string `json:"name"`
}

// Repository is the identity store consumed by the session and
// attendance services. Implementations must return ErrNotFound
// (possibly wrapped) for missing rows.
type Repository interface {
	AccountByEmail(ctx context.Context, email string) (Account, error)
	AccountByID(ctx context.Context, id string) (Account, error)
	CreateAccount(ctx context.Context, acct Account) (Account, error)

	StudentByAccount(ctx context.Context, accountID string) (StudentProfile, error)
	StudentByID(ctx context.Context, id string) (StudentProfile, error)
	TeacherByAccount(ctx context.Context, accountID string) (TeacherProfile, error)
	TeacherByID(ctx context.Context, id string) (TeacherProfile, error)

	BranchByID(ctx context.Context, id string) (Branch, error)
	StudentsByCohort(ctx context.Context, branchID string, semester int, section string) ([]StudentProfile, error)
	CountStudentsByCohort(ctx context.Context, branchID string, semester int, section string) (int, error)
}
