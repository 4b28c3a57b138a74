package identity

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository is a map-backed identity store for development
// and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
	students map[string]StudentProfile
	teachers map[string]TeacherProfile
	branches map[string]Branch
}

// NewInMemoryRepository creates an empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[string]Account),
		students: make(map[string]StudentProfile),
		teachers: make(map[string]TeacherProfile),
		branches: make(map[string]Branch),
	}
}

// AccountByEmail looks up a login identity by email.
func (r *InMemoryRepository) AccountByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

// AccountByID looks up a login identity by id.
func (r *InMemoryRepository) AccountByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return Account{}, ErrNotFound
}

// CreateAccount inserts a new account.
func (r *InMemoryRepository) CreateAccount(_ context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	r.accounts[acct.ID] = acct
	return acct, nil
}

// AddStudent stores a student profile (and is how tests seed cohorts).
func (r *InMemoryRepository) AddStudent(p StudentProfile) StudentProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Section == "" {
		p.Section = "A"
	}
	r.students[p.ID] = p
	return p
}

// AddTeacher stores a teacher profile.
func (r *InMemoryRepository) AddTeacher(p TeacherProfile) TeacherProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.teachers[p.ID] = p
	return p
}

// AddBranch stores a branch.
func (r *InMemoryRepository) AddBranch(b Branch) Branch {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	r.branches[b.ID] = b
	return b
}

// StudentByAccount returns the student profile owned by an account.
func (r *InMemoryRepository) StudentByAccount(_ context.Context, accountID string) (StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.students {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return StudentProfile{}, ErrNotFound
}

// StudentByID returns a student profile by id.
func (r *InMemoryRepository) StudentByID(_ context.Context, id string) (StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.students[id]; ok {
		return p, nil
	}
	return StudentProfile{}, ErrNotFound
}

// TeacherByAccount returns the teacher profile owned by an account.
func (r *InMemoryRepository) TeacherByAccount(_ context.Context, accountID string) (TeacherProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.teachers {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return TeacherProfile{}, ErrNotFound
}

// TeacherByID returns a teacher profile by id.
func (r *InMemoryRepository) TeacherByID(_ context.Context, id string) (TeacherProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.teachers[id]; ok {
		return p, nil
	}
	return TeacherProfile{}, ErrNotFound
}

// BranchByID returns a branch by id.
func (r *InMemoryRepository) BranchByID(_ context.Context, id string) (Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.branches[id]; ok {
		return b, nil
	}
	return Branch{}, ErrNotFound
}

// CountStudentsByCohort counts a cohort's students.
func (r *InMemoryRepository) CountStudentsByCohort(_ context.Context, branchID string, semester int, section string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.students {
		if p.BranchID == branchID && p.Semester == semester && p.Section == section {
			n++
		}
	}
	return n, nil
}

// StudentsByCohort lists a cohort ordered by roll.
func (r *InMemoryRepository) StudentsByCohort(_ context.Context, branchID string, semester int, section string) ([]StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []StudentProfile
	for _, p := range r.students {
		if p.BranchID == branchID && p.Semester == semester && p.Section == section {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Roll < out[j].Roll })
	return out, nil
}
