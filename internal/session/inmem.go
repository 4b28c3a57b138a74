package session

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is a map-backed session store for development
// and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]LectureSession
	byToken  map[string]string
	ordering []string
}

// NewInMemoryRepository creates an empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]LectureSession),
		byToken: make(map[string]string),
	}
}

// Create inserts a new session.
func (r *InMemoryRepository) Create(_ context.Context, s LectureSession) (LectureSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
	r.byToken[s.Token] = s.ID
	r.ordering = append(r.ordering, s.ID)
	return s, nil
}

// ByToken fetches a session by token.
func (r *InMemoryRepository) ByToken(_ context.Context, token string) (LectureSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[token]
	if !ok {
		return LectureSession{}, ErrNotFound
	}
	return r.byID[id], nil
}

// ByID fetches a session by id.
func (r *InMemoryRepository) ByID(_ context.Context, id string) (LectureSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return LectureSession{}, ErrNotFound
	}
	return s, nil
}

// ListByTeacher returns a teacher's sessions, newest first.
func (r *InMemoryRepository) ListByTeacher(_ context.Context, teacherID string, f ListFilter) ([]LectureSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []LectureSession
	for _, id := range r.ordering {
		s := r.byID[id]
		if s.TeacherID != teacherID {
			continue
		}
		if f.Date != nil {
			y1, m1, d1 := f.Date.Date()
			y2, m2, d2 := s.Date.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		if f.BranchID != "" && s.BranchID != f.BranchID {
			continue
		}
		if f.SubjectCode != "" && s.SubjectCode != f.SubjectCode {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	out = paginate(out, f.Limit, f.Offset)
	return out, nil
}

// ListByCohort returns sessions for a cohort in creation order.
func (r *InMemoryRepository) ListByCohort(_ context.Context, branchID string, semester int, section string) ([]LectureSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []LectureSession
	for _, id := range r.ordering {
		s := r.byID[id]
		if s.BranchID == branchID && s.Semester == semester && s.Section == section {
			out = append(out, s)
		}
	}
	return out, nil
}

// Close flips is_active to false.
func (r *InMemoryRepository) Close(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = false
	r.byID[id] = s
	return nil
}

func paginate(in []LectureSession, limit, offset int) []LectureSession {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}
