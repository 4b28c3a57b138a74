package attendance

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is a map-backed attendance store for development
// and tests. It enforces the same (session, student) uniqueness the
// Postgres constraint does, so race behavior is observable without a
// database.
type InMemoryRepository struct {
	mu     sync.Mutex
	byID   map[string]Record
	byPair map[[2]string]string
	// subjects maps session id to subject code for history filters.
	subjects map[string]string
}

// NewInMemoryRepository creates an empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:     make(map[string]Record),
		byPair:   make(map[[2]string]string),
		subjects: make(map[string]string),
	}
}

// SetSubject registers a session's subject code for ListByStudent
// filtering.
func (r *InMemoryRepository) SetSubject(sessionID, subjectCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects[sessionID] = subjectCode
}

// Insert writes a new record, failing with ErrDuplicate on a
// (session, student) collision.
func (r *InMemoryRepository) Insert(_ context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{rec.SessionID, rec.StudentID}
	if _, exists := r.byPair[key]; exists {
		return Record{}, ErrDuplicate
	}
	rec.CreatedAt = rec.MarkedAt
	r.byID[rec.ID] = rec
	r.byPair[key] = rec.ID
	return rec, nil
}

// Upsert writes a record, replacing status and marked_at on conflict.
func (r *InMemoryRepository) Upsert(_ context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{rec.SessionID, rec.StudentID}
	if id, exists := r.byPair[key]; exists {
		existing := r.byID[id]
		existing.Status = rec.Status
		existing.MarkedAt = rec.MarkedAt
		r.byID[id] = existing
		return existing, nil
	}
	rec.CreatedAt = rec.MarkedAt
	r.byID[rec.ID] = rec
	r.byPair[key] = rec.ID
	return rec, nil
}

// ByID returns a record by id.
func (r *InMemoryRepository) ByID(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// BySessionAndStudent returns the record for a pair, or ErrNotFound.
func (r *InMemoryRepository) BySessionAndStudent(_ context.Context, sessionID, studentID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPair[[2]string{sessionID, studentID}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r.byID[id], nil
}

// BySession returns all records for one session.
func (r *InMemoryRepository) BySession(_ context.Context, sessionID string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Record
	for _, rec := range r.byID {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListByStudent returns a page of a student's records, newest first.
func (r *InMemoryRepository) ListByStudent(_ context.Context, studentID string, f ListFilter) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Record
	for _, rec := range r.byID {
		if rec.StudentID != studentID {
			continue
		}
		if f.SubjectCode != "" && r.subjects[rec.SessionID] != f.SubjectCode {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarkedAt.After(out[j].MarkedAt) })

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AllByStudent returns every record for a student.
func (r *InMemoryRepository) AllByStudent(_ context.Context, studentID string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Record
	for _, rec := range r.byID {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// UpdateStatus changes a record's status.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Status = status
	r.byID[id] = rec
	return rec, nil
}

// Delete removes a record.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byPair, [2]string{rec.SessionID, rec.StudentID})
	return nil
}
