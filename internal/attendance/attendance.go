package attendance

import (
	"context"
	"errors"
	"time"
)

// LateThreshold is the grace period after lecture start before a scan
// is classified late. Exactly on the threshold counts as present; the
// comparison is strictly greater-than. Policy constant, not per-session.
const LateThreshold = 15 * time.Minute

// Status classifies an attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	// StatusAbsent is only ever written through the manual override
	// path; self-scans never produce it.
	StatusAbsent Status = "absent"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// Record is one student's attendance against one session. The
// (session, student) pair is unique; the storage layer enforces it.
type Record struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	StudentID  string    `json:"student_id"`
	Status     Status    `json:"status"`
	MarkedAt   time.Time `json:"marked_at"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	DeviceInfo string    `json:"device_info,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("attendance: record not found")
	// ErrDuplicate is returned by Insert when the (session, student)
	// uniqueness constraint fires. The recorder translates it into an
	// AlreadyMarked rejection; it must never surface as a raw storage
	// error.
	ErrDuplicate = errors.New("attendance: record already exists")
)

// ListFilter narrows a student's attendance history.
type ListFilter struct {
	SubjectCode string
	Limit       int
	Offset      int
}

// Repository persists attendance records.
type Repository interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Upsert(ctx context.Context, rec Record) (Record, error)
	ByID(ctx context.Context, id string) (Record, error)
	BySessionAndStudent(ctx context.Context, sessionID, studentID string) (Record, error)
	BySession(ctx context.Context, sessionID string) ([]Record, error)
	ListByStudent(ctx context.Context, studentID string, f ListFilter) ([]Record, error)
	AllByStudent(ctx context.Context, studentID string) ([]Record, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Record, error)
	Delete(ctx context.Context, id string) error
}
