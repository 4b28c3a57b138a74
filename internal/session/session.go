package session

import (
	"fmt"
	"time"
)

// DefaultValidityMinutes is how long a QR credential stays scannable
// when the teacher does not pick a validity window. Policy constant;
// not configurable per institution yet.
const DefaultValidityMinutes = 60

// LectureSession is a single time-boxed lecture for one cohort.
// Subject code and name are snapshotted at creation so later catalog
// edits never rewrite historical sessions.
type LectureSession struct {
	ID          string    `json:"id"`
	TeacherID   string    `json:"teacher_id"`
	BranchID    string    `json:"branch_id"`
	SubjectCode string    `json:"subject_code"`
	SubjectName string    `json:"subject_name"`
	Semester    int       `json:"semester"`
	Section     string    `json:"section"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Date        time.Time `json:"date"`
	Token       string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpiredAt reports whether the QR credential has lapsed. Expiry is
// always derived from the timestamp at read time; is_active only
// tracks manual closure.
func (s LectureSession) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// UsableAt reports whether the session can still admit scans:
// not manually closed and not expired.
func (s LectureSession) UsableAt(now time.Time) bool {
	return s.IsActive && !s.ExpiredAt(now)
}

// State is the derived lifecycle state of a session.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
	StateClosed  State = "closed"
)

// StateAt derives the lifecycle state. Closed is terminal and wins
// over expiry.
func (s LectureSession) StateAt(now time.Time) State {
	if !s.IsActive {
		return StateClosed
	}
	if s.ExpiredAt(now) {
		return StateExpired
	}
	return StateActive
}

// LectureStart combines the session date with the scheduled start
// time-of-day, in the session date's location.
func (s LectureSession) LectureStart() (time.Time, error) {
	tod, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("session: bad start time %q: %w", s.StartTime, err)
	}
	d := s.Date
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, d.Location()), nil
}
