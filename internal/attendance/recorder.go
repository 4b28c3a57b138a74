package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

// Recorder writes attendance records. The self-scan path rejects
// duplicates; the manual teacher path upserts. The two conflict
// policies are deliberately different and must stay separate.
type Recorder struct {
	records Repository
}

// NewRecorder creates a recorder.
func NewRecorder(records Repository) *Recorder {
	return &Recorder{records: records}
}

// Classify applies the late rule against the session's scheduled
// start. Strictly more than LateThreshold after lecture start is
// late; exactly on the threshold is present.
func Classify(sess session.LectureSession, observedAt time.Time) (Status, error) {
	start, err := sess.LectureStart()
	if err != nil {
		return "", err
	}
	if observedAt.Sub(start) > LateThreshold {
		return StatusLate, nil
	}
	return StatusPresent, nil
}

// Record persists a validated self-scan. A unique-violation from the
// store means a concurrent scan won the race; it is translated into
// an AlreadyMarked rejection carrying the winning record, never a raw
// storage error.
func (r *Recorder) Record(ctx context.Context, sess session.LectureSession, student identity.StudentProfile, observedAt time.Time, lat, lng *float64, deviceInfo string) (Record, error) {
	status, err := Classify(sess, observedAt)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		StudentID:  student.ID,
		Status:     status,
		MarkedAt:   observedAt,
		Latitude:   lat,
		Longitude:  lng,
		DeviceInfo: deviceInfo,
	}

	inserted, err := r.records.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			rej := &RejectionError{Reason: ReasonAlreadyMarked}
			if existing, lookupErr := r.records.BySessionAndStudent(ctx, sess.ID, student.ID); lookupErr == nil {
				rej.Existing = &existing
			}
			return Record{}, rej
		}
		return Record{}, fmt.Errorf("attendance: insert: %w", err)
	}
	return inserted, nil
}

// MarkManually writes or overwrites a record on teacher authority,
// bypassing eligibility entirely. Calling it twice leaves exactly one
// record reflecting the latest status.
func (r *Recorder) MarkManually(ctx context.Context, sessionID, studentID string, status Status) (Record, error) {
	if !status.Valid() {
		return Record{}, fmt.Errorf("attendance: invalid status %q", status)
	}
	rec := Record{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
		MarkedAt:  time.Now().UTC(),
	}
	return r.records.Upsert(ctx, rec)
}
