package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

// Validator decides whether a scanning student may mark attendance
// against the session named by a QR payload.
type Validator struct {
	sessions session.Repository
	identity identity.Repository
	records  Repository
	now      func() time.Time
}

// NewValidator creates a validator.
func NewValidator(sessions session.Repository, idStore identity.Repository, records Repository) *Validator {
	return &Validator{sessions: sessions, identity: idStore, records: records, now: time.Now}
}

// Validate runs the eligibility checks in order; the first failing
// check wins and no further checks run. The payload expiry is checked
// before the session lookup, then re-checked against the persisted
// session, since the payload is client-supplied and cannot be trusted
// alone. On success it returns the resolved session and student
// profile for the recorder.
func (v *Validator) Validate(ctx context.Context, rawPayload []byte, studentAccountID string) (session.LectureSession, identity.StudentProfile, error) {
	var (
		sess    session.LectureSession
		student identity.StudentProfile
	)

	payload, err := session.DecodePayload(rawPayload)
	if err != nil {
		return sess, student, Reject(ReasonMalformedPayload)
	}

	now := v.now()
	if !now.Before(payload.ExpiresAt) {
		return sess, student, Reject(ReasonSessionExpired)
	}

	sess, err = v.sessions.ByToken(ctx, payload.Token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return sess, student, Reject(ReasonSessionNotFound)
		}
		return sess, student, err
	}
	if !sess.IsActive {
		return sess, student, Reject(ReasonSessionNotFound)
	}
	if sess.ExpiredAt(now) {
		return sess, student, Reject(ReasonSessionExpired)
	}

	student, err = v.identity.StudentByAccount(ctx, studentAccountID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return sess, student, Reject(ReasonStudentProfileNotFound)
		}
		return sess, student, err
	}

	if student.BranchID != sess.BranchID {
		return sess, student, Reject(ReasonBranchMismatch)
	}
	if student.Semester != sess.Semester {
		return sess, student, Reject(ReasonSemesterMismatch)
	}
	if student.Section != sess.Section {
		return sess, student, Reject(ReasonSectionMismatch)
	}

	existing, err := v.records.BySessionAndStudent(ctx, sess.ID, student.ID)
	if err == nil {
		return sess, student, &RejectionError{Reason: ReasonAlreadyMarked, Existing: &existing}
	}
	if !errors.Is(err, ErrNotFound) {
		return sess, student, err
	}

	return sess, student, nil
}
