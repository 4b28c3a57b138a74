package attendance

import "fmt"

// Reason is a machine-readable rejection code, stable across releases
// so clients can render specific messages.
type Reason string

const (
	ReasonMalformedPayload       Reason = "malformed_payload"
	ReasonSessionExpired         Reason = "session_expired"
	ReasonSessionNotFound        Reason = "session_not_found"
	ReasonStudentProfileNotFound Reason = "student_profile_not_found"
	ReasonBranchMismatch         Reason = "branch_mismatch"
	ReasonSemesterMismatch       Reason = "semester_mismatch"
	ReasonSectionMismatch        Reason = "section_mismatch"
	ReasonAlreadyMarked          Reason = "already_marked"
)

// RejectionError is an expected, user-facing scan rejection. For
// AlreadyMarked it carries the existing record so the caller can show
// when attendance was originally taken.
type RejectionError struct {
	Reason   Reason
	Existing *Record
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("attendance: scan rejected: %s", e.Reason)
}

// Reject builds a rejection for a reason.
func Reject(reason Reason) *RejectionError {
	return &RejectionError{Reason: reason}
}
