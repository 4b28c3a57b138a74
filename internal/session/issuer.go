package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
)

// tokenBytes gives 128 bits of entropy per credential; collisions are
// negligible without querying for them.
const tokenBytes = 16

// ErrInvalidDuration is returned when a caller supplies a non-positive
// validity window.
var ErrInvalidDuration = errors.New("session: validity minutes must be positive")

// ErrTeacherNotFound is returned when the issuing account has no
// teacher profile.
var ErrTeacherNotFound = errors.New("session: teacher profile not found")

// Repository persists lecture sessions.
type Repository interface {
	Create(ctx context.Context, s LectureSession) (LectureSession, error)
	ByToken(ctx context.Context, token string) (LectureSession, error)
	ByID(ctx context.Context, id string) (LectureSession, error)
	ListByTeacher(ctx context.Context, teacherID string, f ListFilter) ([]LectureSession, error)
	ListByCohort(ctx context.Context, branchID string, semester int, section string) ([]LectureSession, error)
	Close(ctx context.Context, id string) error
}

// ErrNotFound is returned by repositories when no session matches.
var ErrNotFound = errors.New("session: not found")

// ListFilter narrows a teacher's session listing.
type ListFilter struct {
	Date        *time.Time
	BranchID    string
	SubjectCode string
	Limit       int
	Offset      int
}

// CreateInput carries everything needed to issue a session.
type CreateInput struct {
	TeacherAccountID string
	BranchID         string
	SubjectCode      string
	SubjectName      string
	Semester         int
	Section          string
	StartTime        string
	EndTime          string
	ValidityMinutes  int // 0 means DefaultValidityMinutes
}

// Issuer creates sessions and their QR credentials.
type Issuer struct {
	sessions Repository
	identity identity.Repository
	now      func() time.Time
}

// NewIssuer creates an issuer.
func NewIssuer(sessions Repository, idStore identity.Repository) *Issuer {
	return &Issuer{sessions: sessions, identity: idStore, now: time.Now}
}

// Create issues a new session for the teacher owning the given
// account and returns it together with the QR payload. No attendance
// rows are created at issuance time.
func (i *Issuer) Create(ctx context.Context, in CreateInput) (LectureSession, Payload, error) {
	validity := in.ValidityMinutes
	if validity == 0 {
		validity = DefaultValidityMinutes
	}
	if validity < 0 {
		return LectureSession{}, Payload{}, ErrInvalidDuration
	}

	teacher, err := i.identity.TeacherByAccount(ctx, in.TeacherAccountID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return LectureSession{}, Payload{}, ErrTeacherNotFound
		}
		return LectureSession{}, Payload{}, err
	}

	token, err := newToken()
	if err != nil {
		return LectureSession{}, Payload{}, err
	}

	section := in.Section
	if section == "" {
		section = "A"
	}

	now := i.now()
	sess := LectureSession{
		ID:          uuid.NewString(),
		TeacherID:   teacher.ID,
		BranchID:    in.BranchID,
		SubjectCode: in.SubjectCode,
		SubjectName: in.SubjectName,
		Semester:    in.Semester,
		Section:     section,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Date:        now,
		Token:       token,
		ExpiresAt:   now.Add(time.Duration(validity) * time.Minute),
		IsActive:    true,
	}

	sess, err = i.sessions.Create(ctx, sess)
	if err != nil {
		return LectureSession{}, Payload{}, fmt.Errorf("session: create: %w", err)
	}

	payload := Payload{
		Token:       sess.Token,
		TeacherID:   sess.TeacherID,
		BranchID:    sess.BranchID,
		SubjectCode: sess.SubjectCode,
		Semester:    sess.Semester,
		Section:     sess.Section,
		IssuedAt:    now,
		ExpiresAt:   sess.ExpiresAt,
	}
	return sess, payload, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: token entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
