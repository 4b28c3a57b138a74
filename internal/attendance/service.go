package attendance

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

// Service answers roster and summary queries over attendance data.
type Service struct {
	sessions session.Repository
	identity identity.Repository
	records  Repository
}

// NewService creates a service.
func NewService(sessions session.Repository, idStore identity.Repository, records Repository) *Service {
	return &Service{sessions: sessions, identity: idStore, records: records}
}

// RosterEntry is one line of a per-session attendance roster.
type RosterEntry struct {
	StudentID string `json:"student_id"`
	Roll      string `json:"roll"`
	Name      string `json:"name"`
	Status    Status `json:"status"`
	RecordID  string `json:"record_id,omitempty"`
}

// Roster returns the full cohort for a session with each student
// classified present, late, or absent, sorted by roll number.
// Students with no record are reported absent without a stored row.
func (s *Service) Roster(ctx context.Context, sessionID string) (session.LectureSession, []RosterEntry, error) {
	sess, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return session.LectureSession{}, nil, err
	}

	students, err := s.identity.StudentsByCohort(ctx, sess.BranchID, sess.Semester, sess.Section)
	if err != nil {
		return session.LectureSession{}, nil, fmt.Errorf("attendance: cohort lookup: %w", err)
	}
	recs, err := s.records.BySession(ctx, sessionID)
	if err != nil {
		return session.LectureSession{}, nil, err
	}

	byStudent := make(map[string]Record, len(recs))
	for _, rec := range recs {
		byStudent[rec.StudentID] = rec
	}

	entries := make([]RosterEntry, 0, len(students))
	for _, st := range students {
		entry := RosterEntry{StudentID: st.ID, Roll: st.Roll, Name: st.Name, Status: StatusAbsent}
		if rec, ok := byStudent[st.ID]; ok {
			entry.Status = rec.Status
			entry.RecordID = rec.ID
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Roll < entries[j].Roll })
	return sess, entries, nil
}

// History returns a student's own attendance records, newest first.
func (s *Service) History(ctx context.Context, studentAccountID string, f ListFilter) ([]Record, error) {
	student, err := s.identity.StudentByAccount(ctx, studentAccountID)
	if err != nil {
		return nil, err
	}
	return s.records.ListByStudent(ctx, student.ID, f)
}

// SubjectSummary aggregates one subject's attendance for a student.
type SubjectSummary struct {
	SubjectCode   string `json:"subject_code"`
	SubjectName   string `json:"subject_name"`
	TotalLectures int    `json:"total_lectures"`
	Present       int    `json:"present"`
	Late          int    `json:"late"`
	Absent        int    `json:"absent"`
	Percentage    int    `json:"percentage"`
}

// Summary is a student's subject-wise and overall attendance.
type Summary struct {
	Subjects      []SubjectSummary `json:"subjects"`
	TotalLectures int              `json:"total_lectures"`
	Present       int              `json:"present"`
	Late          int              `json:"late"`
	Absent        int              `json:"absent"`
	Percentage    int              `json:"percentage"`
}

// Summarize computes attendance percentages for the student owning
// the given account. Percentage is round(100 * (present+late) / total),
// 0 when the cohort has no lectures. Sessions with no record count as
// absent.
func (s *Service) Summarize(ctx context.Context, studentAccountID string) (Summary, error) {
	student, err := s.identity.StudentByAccount(ctx, studentAccountID)
	if err != nil {
		return Summary{}, err
	}

	sessions, err := s.sessions.ListByCohort(ctx, student.BranchID, student.Semester, student.Section)
	if err != nil {
		return Summary{}, err
	}
	recs, err := s.records.AllByStudent(ctx, student.ID)
	if err != nil {
		return Summary{}, err
	}

	bySession := make(map[string]Record, len(recs))
	for _, rec := range recs {
		bySession[rec.SessionID] = rec
	}

	perSubject := make(map[string]*SubjectSummary)
	var order []string
	var summary Summary
	for _, sess := range sessions {
		sub, ok := perSubject[sess.SubjectCode]
		if !ok {
			sub = &SubjectSummary{SubjectCode: sess.SubjectCode, SubjectName: sess.SubjectName}
			perSubject[sess.SubjectCode] = sub
			order = append(order, sess.SubjectCode)
		}
		sub.TotalLectures++
		summary.TotalLectures++

		rec, marked := bySession[sess.ID]
		switch {
		case marked && rec.Status == StatusPresent:
			sub.Present++
			summary.Present++
		case marked && rec.Status == StatusLate:
			sub.Late++
			summary.Late++
		default:
			sub.Absent++
			summary.Absent++
		}
	}

	sort.Strings(order)
	for _, code := range order {
		sub := perSubject[code]
		sub.Percentage = percentage(sub.Present+sub.Late, sub.TotalLectures)
		summary.Subjects = append(summary.Subjects, *sub)
	}
	summary.Percentage = percentage(summary.Present+summary.Late, summary.TotalLectures)
	return summary, nil
}

func percentage(attended, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(attended) / float64(total)))
}

// UpdateStatus changes a record's status (teacher or admin authority).
func (s *Service) UpdateStatus(ctx context.Context, recordID string, status Status) (Record, error) {
	if !status.Valid() {
		return Record{}, fmt.Errorf("attendance: invalid status %q", status)
	}
	return s.records.UpdateStatus(ctx, recordID, status)
}

// Delete removes a record (teacher or admin authority).
func (s *Service) Delete(ctx context.Context, recordID string) error {
	return s.records.Delete(ctx, recordID)
}
