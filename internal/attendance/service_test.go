package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

func TestRosterBackfillsAbsentAndSortsByRoll(t *testing.T) {
	idStore := identity.NewInMemoryRepository()
	sessions := session.NewInMemoryRepository()
	records := NewInMemoryRepository()
	svc := NewService(sessions, idStore, records)

	sess := testSession()
	_, err := sessions.Create(context.Background(), sess)
	assert.NoError(t, err)

	// seeded out of roll order on purpose
	idStore.AddStudent(identity.StudentProfile{AccountID: "a3", Roll: "21CS003", BranchID: "b-1", Semester: 5, Section: "A", Name: "Charu"})
	s1 := idStore.AddStudent(identity.StudentProfile{AccountID: "a1", Roll: "21CS001", BranchID: "b-1", Semester: 5, Section: "A", Name: "Asha"})
	s2 := idStore.AddStudent(identity.StudentProfile{AccountID: "a2", Roll: "21CS002", BranchID: "b-1", Semester: 5, Section: "A", Name: "Bala"})
	// different cohort, must not appear
	idStore.AddStudent(identity.StudentProfile{AccountID: "a9", Roll: "21ME001", BranchID: "b-2", Semester: 5, Section: "A"})

	rec := NewRecorder(records)
	_, err = rec.Record(context.Background(), sess, s1, sess.Date.Add(time.Minute), nil, nil, "")
	assert.NoError(t, err)
	_, err = rec.Record(context.Background(), sess, s2, sess.Date.Add(20*time.Minute), nil, nil, "")
	assert.NoError(t, err)

	_, entries, err := svc.Roster(context.Background(), sess.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, []string{"21CS001", "21CS002", "21CS003"}, []string{entries[0].Roll, entries[1].Roll, entries[2].Roll})
	assert.Equal(t, StatusPresent, entries[0].Status)
	assert.Equal(t, StatusLate, entries[1].Status)
	assert.Equal(t, StatusAbsent, entries[2].Status)
	assert.Empty(t, entries[2].RecordID, "absent entries are derived, not stored")
}

// TestSummaryScenario: a cohort with 10 scheduled lectures where the
// student was present 6 times and late twice reports 80%.
func TestSummaryScenario(t *testing.T) {
	idStore := identity.NewInMemoryRepository()
	sessions := session.NewInMemoryRepository()
	records := NewInMemoryRepository()
	svc := NewService(sessions, idStore, records)

	student := idStore.AddStudent(identity.StudentProfile{
		AccountID: "acct-student", Roll: "21CS001", BranchID: "b-1", Semester: 5, Section: "A",
	})

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	statuses := []Status{
		StatusPresent, StatusPresent, StatusPresent, StatusPresent, StatusPresent, StatusPresent,
		StatusLate, StatusLate,
		"", "", // unattended
	}
	for i, status := range statuses {
		sess := testSession()
		sess.ID = fmt.Sprintf("sess-%d", i)
		sess.Token = fmt.Sprintf("tok-%d", i)
		sess.SubjectCode = "CS301"
		sess.SubjectName = "Operating Systems"
		sess.Date = base.AddDate(0, 0, i)
		sess.CreatedAt = sess.Date
		_, err := sessions.Create(context.Background(), sess)
		assert.NoError(t, err)

		if status != "" {
			_, err = records.Insert(context.Background(), Record{
				ID: fmt.Sprintf("rec-%d", i), SessionID: sess.ID, StudentID: student.ID,
				Status: status, MarkedAt: sess.Date,
			})
			assert.NoError(t, err)
		}
	}

	sum, err := svc.Summarize(context.Background(), "acct-student")
	assert.NoError(t, err)
	assert.Equal(t, 10, sum.TotalLectures)
	assert.Equal(t, 6, sum.Present)
	assert.Equal(t, 2, sum.Late)
	assert.Equal(t, 2, sum.Absent)
	assert.Equal(t, 80, sum.Percentage)

	assert.Len(t, sum.Subjects, 1)
	assert.Equal(t, "CS301", sum.Subjects[0].SubjectCode)
	assert.Equal(t, 80, sum.Subjects[0].Percentage)
}

func TestSummaryEmptyCohort(t *testing.T) {
	idStore := identity.NewInMemoryRepository()
	idStore.AddStudent(identity.StudentProfile{AccountID: "acct-student", BranchID: "b-1", Semester: 5, Section: "A"})
	svc := NewService(session.NewInMemoryRepository(), idStore, NewInMemoryRepository())

	sum, err := svc.Summarize(context.Background(), "acct-student")
	assert.NoError(t, err)
	assert.Equal(t, 0, sum.TotalLectures)
	assert.Equal(t, 0, sum.Percentage, "no lectures means 0%, not a division error")
}

func TestSummarySplitsSubjects(t *testing.T) {
	idStore := identity.NewInMemoryRepository()
	sessions := session.NewInMemoryRepository()
	records := NewInMemoryRepository()
	svc := NewService(sessions, idStore, records)

	student := idStore.AddStudent(identity.StudentProfile{
		AccountID: "acct-student", BranchID: "b-1", Semester: 5, Section: "A",
	})

	seed := func(id, subject string, attended bool) {
		sess := testSession()
		sess.ID = id
		sess.Token = "tok-" + id
		sess.SubjectCode = subject
		sess.SubjectName = subject
		_, err := sessions.Create(context.Background(), sess)
		assert.NoError(t, err)
		if attended {
			_, err = records.Insert(context.Background(), Record{
				ID: "rec-" + id, SessionID: id, StudentID: student.ID, Status: StatusPresent, MarkedAt: sess.Date,
			})
			assert.NoError(t, err)
		}
	}
	seed("s1", "CS301", true)
	seed("s2", "CS301", false)
	seed("s3", "MA201", true)

	sum, err := svc.Summarize(context.Background(), "acct-student")
	assert.NoError(t, err)
	assert.Len(t, sum.Subjects, 2)
	assert.Equal(t, "CS301", sum.Subjects[0].SubjectCode)
	assert.Equal(t, 50, sum.Subjects[0].Percentage)
	assert.Equal(t, "MA201", sum.Subjects[1].SubjectCode)
	assert.Equal(t, 100, sum.Subjects[1].Percentage)
	assert.Equal(t, 67, sum.Percentage, "round(100*2/3)")
}

func TestHistoryFiltersBySubject(t *testing.T) {
	idStore := identity.NewInMemoryRepository()
	sessions := session.NewInMemoryRepository()
	records := NewInMemoryRepository()
	svc := NewService(sessions, idStore, records)

	student := idStore.AddStudent(identity.StudentProfile{
		AccountID: "acct-student", BranchID: "b-1", Semester: 5, Section: "A",
	})

	records.SetSubject("s1", "CS301")
	records.SetSubject("s2", "MA201")
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, sessID := range []string{"s1", "s2"} {
		_, err := records.Insert(context.Background(), Record{
			ID: fmt.Sprintf("rec-%d", i), SessionID: sessID, StudentID: student.ID,
			Status: StatusPresent, MarkedAt: base.Add(time.Duration(i) * time.Hour),
		})
		assert.NoError(t, err)
	}

	all, err := svc.History(context.Background(), "acct-student", ListFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "rec-1", all[0].ID, "newest first")

	cs, err := svc.History(context.Background(), "acct-student", ListFilter{SubjectCode: "CS301"})
	assert.NoError(t, err)
	assert.Len(t, cs, 1)
	assert.Equal(t, "rec-0", cs[0].ID)
}
