package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

func testStudent(id string) identity.StudentProfile {
	return identity.StudentProfile{ID: id, BranchID: "b-1", Roll: "21CS001", Semester: 5, Section: "A"}
}

func testSession() session.LectureSession {
	return session.LectureSession{
		ID:        "sess-1",
		BranchID:  "b-1",
		Semester:  5,
		Section:   "A",
		StartTime: "09:00",
		EndTime:   "10:00",
		Date:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
}

func TestClassifyBoundary(t *testing.T) {
	sess := testSession()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want Status
	}{
		{name: "on time", at: start.Add(time.Minute), want: StatusPresent},
		{name: "before start", at: start.Add(-10 * time.Minute), want: StatusPresent},
		{name: "14m59s is present", at: start.Add(14*time.Minute + 59*time.Second), want: StatusPresent},
		// exactly the threshold is present: the rule is strictly
		// greater-than, and this boundary is fixed
		{name: "15m00s is present", at: start.Add(15 * time.Minute), want: StatusPresent},
		{name: "15m01s is late", at: start.Add(15*time.Minute + time.Second), want: StatusLate},
		{name: "way late", at: start.Add(45 * time.Minute), want: StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(sess, tt.at)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordPersistsScanDetails(t *testing.T) {
	repo := NewInMemoryRepository()
	rec := NewRecorder(repo)
	sess := testSession()

	lat, lng := 12.9716, 77.5946
	observed := sess.Date.Add(20 * time.Minute)
	got, err := rec.Record(context.Background(), sess, testStudent("stu-1"), observed, &lat, &lng, "android/build-1234")
	assert.NoError(t, err)
	assert.Equal(t, StatusLate, got.Status)
	assert.Equal(t, observed, got.MarkedAt)
	assert.Equal(t, &lat, got.Latitude)
	assert.Equal(t, "android/build-1234", got.DeviceInfo)
}

func TestRecordDuplicateBecomesAlreadyMarked(t *testing.T) {
	repo := NewInMemoryRepository()
	rec := NewRecorder(repo)
	sess := testSession()
	student := testStudent("stu-1")
	observed := sess.Date.Add(5 * time.Minute)

	first, err := rec.Record(context.Background(), sess, student, observed, nil, nil, "")
	assert.NoError(t, err)

	_, err = rec.Record(context.Background(), sess, student, observed.Add(time.Minute), nil, nil, "")
	rej, ok := err.(*RejectionError)
	assert.True(t, ok, "duplicate insert must surface as a rejection, not a storage error")
	assert.Equal(t, ReasonAlreadyMarked, rej.Reason)
	assert.NotNil(t, rej.Existing)
	assert.Equal(t, first.ID, rej.Existing.ID)
}

// TestConcurrentScansWriteOneRecord drives many concurrent scans from
// the same student through the recorder: exactly one must win.
func TestConcurrentScansWriteOneRecord(t *testing.T) {
	repo := NewInMemoryRepository()
	rec := NewRecorder(repo)
	sess := testSession()
	student := testStudent("stu-1")
	observed := sess.Date.Add(5 * time.Minute)

	const n = 32
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = rec.Record(context.Background(), sess, student, observed, nil, nil, "")
		}(i)
	}
	wg.Wait()

	var successes, alreadyMarked int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			rej, ok := err.(*RejectionError)
			assert.True(t, ok)
			assert.Equal(t, ReasonAlreadyMarked, rej.Reason)
			alreadyMarked++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, alreadyMarked)

	records, err := repo.BySession(context.Background(), sess.ID)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMarkManuallyUpserts(t *testing.T) {
	repo := NewInMemoryRepository()
	rec := NewRecorder(repo)

	first, err := rec.MarkManually(context.Background(), "sess-1", "stu-1", StatusAbsent)
	assert.NoError(t, err)
	assert.Equal(t, StatusAbsent, first.Status)

	second, err := rec.MarkManually(context.Background(), "sess-1", "stu-1", StatusPresent)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the original record")
	assert.Equal(t, StatusPresent, second.Status)

	records, err := repo.BySession(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.Len(t, records, 1, "never two records for one pair")
	assert.Equal(t, StatusPresent, records[0].Status)
}

func TestMarkManuallyOverridesSelfScan(t *testing.T) {
	repo := NewInMemoryRepository()
	rec := NewRecorder(repo)
	sess := testSession()
	student := testStudent("stu-1")

	scanned, err := rec.Record(context.Background(), sess, student, sess.Date.Add(time.Minute), nil, nil, "")
	assert.NoError(t, err)
	assert.Equal(t, StatusPresent, scanned.Status)

	overridden, err := rec.MarkManually(context.Background(), sess.ID, student.ID, StatusAbsent)
	assert.NoError(t, err)
	assert.Equal(t, scanned.ID, overridden.ID)
	assert.Equal(t, StatusAbsent, overridden.Status)
}

func TestMarkManuallyRejectsUnknownStatus(t *testing.T) {
	rec := NewRecorder(NewInMemoryRepository())
	_, err := rec.MarkManually(context.Background(), "sess-1", "stu-1", Status("asleep"))
	assert.Error(t, err)
}
