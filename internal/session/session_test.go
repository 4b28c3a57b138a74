package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateAt(t *testing.T) {
	expiry := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		isActive bool
		now      time.Time
		want     State
	}{
		{name: "active before expiry", isActive: true, now: expiry.Add(-time.Minute), want: StateActive},
		{name: "expired at expiry instant", isActive: true, now: expiry, want: StateExpired},
		{name: "expired after expiry", isActive: true, now: expiry.Add(time.Hour), want: StateExpired},
		{name: "closed wins over active", isActive: false, now: expiry.Add(-time.Minute), want: StateClosed},
		{name: "closed wins over expired", isActive: false, now: expiry.Add(time.Hour), want: StateClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := LectureSession{ExpiresAt: expiry, IsActive: tt.isActive}
			assert.Equal(t, tt.want, s.StateAt(tt.now))
			assert.Equal(t, tt.want == StateActive, s.UsableAt(tt.now))
		})
	}
}

func TestLectureStart(t *testing.T) {
	s := LectureSession{
		Date:      time.Date(2025, 3, 10, 8, 45, 12, 0, time.UTC),
		StartTime: "09:00",
	}
	start, err := s.LectureStart()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), start)
}

func TestLectureStartBadTime(t *testing.T) {
	s := LectureSession{Date: time.Now(), StartTime: "9 o'clock"}
	_, err := s.LectureStart()
	assert.Error(t, err)
}
