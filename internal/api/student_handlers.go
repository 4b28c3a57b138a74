package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanhumai/mini-project-backend/internal/attendance"
	"github.com/rohanhumai/mini-project-backend/internal/auth"
	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/metrics"
	"github.com/rohanhumai/mini-project-backend/internal/queue"
)

func (s *Server) scan(c *gin.Context) {
	var req struct {
		Payload    string   `json:"payload" binding:"required"`
		Latitude   *float64 `json:"latitude"`
		Longitude  *float64 `json:"longitude"`
		DeviceInfo string   `json:"device_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	ctx := c.Request.Context()

	sess, student, err := s.validator.Validate(ctx, []byte(req.Payload), claims.Subject)
	if err != nil {
		s.handleScanError(c, err)
		return
	}

	rec, err := s.recorder.Record(ctx, sess, student, time.Now(), req.Latitude, req.Longitude, req.DeviceInfo)
	if err != nil {
		s.handleScanError(c, err)
		return
	}

	metrics.ScansRecorded.WithLabelValues(string(rec.Status)).Inc()
	if s.queue != nil {
		ev := queue.ScanEvent{
			RecordID:   rec.ID,
			SessionID:  rec.SessionID,
			StudentID:  rec.StudentID,
			Status:     string(rec.Status),
			ObservedAt: rec.MarkedAt,
		}
		if err := s.queue.Publish(ctx, ev); err != nil {
			log.Printf("scan audit publish failed: %v", err)
		}
	}

	respond(c, http.StatusOK, gin.H{
		"record":  rec,
		"status":  rec.Status,
		"subject": gin.H{"code": sess.SubjectCode, "name": sess.SubjectName},
	})
}

func (s *Server) handleScanError(c *gin.Context, err error) {
	var rej *attendance.RejectionError
	if errors.As(err, &rej) {
		metrics.ScansRejected.WithLabelValues(string(rej.Reason)).Inc()
		failRejection(c, rej)
		return
	}
	log.Printf("scan failed: %v", err)
	fail(c, http.StatusInternalServerError, "internal", "scan failed")
}

func (s *Server) history(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	f := attendance.ListFilter{
		SubjectCode: c.Query("subject_code"),
		Limit:       intQuery(c, "limit", 50),
		Offset:      intQuery(c, "offset", 0),
	}
	recs, err := s.svc.History(c.Request.Context(), claims.Subject, f)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			fail(c, http.StatusNotFound, "student_not_found", "no student profile for this account")
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "history failed")
		return
	}
	respond(c, http.StatusOK, gin.H{"records": recs})
}

func (s *Server) summary(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	sum, err := s.svc.Summarize(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			fail(c, http.StatusNotFound, "student_not_found", "no student profile for this account")
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "summary failed")
		return
	}
	respond(c, http.StatusOK, sum)
}
