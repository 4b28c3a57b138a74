package api

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanhumai/mini-project-backend/internal/attendance"
	"github.com/rohanhumai/mini-project-backend/internal/auth"
	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/metrics"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

const qrImageSize = 512

func (s *Server) createSession(c *gin.Context) {
	var req struct {
		BranchID        string `json:"branch_id" binding:"required"`
		SubjectCode     string `json:"subject_code" binding:"required"`
		SubjectName     string `json:"subject_name" binding:"required"`
		Semester        int    `json:"semester" binding:"required"`
		Section         string `json:"section"`
		StartTime       string `json:"start_time" binding:"required"`
		EndTime         string `json:"end_time" binding:"required"`
		ValidityMinutes int    `json:"validity_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	sess, payload, err := s.issuer.Create(c.Request.Context(), session.CreateInput{
		TeacherAccountID: claims.Subject,
		BranchID:         req.BranchID,
		SubjectCode:      req.SubjectCode,
		SubjectName:      req.SubjectName,
		Semester:         req.Semester,
		Section:          req.Section,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		ValidityMinutes:  req.ValidityMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidDuration):
			fail(c, http.StatusBadRequest, "invalid_duration", "validity minutes must be positive")
		case errors.Is(err, session.ErrTeacherNotFound):
			fail(c, http.StatusNotFound, "teacher_not_found", "no teacher profile for this account")
		default:
			log.Printf("create session failed: %v", err)
			fail(c, http.StatusInternalServerError, "internal", "session creation failed")
		}
		return
	}

	png, err := session.QRPNG(payload, qrImageSize)
	if err != nil {
		log.Printf("qr render failed for session %s: %v", sess.ID, err)
		fail(c, http.StatusInternalServerError, "internal", "qr render failed")
		return
	}

	cohortSize, err := s.identity.CountStudentsByCohort(c.Request.Context(), sess.BranchID, sess.Semester, sess.Section)
	if err != nil {
		log.Printf("cohort count failed for session %s: %v", sess.ID, err)
	}

	metrics.SessionsIssued.Inc()
	respond(c, http.StatusCreated, gin.H{
		"session":     sess,
		"qr_png":      base64.StdEncoding.EncodeToString(png),
		"expires_at":  sess.ExpiresAt,
		"cohort_size": cohortSize,
	})
}

func (s *Server) listSessions(c *gin.Context) {
	teacher, ok := s.requireTeacher(c)
	if !ok {
		return
	}

	f := session.ListFilter{
		BranchID:    c.Query("branch_id"),
		SubjectCode: c.Query("subject_code"),
		Limit:       intQuery(c, "limit", 50),
		Offset:      intQuery(c, "offset", 0),
	}
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			fail(c, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return
		}
		f.Date = &d
	}

	sessions, err := s.sessions.ListByTeacher(c.Request.Context(), teacher.ID, f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "listing failed")
		return
	}

	now := time.Now()
	out := make([]gin.H, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, gin.H{"session": sess, "state": sess.StateAt(now)})
	}
	respond(c, http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) closeSession(c *gin.Context) {
	sess, ok := s.ownedSession(c)
	if !ok {
		return
	}
	if err := s.sessions.Close(c.Request.Context(), sess.ID); err != nil {
		fail(c, http.StatusInternalServerError, "internal", "close failed")
		return
	}
	respond(c, http.StatusOK, gin.H{"id": sess.ID, "state": session.StateClosed})
}

func (s *Server) roster(c *gin.Context) {
	if _, ok := s.ownedSession(c); !ok {
		return
	}
	sess, entries, err := s.svc.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "roster failed")
		return
	}
	respond(c, http.StatusOK, gin.H{"session": sess, "roster": entries})
}

func (s *Server) markManually(c *gin.Context) {
	var req struct {
		Status attendance.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if !req.Status.Valid() {
		fail(c, http.StatusBadRequest, "bad_request", "status must be present, late or absent")
		return
	}

	sess, ok := s.ownedSession(c)
	if !ok {
		return
	}
	studentID := c.Param("studentId")
	if _, err := s.identity.StudentByID(c.Request.Context(), studentID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			fail(c, http.StatusNotFound, "student_not_found", "unknown student")
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "student lookup failed")
		return
	}

	rec, err := s.recorder.MarkManually(c.Request.Context(), sess.ID, studentID, req.Status)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "manual mark failed")
		return
	}
	respond(c, http.StatusOK, rec)
}

func (s *Server) updateRecord(c *gin.Context) {
	var req struct {
		Status attendance.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	rec, err := s.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			fail(c, http.StatusNotFound, "record_not_found", "unknown attendance record")
			return
		}
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	respond(c, http.StatusOK, rec)
}

func (s *Server) deleteRecord(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			fail(c, http.StatusNotFound, "record_not_found", "unknown attendance record")
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "delete failed")
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}

// requireTeacher resolves the teacher profile behind the request's
// account. Admins have no profile; listing by teacher id is a
// teacher-only concern.
func (s *Server) requireTeacher(c *gin.Context) (identity.TeacherProfile, bool) {
	claims, _ := auth.ClaimsFrom(c)
	teacher, err := s.identity.TeacherByAccount(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			fail(c, http.StatusNotFound, "teacher_not_found", "no teacher profile for this account")
		} else {
			fail(c, http.StatusInternalServerError, "internal", "teacher lookup failed")
		}
		return identity.TeacherProfile{}, false
	}
	return teacher, true
}

// ownedSession loads the :id session and checks the requester is its
// issuing teacher. Admins may act on any session.
func (s *Server) ownedSession(c *gin.Context) (session.LectureSession, bool) {
	sess, err := s.sessions.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			fail(c, http.StatusNotFound, "session_not_found", "unknown session")
		} else {
			fail(c, http.StatusInternalServerError, "internal", "session lookup failed")
		}
		return session.LectureSession{}, false
	}

	claims, _ := auth.ClaimsFrom(c)
	if claims.Role == identity.RoleAdmin {
		return sess, true
	}
	teacher, ok := s.requireTeacher(c)
	if !ok {
		return session.LectureSession{}, false
	}
	if sess.TeacherID != teacher.ID {
		fail(c, http.StatusForbidden, "forbidden", "session belongs to another teacher")
		return session.LectureSession{}, false
	}
	return sess, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
