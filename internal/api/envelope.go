package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rohanhumai/mini-project-backend/internal/attendance"
)

// All endpoints answer with a uniform envelope:
// {"success": true, "data": ...} or {"success": false, "error": {...}}.

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": gin.H{"code": code, "message": message}})
}

// rejectionStatus maps eligibility rejections onto HTTP statuses.
// Duplicate scans use 409 rather than 400: the conflict is on a
// uniquely-keyed resource and clients treat it differently from bad
// input.
func rejectionStatus(reason attendance.Reason) int {
	switch reason {
	case attendance.ReasonMalformedPayload, attendance.ReasonSessionExpired:
		return http.StatusBadRequest
	case attendance.ReasonSessionNotFound, attendance.ReasonStudentProfileNotFound:
		return http.StatusNotFound
	case attendance.ReasonBranchMismatch, attendance.ReasonSemesterMismatch, attendance.ReasonSectionMismatch:
		return http.StatusForbidden
	case attendance.ReasonAlreadyMarked:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func failRejection(c *gin.Context, rej *attendance.RejectionError) {
	body := gin.H{"code": string(rej.Reason), "message": rejectionMessage(rej.Reason)}
	if rej.Existing != nil {
		body["existing_record"] = rej.Existing
	}
	c.JSON(rejectionStatus(rej.Reason), gin.H{"success": false, "error": body})
}

func rejectionMessage(reason attendance.Reason) string {
	switch reason {
	case attendance.ReasonMalformedPayload:
		return "QR payload could not be parsed"
	case attendance.ReasonSessionExpired:
		return "this QR code has expired"
	case attendance.ReasonSessionNotFound:
		return "no active session matches this QR code"
	case attendance.ReasonStudentProfileNotFound:
		return "no student profile for this account"
	case attendance.ReasonBranchMismatch:
		return "session belongs to a different branch"
	case attendance.ReasonSemesterMismatch:
		return "session belongs to a different semester"
	case attendance.ReasonSectionMismatch:
		return "session belongs to a different section"
	case attendance.ReasonAlreadyMarked:
		return "attendance already marked for this session"
	}
	return "scan rejected"
}
