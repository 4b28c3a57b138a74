package api

import (
	"github.com/gin-gonic/gin"

	"github.com/rohanhumai/mini-project-backend/internal/attendance"
	"github.com/rohanhumai/mini-project-backend/internal/auth"
	"github.com/rohanhumai/mini-project-backend/internal/config"
	"github.com/rohanhumai/mini-project-backend/internal/identity"
	"github.com/rohanhumai/mini-project-backend/internal/queue"
	"github.com/rohanhumai/mini-project-backend/internal/session"
)

// Server wires the domain services into gin handlers.
type Server struct {
	cfg       config.App
	identity  identity.Repository
	sessions  session.Repository
	issuer    *session.Issuer
	validator *attendance.Validator
	recorder  *attendance.Recorder
	svc       *attendance.Service
	queue     queue.Queue
}

// NewServer creates a server.
func NewServer(cfg config.App, idStore identity.Repository, sessions session.Repository,
	issuer *session.Issuer, validator *attendance.Validator, recorder *attendance.Recorder,
	svc *attendance.Service, q queue.Queue) *Server {
	return &Server{
		cfg:       cfg,
		identity:  idStore,
		sessions:  sessions,
		issuer:    issuer,
		validator: validator,
		recorder:  recorder,
		svc:       svc,
		queue:     q,
	}
}

// Register mounts the versioned API routes on the engine. Role
// dispatch is a closed set checked at the group boundary.
func (s *Server) Register(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/auth/login", s.login)

	teacher := v1.Group("", auth.RequireRole(s.cfg.JWTSigningKey, s.cfg.JWTIssuer, identity.RoleTeacher, identity.RoleAdmin))
	teacher.POST("/sessions", s.createSession)
	teacher.GET("/sessions", s.listSessions)
	teacher.POST("/sessions/:id/close", s.closeSession)
	teacher.GET("/sessions/:id/roster", s.roster)
	teacher.PUT("/sessions/:id/attendance/:studentId", s.markManually)
	teacher.PUT("/attendance/:id", s.updateRecord)
	teacher.DELETE("/attendance/:id", s.deleteRecord)

	student := v1.Group("", auth.RequireRole(s.cfg.JWTSigningKey, s.cfg.JWTIssuer, identity.RoleStudent))
	student.POST("/scan", s.scan)
	student.GET("/attendance", s.history)
	student.GET("/attendance/summary", s.summary)
}
