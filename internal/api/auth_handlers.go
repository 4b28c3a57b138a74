package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rohanhumai/mini-project-backend/internal/auth"
	"github.com/rohanhumai/mini-project-backend/internal/identity"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	acct, err := s.identity.AccountByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "login failed")
		return
	}
	if !acct.CheckPassword(req.Password) {
		fail(c, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
		return
	}

	tokens, err := auth.Issue(acct.ID, acct.Role, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal", "token issue failed")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"role":          acct.Role,
	})
}
