package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "attendance-tracker-test"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("acct-1", identity.RoleTeacher, testIssuer, testKey, 15*time.Minute, 24*time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := Parse(pair.AccessToken, testKey, testIssuer)
	assert.NoError(t, err)
	assert.Equal(t, "acct-1", claims.Subject)
	assert.Equal(t, identity.RoleTeacher, claims.Role)
}

func TestParseRejects(t *testing.T) {
	pair, err := Issue("acct-1", identity.RoleStudent, testIssuer, testKey, 15*time.Minute, time.Hour)
	assert.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{name: "wrong key", token: pair.AccessToken, key: "other-key", issuer: testIssuer},
		{name: "wrong issuer", token: pair.AccessToken, key: testKey, issuer: "someone-else"},
		{name: "garbage", token: "not.a.jwt", key: testKey, issuer: testIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.token, tt.key, tt.issuer)
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("acct-1", identity.RoleStudent, testIssuer, testKey, -time.Minute, time.Hour)
	assert.NoError(t, err)
	_, err = Parse(pair.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}
