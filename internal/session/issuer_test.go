package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rohanhumai/mini-project-backend/internal/identity"
)

func issuerSetup(t *testing.T) (*Issuer, *InMemoryRepository, identity.TeacherProfile) {
	t.Helper()
	idStore := identity.NewInMemoryRepository()
	teacher := idStore.AddTeacher(identity.TeacherProfile{AccountID: "acct-teacher", BranchID: "b-1"})
	repo := NewInMemoryRepository()
	return NewIssuer(repo, idStore), repo, teacher
}

func validInput() CreateInput {
	return CreateInput{
		TeacherAccountID: "acct-teacher",
		BranchID:         "b-1",
		SubjectCode:      "CS301",
		SubjectName:      "Operating Systems",
		Semester:         5,
		Section:          "A",
		StartTime:        "09:00",
		EndTime:          "10:00",
	}
}

func TestCreateDefaults(t *testing.T) {
	issuer, repo, teacher := issuerSetup(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	in := validInput()
	in.Section = ""

	sess, payload, err := issuer.Create(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, teacher.ID, sess.TeacherID)
	assert.True(t, sess.IsActive)
	assert.Equal(t, "A", sess.Section, "section defaults to A")
	assert.Equal(t, now.Add(DefaultValidityMinutes*time.Minute), sess.ExpiresAt)
	assert.Equal(t, "Operating Systems", sess.SubjectName, "subject snapshot stored on the session")

	assert.Equal(t, sess.Token, payload.Token)
	assert.Equal(t, now, payload.IssuedAt)
	assert.Equal(t, sess.ExpiresAt, payload.ExpiresAt)

	stored, err := repo.ByToken(context.Background(), sess.Token)
	assert.NoError(t, err)
	assert.Equal(t, sess.ID, stored.ID)
}

func TestCreateCustomValidity(t *testing.T) {
	issuer, _, _ := issuerSetup(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	in := validInput()
	in.ValidityMinutes = 30
	sess, _, err := issuer.Create(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), sess.ExpiresAt)
}

func TestCreateInvalidDuration(t *testing.T) {
	issuer, _, _ := issuerSetup(t)
	in := validInput()
	in.ValidityMinutes = -5
	_, _, err := issuer.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCreateTeacherNotFound(t *testing.T) {
	issuer, _, _ := issuerSetup(t)
	in := validInput()
	in.TeacherAccountID = "acct-nobody"
	_, _, err := issuer.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestTokensAreUniqueAndOpaque(t *testing.T) {
	issuer, _, _ := issuerSetup(t)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		_, payload, err := issuer.Create(context.Background(), validInput())
		assert.NoError(t, err)
		assert.Len(t, payload.Token, 2*tokenBytes, "hex-encoded 128-bit token")
		assert.False(t, seen[payload.Token], "token reuse")
		seen[payload.Token] = true
	}
}
