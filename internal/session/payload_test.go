package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayloadRoundTrip(t *testing.T) {
	issued := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	p := Payload{
		Token:       "a2f9c81e77d04b3ab1c58e2f90d44f17",
		TeacherID:   "t-1",
		BranchID:    "b-1",
		SubjectCode: "CS301",
		Semester:    5,
		Section:     "A",
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(60 * time.Minute),
	}

	raw, err := p.Encode()
	assert.NoError(t, err)

	got, err := DecodePayload(raw)
	assert.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodePayloadIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"token": "a2f9c81e77d04b3ab1c58e2f90d44f17",
		"teacher_id": "t-1",
		"branch_id": "b-1",
		"subject_code": "CS301",
		"semester": 5,
		"section": "A",
		"issued_at": "2025-03-10T09:00:00Z",
		"expires_at": "2025-03-10T10:00:00Z",
		"color_hint": "blue",
		"version": 3
	}`)

	got, err := DecodePayload(raw)
	assert.NoError(t, err)
	assert.Equal(t, "a2f9c81e77d04b3ab1c58e2f90d44f17", got.Token)
	assert.Equal(t, "CS301", got.SubjectCode)
}

func TestDecodePayloadMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "lol not a payload"},
		{name: "empty", raw: ""},
		{name: "wrong type", raw: `{"token": 42}`},
		{name: "missing token", raw: `{"branch_id": "b-1", "semester": 5}`},
		{name: "empty token", raw: `{"token": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestQRPNG(t *testing.T) {
	p := Payload{Token: "a2f9c81e77d04b3ab1c58e2f90d44f17", ExpiresAt: time.Now().Add(time.Hour)}
	png, err := QRPNG(p, 256)
	assert.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestPayloadOmitsNothing(t *testing.T) {
	p := Payload{Token: "tok", Semester: 1, IssuedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC()}
	raw, err := p.Encode()
	assert.NoError(t, err)

	var fields map[string]any
	assert.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"token", "teacher_id", "branch_id", "subject_code", "semester", "section", "issued_at", "expires_at"} {
		assert.Contains(t, fields, key)
	}
}
