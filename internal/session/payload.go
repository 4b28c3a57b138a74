package session

import (
	"encoding/json"
	"errors"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrMalformedPayload is returned when a scanned blob cannot be
// decoded into a payload.
var ErrMalformedPayload = errors.New("session: malformed payload")

// Payload is the structured blob embedded in the QR image. It is the
// only artifact handed to students and carries everything eligibility
// checking needs; it is client-supplied on scan and must not be
// trusted without re-checking the persisted session.
type Payload struct {
	Token       string    `json:"token"`
	TeacherID   string    `json:"teacher_id"`
	BranchID    string    `json:"branch_id"`
	SubjectCode string    `json:"subject_code"`
	Semester    int       `json:"semester"`
	Section     string    `json:"section"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Encode serializes the payload for embedding in a QR image.
func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses a scanned blob. Unknown fields are ignored so
// older servers accept payloads from newer issuers. A payload without
// a token is malformed regardless of what else it carries.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, ErrMalformedPayload
	}
	if p.Token == "" {
		return Payload{}, ErrMalformedPayload
	}
	return p, nil
}

// QRPNG renders the payload as a PNG of size x size pixels.
func QRPNG(p Payload, size int) ([]byte, error) {
	raw, err := p.Encode()
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(raw), qrcode.Medium, size)
}
