// services/qr.go
package services

import (
	"encoding/json"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"festival-registration-system/models"
)

// maxQRPayloadBytes is the binary capacity of a version-40 QR code at medium
// error correction. The fixed field set stays far below this, but the bound
// is checked rather than assumed.
const maxQRPayloadBytes = 2331

const qrImageSize = 256

// VerificationPayload is the flat structure encoded into the ticket QR and
// checked at the door.
type VerificationPayload struct {
	RegistrationID string `json:"registration_id"`
	LeaderName     string `json:"leader_name"`
	EventTitle     string `json:"event_title"`
	EventMode      string `json:"event_mode"`
	Affiliation    string `json:"affiliation"`
	ApprovalState  string `json:"approval_state"`
	PaymentState   string `json:"payment_state"`
	GeneratedAt    string `json:"generated_at"`
}

// BuildVerificationPayload assembles the payload from a registration and its
// event. Pure function, no I/O; the caller supplies the clock.
func BuildVerificationPayload(reg *models.Registration, event *models.Event, now time.Time) VerificationPayload {
	return VerificationPayload{
		RegistrationID: reg.RegistrationID,
		LeaderName:     reg.LeaderName,
		EventTitle:     event.Title,
		EventMode:      event.Mode,
		Affiliation:    reg.Affiliation(),
		ApprovalState:  reg.ApprovalState,
		PaymentState:   reg.PaymentState,
		GeneratedAt:    now.UTC().Format(time.RFC3339),
	}
}

// Encode serializes the payload to the JSON form stored on the registration
// and encoded into the QR image.
func (p VerificationPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", artifactErrorf(err, "failed to serialize verification payload")
	}
	return string(data), nil
}

// DecodeVerificationPayload parses a serialized payload back into its
// structured form.
func DecodeVerificationPayload(serialized string) (VerificationPayload, error) {
	var p VerificationPayload
	if err := json.Unmarshal([]byte(serialized), &p); err != nil {
		return VerificationPayload{}, artifactErrorf(err, "failed to parse verification payload")
	}
	return p, nil
}

// RenderQR encodes the serialized payload as a PNG QR image.
func RenderQR(serialized string) ([]byte, error) {
	if len(serialized) > maxQRPayloadBytes {
		return nil, artifactErrorf(nil, "verification payload exceeds QR capacity (%d > %d bytes)",
			len(serialized), maxQRPayloadBytes)
	}
	png, err := qrcode.Encode(serialized, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, artifactErrorf(err, "failed to encode QR image")
	}
	return png, nil
}
