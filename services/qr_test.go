package services

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festival-registration-system/models"
)

func samplePayloadInput() (*models.Registration, *models.Event, time.Time) {
	event := &models.Event{
		ID:    "ev-1",
		Title: "Robo Wars",
		Mode:  models.ModeGroup,
	}
	reg := &models.Registration{
		RegistrationID:    "GDN2026-0042",
		LeaderName:        "A. Kumar",
		IsHomeInstitution: false,
		ApprovalState:     models.ApprovalApproved,
		PaymentState:      models.PaymentPending,
	}
	return reg, event, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
}

func TestBuildVerificationPayload(t *testing.T) {
	reg, event, now := samplePayloadInput()

	payload := BuildVerificationPayload(reg, event, now)

	assert.Equal(t, "GDN2026-0042", payload.RegistrationID)
	assert.Equal(t, "A. Kumar", payload.LeaderName)
	assert.Equal(t, "Robo Wars", payload.EventTitle)
	assert.Equal(t, models.ModeGroup, payload.EventMode)
	assert.Equal(t, models.AffiliationExternal, payload.Affiliation)
	assert.Equal(t, models.ApprovalApproved, payload.ApprovalState)
	assert.Equal(t, models.PaymentPending, payload.PaymentState)
	assert.Equal(t, "2026-03-01T09:30:00Z", payload.GeneratedAt)
}

func TestVerificationPayloadRoundTripThroughQR(t *testing.T) {
	reg, event, now := samplePayloadInput()
	payload := BuildVerificationPayload(reg, event, now)

	serialized, err := payload.Encode()
	require.NoError(t, err)

	pngBytes, err := RenderQR(serialized)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)

	var decoded VerificationPayload
	require.NoError(t, json.Unmarshal([]byte(result.GetText()), &decoded))
	assert.Equal(t, payload, decoded)
}

func TestDecodeVerificationPayload(t *testing.T) {
	reg, event, now := samplePayloadInput()
	payload := BuildVerificationPayload(reg, event, now)

	serialized, err := payload.Encode()
	require.NoError(t, err)

	decoded, err := DecodeVerificationPayload(serialized)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestRenderQRRejectsOversizedPayload(t *testing.T) {
	oversized := strings.Repeat("x", maxQRPayloadBytes+1)

	_, err := RenderQR(oversized)
	require.Error(t, err)
	we, ok := AsWorkflowError(err)
	require.True(t, ok)
	assert.Equal(t, KindArtifact, we.Kind)
}
