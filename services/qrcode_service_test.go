// file: services/qrcode_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock encoder function (successful) that captures the encoded content.
func captureEncoder(captured *string) QRCodeEncoder {
	return func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
		*captured = content
		return []byte("mock_qr_code_data"), nil
	}
}

// Test: the QR code targets the confirmation page with the team name encoded.
func TestGenerateConfirmationQR_Success(t *testing.T) {
	var content string
	data, err := GenerateConfirmationQR("https://inohax.inovact.in", "Team Rocket", "Jessie", 256, captureEncoder(&content))

	require.NoError(t, err)
	assert.Equal(t, "mock_qr_code_data", string(data))
	assert.Contains(t, content, "https://inohax.inovact.in/registration/confirmation?")
	assert.Contains(t, content, "teamName=Team+Rocket")
	assert.Contains(t, content, "teamLeaderName=Jessie")
}

// Test: invalid size is rejected before encoding.
func TestGenerateConfirmationQR_InvalidSize(t *testing.T) {
	data, err := GenerateConfirmationQR("http://localhost:8080", "Team Rocket", "", -1, nil)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "invalid size: must be positive", err.Error())
}

// Test: a team name is required.
func TestGenerateConfirmationQR_MissingTeam(t *testing.T) {
	data, err := GenerateConfirmationQR("http://localhost:8080", "", "", 256, nil)

	assert.Error(t, err)
	assert.Nil(t, data)
}

// Test: encoder errors pass through.
func TestGenerateConfirmationQR_EncoderFails(t *testing.T) {
	failing := func(string, qrcode.RecoveryLevel, int) ([]byte, error) {
		return nil, errors.New("QR code generation failed")
	}

	data, err := GenerateConfirmationQR("http://localhost:8080", "Team Rocket", "", 256, failing)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "QR code generation failed", err.Error())
}

// Test: the real encoder produces a PNG.
func TestGenerateConfirmationQR_RealEncoder(t *testing.T) {
	data, err := GenerateConfirmationQR("http://localhost:8080", "Team Rocket", "Jessie", 128, nil)

	require.NoError(t, err)
	require.True(t, len(data) > 8)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}
