// File: services/qrcode_service.go
package services

import (
	"errors"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode and exists so tests can swap the
// encoder out.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateConfirmationQR renders a PNG QR code pointing at the registration
// confirmation page for the given team, suitable for on-site check-in.
func GenerateConfirmationQR(applicationURL, teamName, leaderName string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid size: must be positive")
	}
	if teamName == "" {
		return nil, errors.New("team name is required")
	}
	if encode == nil {
		encode = qrcode.Encode
	}

	q := url.Values{}
	q.Set("teamName", teamName)
	if leaderName != "" {
		q.Set("teamLeaderName", leaderName)
	}
	target := applicationURL + "/registration/confirmation?" + q.Encode()

	return encode(target, qrcode.Medium, size)
}
