// Package qr renders credentials as scannable PNG images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultSize is the image edge length in pixels.
	DefaultSize = 256

	dataURLPrefix = "data:image/png;base64,"
)

// Renderer encodes content as a QR code PNG data URL.
type Renderer struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewRenderer() *Renderer {
	return &Renderer{size: DefaultSize, level: qrcode.Medium}
}

// DataURL returns "data:image/png;base64,..." for content.
func (r *Renderer) DataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, r.level, r.size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
