package qr

import (
	"github.com/skip2/go-qrcode"
)

const DefaultImageSize = 256

// EncodePNG renders a token code as a PNG image.
func EncodePNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}

// EncodeTerminal renders a token code with unicode half blocks for a terminal.
func EncodeTerminal(code string) (string, error) {
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
