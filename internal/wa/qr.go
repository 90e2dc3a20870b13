package wa

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// challengePixels is the rendered size of the QR artifact pushed to web
// subscribers.
const challengePixels = 256

// EncodeChallenge renders a raw pairing code as a PNG data URI so browsers
// can display it directly in an <img> tag.
func EncodeChallenge(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, challengePixels)
	if err != nil {
		return "", fmt.Errorf("encode challenge: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("data:image/png;base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(png))
	return sb.String(), nil
}
