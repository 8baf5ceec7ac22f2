package render

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"ugnayan/contexts/community-engagement/certificate-service/domain/services"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

// codeImageSize is the source resolution of the verification code raster.
// The renderer scales it down when compositing.
const codeImageSize = 240

// QREncoder encodes the verification URL for an identifier as a QR PNG.
type QREncoder struct {
	Host string
}

func (e QREncoder) Encode(identifier string) ([]byte, error) {
	url := services.VerificationURL(e.Host, identifier)
	image, err := qrcode.Encode(url, qrcode.Medium, codeImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode verification code: %w", err)
	}
	return image, nil
}

var _ ports.CodeEncoder = QREncoder{}
