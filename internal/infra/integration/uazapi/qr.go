package uazapi

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

// QRDataURI devolve o QR pronto para <img>. Imagens já codificadas passam direto;
// um código de pareamento em texto é renderizado como PNG.
func QRDataURI(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", fmt.Errorf("qr code vazio")
	}
	if strings.HasPrefix(payload, "data:image") {
		return payload, nil
	}
	if looksLikeBase64PNG(payload) {
		return dataURIPrefix + payload, nil
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar qr code: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// IsImagePayload indica se o QR já veio como imagem (data-URI ou PNG em base64).
func IsImagePayload(payload string) bool {
	payload = strings.TrimSpace(payload)
	return strings.HasPrefix(payload, "data:image") || looksLikeBase64PNG(payload)
}

// PNG em base64 sempre começa com a assinatura \x89PNG codificada.
func looksLikeBase64PNG(s string) bool {
	return strings.HasPrefix(s, "iVBORw0KGgo")
}
