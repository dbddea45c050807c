package tui

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

// RenderQR desenha o QR em blocos de texto a partir do conteúdo cru.
func RenderQR(text string) (string, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar qr code: %w", err)
	}
	return q.ToSmallString(false), nil
}

// SaveQRImage grava o PNG de um data-URI em dir e devolve o caminho.
func SaveQRImage(dataURI, dir string) (string, error) {
	if !strings.HasPrefix(dataURI, dataURIPrefix) {
		return "", fmt.Errorf("qr code em formato desconhecido")
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, dataURIPrefix))
	if err != nil {
		return "", fmt.Errorf("qr code inválido: %w", err)
	}

	path := filepath.Join(dir, "bemquerer-whatsapp-qr.png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return "", fmt.Errorf("erro ao salvar qr code: %w", err)
	}
	return path, nil
}
