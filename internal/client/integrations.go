package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type IntegrationStatus struct {
	Status      string `json:"status"`
	Integration string `json:"integration"`
	Message     string `json:"message"`
	Mock        bool   `json:"mock,omitempty"`
}

func (c *Client) ConfigureClinicorp(ctx context.Context, clientID, clientSecret string) (*IntegrationStatus, error) {
	in := map[string]string{"client_id": clientID, "client_secret": clientSecret}

	var out IntegrationStatus
	if err := c.do(ctx, http.MethodPost, "/integrations/clinicorp/configure", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectWhatsApp pede o QR code. Um 503 casa com ErrUnavailable.
func (c *Client) ConnectWhatsApp(ctx context.Context) (*entity.WhatsAppConnectResponse, error) {
	var out entity.WhatsAppConnectResponse
	if err := c.do(ctx, http.MethodPost, "/integrations/whatsapp/connect", map[string]any{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WhatsAppStatus consulta a instância. Em respostas de erro o corpo também é
// decodificado, então o chamador recebe o status junto do *HTTPError.
func (c *Client) WhatsAppStatus(ctx context.Context) (*entity.WhatsAppStatus, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/integrations/whatsapp/status", nil)
	if err != nil {
		return nil, err
	}

	var out entity.WhatsAppStatus
	decodeErr := json.Unmarshal(body, &out)

	if status < 200 || status >= 300 {
		httpErr := &HTTPError{StatusCode: status, Message: errorMessage(body, status)}
		if decodeErr != nil {
			return nil, httpErr
		}
		if out.Error == "" {
			out.Error = httpErr.Message
		}
		return &out, httpErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("hub: resposta inválida em /integrations/whatsapp/status: %w", decodeErr)
	}
	return &out, nil
}

func (c *Client) DisconnectWhatsApp(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/integrations/whatsapp/disconnect", map[string]any{}, nil)
}
