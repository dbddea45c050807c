package uazapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	sendTimeout    = 15 * time.Second
	connectTimeout = 20 * time.Second
	statusTimeout  = 10 * time.Second
)

// APIError carrega o status HTTP devolvido pelo gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("uazapi: status %d: %s", e.StatusCode, e.Message)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func IsUnavailable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.SugaredLogger
}

func NewClient(baseURL, token string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
		log:     log.Sugar(),
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

// Connect pede o QR code (ou confirma que a instância já está conectada).
func (c *Client) Connect(ctx context.Context) (*ConnectResponse, error) {
	var out ConnectResponse
	if err := c.do(ctx, connectTimeout, http.MethodPost, "/instance/connect", map[string]any{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, statusTimeout, http.MethodGet, "/instance/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.do(ctx, statusTimeout, http.MethodPost, "/instance/disconnect", map[string]any{}, nil)
}

func (c *Client) SendText(ctx context.Context, input SendTextInput) (*SendResponse, error) {
	input.Number = NormalizeNumber(input.Number)

	var out SendResponse
	if err := c.do(ctx, sendTimeout, http.MethodPost, "/send/text", input, &out); err != nil {
		return nil, err
	}
	c.log.Infow("✅ UazAPI: mensagem enviada", "number", input.Number)
	return &out, nil
}

// ConfigureWebhook aponta os eventos da instância para o hub.
func (c *Client) ConfigureWebhook(ctx context.Context, url string) error {
	cfg := webhookConfig{
		Enabled: true,
		URL:     url,
		Events:  []string{"messages", "history", "connection", "status"},
	}
	return c.do(ctx, statusTimeout, http.MethodPost, "/webhook", cfg, nil)
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, in, out any) error {
	if !c.Configured() {
		return fmt.Errorf("uazapi: UAZAPI_TOKEN não configurado")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("uazapi: erro ao serializar payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("uazapi: erro ao criar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("token", c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("⚠️ UazAPI: falha de rede", "path", path, "error", err)
		return fmt.Errorf("uazapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warnw("❌ UazAPI: status inesperado", "path", path, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody, resp.StatusCode)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("uazapi: resposta inválida em %s: %w", path, err)
	}
	return nil
}

func errorMessage(body []byte, status int) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}
