// Package client fala com a API do hub. Cada método é um wrapper fino sobre
// uma rota HTTP: monta a requisição, decodifica a resposta e classifica o erro.
package client

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

const defaultTimeout = 30 * time.Second

var (
	ErrUnauthorized = errors.New("não autorizado")
	ErrUnavailable  = errors.New("serviço indisponível")
)

// HTTPError é qualquer resposta fora da faixa 2xx.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("hub: status %d: %s", e.StatusCode, e.Message)
}

// Is permite errors.Is(err, ErrUnauthorized) e errors.Is(err, ErrUnavailable).
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

// TokenSource fornece o bearer token da sessão atual. Vazio = sem sessão.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *zap.SugaredLogger
}

func NewClient(baseURL string, tokens TokenSource, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		log:     log.Sugar(),
	}
}

// WithHTTPClient troca o transporte (testes, proxies).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	status, body, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &HTTPError{StatusCode: status, Message: errorMessage(body, status)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("hub: resposta inválida em %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("hub: erro ao serializar payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("hub: erro ao criar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("⚠️ Hub: falha de rede", "path", path, "error", err)
		return 0, nil, fmt.Errorf("hub: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("hub: erro ao ler resposta de %s: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		c.log.Debugw("❌ Hub: status inesperado", "path", path, "status", resp.StatusCode)
	}
	return resp.StatusCode, respBody, nil
}

func errorMessage(body []byte, status int) string {
	var parsed struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Error != "":
			return parsed.Error
		case parsed.Detail != "":
			return parsed.Detail
		case parsed.Message != "":
			return parsed.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}
