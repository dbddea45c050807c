package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrInvalidCredentials = errors.New("credenciais inválidas")

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SignInResult struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// Client cobre só o login por senha do Supabase Auth (GoTrue).
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("supabase: SUPABASE_URL não configurada")
	}

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		var e struct {
			Description string `json:"error_description"`
			Msg         string `json:"msg"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		msg := e.Description
		if msg == "" {
			msg = e.Msg
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase: status %d no login", resp.StatusCode)
	}

	var out SignInResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("supabase: resposta inválida: %w", err)
	}
	if out.User.ID == "" {
		return nil, fmt.Errorf("supabase: usuário não encontrado")
	}
	return &out, nil
}
