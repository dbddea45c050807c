package client

import (
	"context"
	"net/http"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        entity.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := map[string]string{"email": email, "password": password}

	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
