package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type inviteCreated struct {
	Success bool          `json:"success"`
	Invite  entity.Invite `json:"convite"`
}

func (c *Client) ListInvites(ctx context.Context) ([]entity.Invite, error) {
	var invites []entity.Invite
	if err := c.do(ctx, http.MethodGet, "/invites", nil, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (c *Client) CreateEmailInvite(ctx context.Context, email, role string) (*entity.Invite, error) {
	in := map[string]string{"email": email, "cargo": role}

	var out inviteCreated
	if err := c.do(ctx, http.MethodPost, "/invites/email", in, &out); err != nil {
		return nil, err
	}
	return &out.Invite, nil
}

func (c *Client) CreateCodeInvite(ctx context.Context, role string, maxUses int) (*entity.Invite, error) {
	in := map[string]any{"cargo": role, "max_usos": maxUses}

	var out inviteCreated
	if err := c.do(ctx, http.MethodPost, "/invites/code", in, &out); err != nil {
		return nil, err
	}
	return &out.Invite, nil
}

func (c *Client) CancelInvite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/invites/"+url.PathEscape(id)+"/cancel", map[string]any{}, nil)
}

// ValidateInvite aceita token (convite por e-mail) ou código.
func (c *Client) ValidateInvite(ctx context.Context, token, code, email string) (*entity.InviteValidation, error) {
	in := map[string]string{}
	if token != "" {
		in["token"] = token
	}
	if code != "" {
		in["codigo"] = code
	}
	if email != "" {
		in["email"] = email
	}

	var out entity.InviteValidation
	if err := c.do(ctx, http.MethodPost, "/invites/validate", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
