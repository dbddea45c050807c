package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type successBody struct {
	Success bool `json:"success"`
}

func (c *Client) ListModules(ctx context.Context) ([]entity.ClinicModule, error) {
	var mods []entity.ClinicModule
	if err := c.do(ctx, http.MethodGet, "/modules", nil, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

func (c *Client) ToggleModule(ctx context.Context, module entity.ModuleName, active bool) (bool, error) {
	var out successBody
	path := "/modules/" + url.PathEscape(string(module))
	if err := c.do(ctx, http.MethodPut, path, map[string]bool{"ativo": active}, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

func (c *Client) ActivateModules(ctx context.Context, modules ...entity.ModuleName) (bool, error) {
	var out successBody
	if err := c.do(ctx, http.MethodPost, "/modules/activate", map[string][]entity.ModuleName{"modulos": modules}, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}
