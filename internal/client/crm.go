package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type StatusUpdate struct {
	Status    string        `json:"status"`
	NewStatus entity.Status `json:"new_status"`
	Message   string        `json:"message"`
}

func (c *Client) GetDeals(ctx context.Context) ([]entity.Deal, error) {
	var deals []entity.Deal
	if err := c.do(ctx, http.MethodGet, "/crm/deals", nil, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (c *Client) UpdateDealStatus(ctx context.Context, dealID string, status entity.Status) (*StatusUpdate, error) {
	var out StatusUpdate
	path := "/crm/deals/" + url.PathEscape(dealID) + "/status"
	if err := c.do(ctx, http.MethodPut, path, map[string]entity.Status{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Funnel busca as etapas configuradas no servidor.
func (c *Client) Funnel(ctx context.Context) (*entity.Funnel, error) {
	var out struct {
		Stages []entity.FunnelStage `json:"stages"`
	}
	if err := c.do(ctx, http.MethodGet, "/crm/funnel", nil, &out); err != nil {
		return nil, err
	}
	return entity.NewFunnel(out.Stages)
}
