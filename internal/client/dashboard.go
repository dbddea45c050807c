package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// DashboardMetrics aceita tipo vazio (todas as métricas) e período vazio (30 dias).
func (c *Client) DashboardMetrics(ctx context.Context, tipo string, period entity.Period) (*entity.DashboardMetrics, error) {
	q := url.Values{}
	if tipo != "" {
		q.Set("tipo", tipo)
	}
	if period != "" {
		q.Set("periodo", string(period))
	}
	path := "/dashboard/metrics"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out entity.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
