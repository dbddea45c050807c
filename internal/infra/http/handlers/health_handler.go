package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"
)

// BrokerHealth é satisfeito por *queue.RabbitMQ.
type BrokerHealth interface {
	IsHealthy() bool
}

type HealthHandler struct {
	DB        *sql.DB
	Broker    BrokerHealth
	Gateways  map[string]bool
	AppName   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler recebe quais integrações externas estão configuradas (uazapi, clinicorp, llm, mail).
func NewHealthHandler(db *sql.DB, broker BrokerHealth, appName string, gateways map[string]bool) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		Broker:    broker,
		Gateways:  gateways,
		AppName:   appName,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	// Banco
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	// RabbitMQ
	if h.Broker != nil {
		if h.Broker.IsHealthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	for name, configured := range h.Gateways {
		if configured {
			deps[name] = "configured"
		} else {
			deps[name] = "not configured"
		}
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Service:      h.AppName,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
