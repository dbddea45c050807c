package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// MetricsRepository conta deals por período para o dashboard.
type MetricsRepository struct {
	DB *sql.DB
}

func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{DB: db}
}

func (r *MetricsRepository) CreatedBetween(ctx context.Context, clinicID string, rng entity.DateRange) ([]entity.DealCount, error) {
	return r.query(ctx, `
		SELECT COALESCE(status, ''), COALESCE(intent, ''), COALESCE(value, 0)
		FROM chats WHERE clinic_id = $1 AND created_at BETWEEN $2 AND $3
	`, clinicID, rng.Start, rng.End)
}

func (r *MetricsRepository) UpdatedBetween(ctx context.Context, clinicID string, rng entity.DateRange, statuses ...entity.Status) ([]entity.DealCount, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	return r.query(ctx, `
		SELECT COALESCE(status, ''), COALESCE(intent, ''), COALESCE(value, 0)
		FROM chats WHERE clinic_id = $1 AND last_message_at BETWEEN $2 AND $3 AND status = ANY($4)
	`, clinicID, rng.Start, rng.End, pq.Array(raw))
}

func (r *MetricsRepository) query(ctx context.Context, query string, args ...any) ([]entity.DealCount, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao calcular métricas: %w", err)
	}
	defer rows.Close()

	counts := make([]entity.DealCount, 0)
	for rows.Next() {
		var (
			c              entity.DealCount
			status, intent string
		)
		if err := rows.Scan(&status, &intent, &c.Value); err != nil {
			return nil, err
		}
		c.Status = entity.DealStatusFromChat(status, intent)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
