package entity

import (
	"context"
	"time"
)

type Period string

const (
	PeriodToday     Period = "hoje"
	PeriodWeek      Period = "semana"
	PeriodMonth     Period = "mes"
	PeriodLastMonth Period = "mes_passado"
	PeriodYear      Period = "ano"
	PeriodLast30    Period = "30dias"
)

type DateRange struct {
	Start time.Time `json:"inicio"`
	End   time.Time `json:"fim"`
}

// Label no formato dd/mm a dd/mm.
func (r DateRange) Label() string {
	return r.Start.Format("02/01") + " a " + r.End.Format("02/01")
}

// DealCount é uma linha de deal com o mínimo que as métricas precisam.
type DealCount struct {
	Status Status
	Value  float64
}

type LeadsMetric struct {
	Total          int     `json:"total_leads"`
	Scheduled      int     `json:"leads_agendados"`
	ConversionRate float64 `json:"taxa_conversao"`
}

type AppointmentsMetric struct {
	Total int `json:"total_agendamentos"`
}

type AttendanceMetric struct {
	Total    int     `json:"total_agendados"`
	Attended int     `json:"compareceram"`
	Missed   int     `json:"faltaram"`
	Rate     float64 `json:"taxa_comparecimento"`
}

type SalesMetric struct {
	Total         int     `json:"total_vendas"`
	Revenue       float64 `json:"faturamento"`
	AverageTicket float64 `json:"ticket_medio"`
}

type ConversionMetric struct {
	Leads int     `json:"total_leads"`
	Sales int     `json:"total_vendas"`
	Rate  float64 `json:"taxa_conversao"`
}

type DashboardMetrics struct {
	Period       Period              `json:"periodo"`
	Range        DateRange           `json:"intervalo"`
	Label        string              `json:"rotulo"`
	Leads        *LeadsMetric        `json:"leads,omitempty"`
	Appointments *AppointmentsMetric `json:"agendamentos,omitempty"`
	Attendance   *AttendanceMetric   `json:"comparecimentos,omitempty"`
	Sales        *SalesMetric        `json:"vendas,omitempty"`
	Conversion   *ConversionMetric   `json:"conversao,omitempty"`
}

type MetricsRepositoryInterface interface {
	CreatedBetween(ctx context.Context, clinicID string, r DateRange) ([]DealCount, error)
	UpdatedBetween(ctx context.Context, clinicID string, r DateRange, statuses ...Status) ([]DealCount, error)
}
