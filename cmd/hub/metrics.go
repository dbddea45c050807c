package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

var (
	metricsType   string
	metricsPeriod string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Indicadores do dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hub.requireSession(); err != nil {
			return err
		}
		m, err := hub.api.DashboardMetrics(cmd.Context(), metricsType, entity.Period(metricsPeriod))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Período: %s\n\n", m.Label)
		if m.Leads != nil {
			fmt.Fprintf(out, "Leads:            %d (%d agendados, %.1f%%)\n", m.Leads.Total, m.Leads.Scheduled, m.Leads.ConversionRate)
		}
		if m.Appointments != nil {
			fmt.Fprintf(out, "Agendamentos:     %d\n", m.Appointments.Total)
		}
		if m.Attendance != nil {
			fmt.Fprintf(out, "Comparecimento:   %d de %d (%.1f%%), %d faltas\n", m.Attendance.Attended, m.Attendance.Total, m.Attendance.Rate, m.Attendance.Missed)
		}
		if m.Sales != nil {
			fmt.Fprintf(out, "Vendas:           %d, R$ %.2f (ticket médio R$ %.2f)\n", m.Sales.Total, m.Sales.Revenue, m.Sales.AverageTicket)
		}
		if m.Conversion != nil {
			fmt.Fprintf(out, "Conversão:        %.1f%%\n", m.Conversion.Rate)
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsType, "tipo", "", "leads, agendamentos, comparecimentos, vendas ou conversao (vazio = todos)")
	metricsCmd.Flags().StringVar(&metricsPeriod, "periodo", "30dias", "hoje, semana, mes, mes_passado, ano ou 30dias")
}
