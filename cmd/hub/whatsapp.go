package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xavierca1/bemquerer-hub/internal/connector"
	"github.com/xavierca1/bemquerer-hub/internal/tui"
)

var whatsappCmd = &cobra.Command{
	Use:   "whatsapp",
	Short: "Conecta o WhatsApp da clínica via QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		conn := connector.New(hub.api, hub.log).WithInterval(hub.cfg.PollInterval)
		defer conn.Close()

		_, err := tea.NewProgram(tui.NewWhatsAppModel(ctx, conn), tea.WithContext(ctx)).Run()
		return err
	},
}
