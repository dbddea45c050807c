package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xavierca1/bemquerer-hub/internal/async"
	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/kanban"
	"github.com/xavierca1/bemquerer-hub/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Abre o funil de pacientes (kanban)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		board := kanban.NewBoard(hub.funnel(ctx), hub.api, hub.log).WithLoadBound(hub.cfg.FetchTimeout)
		defer board.Close()

		_, err := tea.NewProgram(tui.NewBoardModel(ctx, board), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Operações sobre deals",
}

var dealsMoveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Muda o status de um deal (new, qualifying, scheduled, attended, noshow, won, lost)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := entity.ParseStatus(args[1])
		if err != nil {
			return err
		}
		out, err := hub.api.UpdateDealStatus(cmd.Context(), args[0], status)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s → %s\n", args[0], out.NewStatus)
		return nil
	},
}

// funnel usa as etapas do servidor e cai no funil embutido se ele não responder a tempo.
func (a *app) funnel(ctx context.Context) *entity.Funnel {
	f, err := async.FirstSettled(ctx, a.cfg.FetchTimeout, a.api.Funnel)
	if err != nil {
		a.log.Sugar().Warnw("⚠️ Funil do servidor indisponível, usando o padrão", "error", err)
		return entity.DefaultFunnel()
	}
	return f
}

func init() {
	dealsCmd.AddCommand(dealsMoveCmd)
}
