package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Módulos contratados pela clínica",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return hub.requireSession()
	},
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista os módulos e seu estado",
	RunE: func(cmd *cobra.Command, args []string) error {
		mods, err := hub.api.ListModules(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MÓDULO\tATIVO\tCONFIGURADO")
		for _, m := range mods {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Module, yesNo(m.Active), yesNo(m.Configured))
		}
		return w.Flush()
	},
}

var modulesToggleCmd = &cobra.Command{
	Use:       "toggle <modulo> <on|off>",
	Short:     "Liga ou desliga um módulo",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"clinicorp", "chatgpt", "whatsapp", "agenda", "financeiro"},
	RunE: func(cmd *cobra.Command, args []string) error {
		module := entity.ModuleName(args[0])
		if !module.IsValid() {
			return fmt.Errorf("módulo desconhecido: %s", args[0])
		}
		var active bool
		switch args[1] {
		case "on":
			active = true
		case "off":
		default:
			return fmt.Errorf("use on ou off")
		}

		ok, err := hub.api.ToggleModule(cmd.Context(), module, active)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("o servidor não alterou o módulo %s", module)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %s\n", module, map[bool]string{true: "ativado", false: "desativado"}[active])
		return nil
	},
}

var modulesActivateCmd = &cobra.Command{
	Use:   "activate <modulo...>",
	Short: "Ativa vários módulos de uma vez",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := make([]entity.ModuleName, 0, len(args))
		for _, a := range args {
			m := entity.ModuleName(a)
			if !m.IsValid() {
				return fmt.Errorf("módulo desconhecido: %s", a)
			}
			names = append(names, m)
		}

		ok, err := hub.api.ActivateModules(cmd.Context(), names...)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("nem todos os módulos foram ativados")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Módulos ativados")
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func init() {
	modulesCmd.AddCommand(modulesListCmd, modulesToggleCmd, modulesActivateCmd)
}
