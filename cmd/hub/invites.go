package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

var (
	inviteRole    string
	inviteMaxUses int
)

var invitesCmd = &cobra.Command{
	Use:   "invites",
	Short: "Convites para a equipe da clínica",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return hub.requireSession()
	},
}

var invitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista os convites da clínica",
	RunE: func(cmd *cobra.Command, args []string) error {
		invites, err := hub.api.ListInvites(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIPO\tDESTINO\tCARGO\tUSOS\tSTATUS\tEXPIRA")
		for _, inv := range invites {
			dest := inv.Email
			if inv.Type == entity.InviteByCode {
				dest = inv.Code
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
				inv.ID, inv.Type, dest, inv.Role, inv.TimesUsed, inv.MaxUses, inv.Status, inv.ExpiresAt.Local().Format("02/01/2006"))
		}
		return w.Flush()
	},
}

var invitesEmailCmd = &cobra.Command{
	Use:   "email <endereço>",
	Short: "Envia um convite por e-mail (válido por 7 dias)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := hub.api.CreateEmailInvite(cmd.Context(), args[0], inviteRole)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Convite enviado para %s (expira em %s)\n", inv.Email, inv.ExpiresAt.Local().Format("02/01/2006"))
		return nil
	},
}

var invitesCodeCmd = &cobra.Command{
	Use:   "code",
	Short: "Gera um código de convite (válido por 30 dias)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inviteMaxUses < 1 {
			return fmt.Errorf("max-usos deve ser pelo menos 1")
		}
		inv, err := hub.api.CreateCodeInvite(cmd.Context(), inviteRole, inviteMaxUses)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Código: %s (%d uso(s), expira em %s)\n", inv.Code, inv.MaxUses, inv.ExpiresAt.Local().Format("02/01/2006"))
		return nil
	},
}

var invitesCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancela um convite pendente",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invites, err := hub.api.ListInvites(cmd.Context())
		if err != nil {
			return err
		}
		inv, ok := findInvite(invites, args[0])
		if !ok {
			return fmt.Errorf("convite %s não encontrado", args[0])
		}
		if !inv.CanAct() {
			return fmt.Errorf("convite está %s; só convites pendentes podem ser cancelados", inv.Status)
		}

		if err := hub.api.CancelInvite(cmd.Context(), inv.ID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Convite cancelado")
		return nil
	},
}

func findInvite(invites []entity.Invite, id string) (entity.Invite, bool) {
	for _, inv := range invites {
		if inv.ID == id {
			return inv, true
		}
	}
	return entity.Invite{}, false
}

func init() {
	invitesEmailCmd.Flags().StringVar(&inviteRole, "cargo", "usuario", "cargo do convidado (admin ou usuario)")
	invitesCodeCmd.Flags().StringVar(&inviteRole, "cargo", "usuario", "cargo do convidado (admin ou usuario)")
	invitesCodeCmd.Flags().IntVar(&inviteMaxUses, "max-usos", 1, "quantas pessoas podem usar o código")

	invitesCmd.AddCommand(invitesListCmd, invitesEmailCmd, invitesCodeCmd, invitesCancelCmd)
}
