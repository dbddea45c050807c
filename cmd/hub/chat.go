package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/inbox"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Conversas com pacientes",
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista as conversas",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hub.requireSession(); err != nil {
			return err
		}
		in := hub.inbox()
		defer in.Close()

		if err := in.Load(cmd.Context()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠️ Conversas indisponíveis no momento")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPACIENTE\tÚLTIMA MENSAGEM\tNÃO LIDAS\tTAGS")
		for _, c := range in.Contacts() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, truncate(c.LastMessage, 40), c.UnreadCount, strings.Join(c.Tags, ","))
		}
		return w.Flush()
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show <chatId>",
	Short: "Mostra o histórico de uma conversa",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hub.requireSession(); err != nil {
			return err
		}
		in := hub.inbox()
		defer in.Close()

		if err := in.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		printMessages(cmd, in.Messages())
		return nil
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <chatId> <mensagem...>",
	Short: "Envia uma mensagem e mostra a resposta do agente",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hub.requireSession(); err != nil {
			return err
		}
		in := hub.inbox()
		defer in.Close()

		if err := in.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		before := len(in.Messages())
		sendErr := in.Send(cmd.Context(), strings.Join(args[1:], " "))

		printMessages(cmd, in.Messages()[before:])
		return sendErr
	},
}

func (a *app) inbox() *inbox.Inbox {
	return inbox.New(a.api, a.log).WithLoadBound(a.cfg.FetchTimeout)
}

func printMessages(cmd *cobra.Command, msgs []entity.ChatMessage) {
	for _, m := range msgs {
		who := map[entity.Sender]string{
			entity.SenderUser:   "Paciente",
			entity.SenderAgent:  "Agente",
			entity.SenderSystem: "Sistema",
		}[m.Sender]
		mark := ""
		if m.Status == entity.MessageFailed {
			mark = " ❌"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s%s\n", m.Timestamp.Local().Format("02/01 15:04"), who, m.Content, mark)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	chatCmd.AddCommand(chatListCmd, chatShowCmd, chatSendCmd)
}
