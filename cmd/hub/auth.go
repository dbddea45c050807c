package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Entra com e-mail e senha",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginPassword == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Senha: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("erro ao ler senha: %w", err)
			}
			loginPassword = strings.TrimRight(line, "\r\n")
		}

		s, err := hub.session.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Bem-vindo(a), %s (%s)\n", s.User.Name, s.User.ClinicName)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Encerra a sessão local",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hub.session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "👋 Sessão encerrada")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Mostra o usuário logado",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := hub.session.Current()
		if s == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Ninguém logado")
			return nil
		}
		u := s.User
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nCargo: %s\nClínica: %s (%s)\nDesde: %s\n",
			u.Name, u.Email, u.Role, u.ClinicName, u.ClinicID, s.IssuedAt.Format("02/01/2006 15:04"))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "e-mail")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", os.Getenv("HUB_PASSWORD"), "senha (lida do terminal se vazia)")
	_ = loginCmd.MarkFlagRequired("email")
}
