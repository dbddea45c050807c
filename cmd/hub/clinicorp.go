package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	clinicorpClientID     string
	clinicorpClientSecret string
)

var clinicorpCmd = &cobra.Command{
	Use:   "clinicorp",
	Short: "Integração de agenda Clinicorp",
}

var clinicorpConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Salva e testa as credenciais do Clinicorp",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, secret := strings.TrimSpace(clinicorpClientID), strings.TrimSpace(clinicorpClientSecret)
		if id == "" || secret == "" {
			return fmt.Errorf("client-id e client-secret são obrigatórios")
		}

		out, err := hub.api.ConfigureClinicorp(cmd.Context(), id, secret)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: %s\n", out.Integration, out.Status)
		if out.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		}
		return nil
	},
}

func init() {
	clinicorpConfigureCmd.Flags().StringVar(&clinicorpClientID, "client-id", "", "Client ID do Clinicorp")
	clinicorpConfigureCmd.Flags().StringVar(&clinicorpClientSecret, "client-secret", "", "Client Secret ou token da API")
	clinicorpCmd.AddCommand(clinicorpConfigureCmd)
}
