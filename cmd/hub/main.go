// hub é o cliente de terminal do Bem-Querer Hub.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/client"
	"github.com/xavierca1/bemquerer-hub/internal/infra/config"
	"github.com/xavierca1/bemquerer-hub/internal/infra/logger"
	"github.com/xavierca1/bemquerer-hub/internal/session"
)

// app é o que todo comando recebe depois do PersistentPreRunE.
type app struct {
	cfg     *config.ClientConfig
	log     *zap.Logger
	store   *session.Store
	session *session.Provider
	api     *client.Client
}

var (
	apiURL    string
	statePath string
	hub       = &app{}
)

var rootCmd = &cobra.Command{
	Use:           "hub",
	Short:         "Bem-Querer Hub no terminal",
	Long:          "Funil de pacientes, conversas, WhatsApp, convites e módulos da clínica.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return hub.open(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		hub.close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "URL da API do hub (padrão: HUB_API_URL)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "arquivo de estado local (padrão: HUB_STATE_DB)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(boardCmd, dealsCmd)
	rootCmd.AddCommand(whatsappCmd, chatCmd, clinicorpCmd)
	rootCmd.AddCommand(invitesCmd, modulesCmd, metricsCmd)
}

func (a *app) open(ctx context.Context) error {
	a.cfg = config.LoadClient()
	if apiURL != "" {
		a.cfg.APIURL = apiURL
	}
	if statePath != "" {
		a.cfg.StatePath = statePath
	}

	// 1. Estado local (cria o diretório)
	store, err := session.OpenStore(a.cfg.StatePath)
	if err != nil {
		return err
	}
	a.store = store

	// 2. Log em arquivo, fora da tela
	log, err := logger.ToFile(a.cfg.LogLevel, filepath.Join(filepath.Dir(a.cfg.StatePath), "hub.log"))
	if err != nil {
		log = zap.NewNop()
	}
	a.log = log

	// 3. Sessão + API
	a.session = session.NewProvider(store, log)
	a.api = client.NewClient(a.cfg.APIURL, a.session, log)
	a.session.WithAuthenticator(a.api)

	if _, err := a.session.Restore(ctx); err != nil {
		log.Sugar().Warnw("⚠️ Não foi possível restaurar a sessão", "error", err)
	}
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) requireSession() error {
	if a.session.Current() == nil {
		return fmt.Errorf("sessão não encontrada: rode `hub login` primeiro")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
