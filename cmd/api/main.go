package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/config"
	"github.com/xavierca1/bemquerer-hub/internal/infra/database"
	"github.com/xavierca1/bemquerer-hub/internal/infra/http/handlers"
	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/chatgpt"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/clinicorp"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/gemini"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/supabase"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
	"github.com/xavierca1/bemquerer-hub/internal/infra/logger"
	"github.com/xavierca1/bemquerer-hub/internal/infra/mail"
	"github.com/xavierca1/bemquerer-hub/internal/infra/queue"
	"github.com/xavierca1/bemquerer-hub/internal/infra/worker"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("❌ Erro ao iniciar logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("❌ Erro ao conectar no banco", "error", err)
	}
	defer db.Close()

	funnel, err := entity.LoadFunnel(cfg.FunnelFile)
	if err != nil {
		sugar.Fatalw("❌ Funil inválido", "file", cfg.FunnelFile, "error", err)
	}

	// 2. Repositórios
	dealRepo := database.NewDealRepository(db)
	chatRepo := database.NewChatRepository(db)
	inviteRepo := database.NewInviteRepository(db)
	moduleRepo := database.NewModuleRepository(db)
	profileRepo := database.NewProfileRepository(db)
	metricsRepo := database.NewMetricsRepository(db)
	knowledgeRepo := database.NewKnowledgeRepository(db)
	threadRepo := database.NewThreadRepository(db)

	// 3. Gateways
	wa := uazapi.NewClient(cfg.UazAPIBaseURL, cfg.UazAPIToken, zl)
	ai := newAIProvider(ctx, cfg, zl)
	auth := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mailer := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.AppName)

	clinicorpFactory := func(creds clinicorp.Credentials) usecase.ClinicorpGateway {
		return clinicorp.NewClient(creds, zl, clinicorp.WithSubscriber(cfg.ClinicorpSubscriberID, cfg.ClinicorpCodeLink))
	}
	clinicorpProvider := usecase.NewClinicorpProvider(moduleRepo, clinicorpFactory, clinicorp.Credentials{
		ClientID:     cfg.ClinicorpClientID,
		ClientSecret: cfg.ClinicorpClientSecret,
	})

	// 4. Fila (opcional: sem RabbitMQ o webhook processa na hora)
	var (
		broker    handlers.BrokerHealth
		publisher usecase.InboundPublisher
		rabbit    *queue.RabbitMQ
	)
	rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		sugar.Warnw("⚠️ RabbitMQ indisponível, webhooks serão processados direto", "error", err)
		rabbit = nil
	} else {
		defer rabbit.Close()
		broker = rabbit
		publisher = queue.NewProducer(rabbit.Ch)
	}

	// 5. UseCases
	processUC := usecase.NewProcessMessageUseCase(chatRepo, ai, wa, zl)
	webhookUC := usecase.NewReceiveWebhookUseCase(publisher, processUC, cfg.DefaultClinicID, zl)
	listDealsUC := usecase.NewListDealsUseCase(dealRepo, clinicorpProvider, zl)
	updateDealUC := usecase.NewUpdateDealStatusUseCase(dealRepo, zl)
	syncUC := usecase.NewSyncAppointmentsUseCase(dealRepo, clinicorpProvider, zl)
	chatUC := usecase.NewChatUseCase(chatRepo, ai, zl)
	whatsappUC := usecase.NewWhatsAppUseCase(wa, cfg.UazAPIInstance, webhookURL(cfg.WebhookPublicURL), zl)
	configureClinicorpUC := usecase.NewConfigureClinicorpUseCase(moduleRepo, clinicorpFactory, zl)
	scheduleUC := usecase.NewClinicorpScheduleUseCase(clinicorpProvider, zl)
	inviteUC := usecase.NewInviteUseCase(inviteRepo, mailer, cfg.AppURL, zl)
	moduleUC := usecase.NewModuleUseCase(moduleRepo, zl)
	loginUC := usecase.NewLoginUseCase(auth, profileRepo, zl)
	dashboardUC := usecase.NewDashboardUseCase(metricsRepo, zl)
	knowledgeUC := usecase.NewKnowledgeUseCase(knowledgeRepo, embedderFor(ai), zl)
	conversationUC := usecase.NewConversationUseCase(threadRepo, ai, zl).WithKnowledge(knowledgeUC)

	// 6. Workers
	if rabbit != nil {
		consumer := queue.NewWorker(rabbit.Ch, meteredProcessor{uc: processUC}, zl)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				sugar.Errorw("❌ Worker da fila parou", "error", err)
			}
		}()
	}
	go worker.NewInviteExpirationWorker(inviteUC, zl).Start(ctx)
	go worker.NewAppointmentSyncWorker(syncUC, []string{cfg.DefaultClinicID}, zl).Start(ctx)

	// 7. Handlers
	crmHandler := handlers.NewCRMHandler(listDealsUC, updateDealUC, cfg.DefaultClinicID)
	crmHandler.FunnelConfig = funnel

	router := newRouter(routes{
		Auth:        middleware.NewAuth(cfg.SupabaseJWTSecret, profileRepo, zl),
		Health:      handlers.NewHealthHandler(db, broker, cfg.AppName, gatewayFlags(cfg, wa, ai)),
		Login:       handlers.NewAuthHandler(loginUC, handlers.NewRateLimiter(10, time.Minute)),
		CRM:         crmHandler,
		Chat:        handlers.NewChatHandler(chatUC, cfg.DefaultClinicID),
		Integration: handlers.NewIntegrationHandler(whatsappUC, configureClinicorpUC, scheduleUC, cfg.DefaultClinicID),
		Invite:      handlers.NewInviteHandler(inviteUC),
		Module:      handlers.NewModuleHandler(moduleUC),
		Dashboard:   handlers.NewDashboardHandler(dashboardUC),
		Knowledge:   handlers.NewKnowledgeHandler(knowledgeUC),
		Convo:       handlers.NewConversationHandler(conversationUC),
		Webhook:     handlers.NewWebhookHandler(webhookUC, zl),
		AppURL:      cfg.AppURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	sugar.Infow("🔥 Server rodando", "app", cfg.AppName, "port", cfg.Port, "ai", ai.Name())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("❌ Erro no servidor", "error", err)
	}
	sugar.Infow("⚠️ Server encerrado")
}

// newAIProvider escolhe o LLM pelo LLM_PROVIDER e cai para o outro se faltar chave.
func newAIProvider(ctx context.Context, cfg *config.Config, zl *zap.Logger) usecase.AIProvider {
	build := map[string]func() (usecase.AIProvider, error){
		"gemini": func() (usecase.AIProvider, error) {
			if cfg.GeminiAPIKey == "" {
				return nil, errors.New("GEMINI_API_KEY não configurada")
			}
			return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, zl)
		},
		"chatgpt": func() (usecase.AIProvider, error) {
			return chatgpt.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, zl)
		},
	}

	order := []string{"gemini", "chatgpt"}
	if cfg.LLMProvider == "chatgpt" || cfg.LLMProvider == "openai" {
		order = []string{"chatgpt", "gemini"}
	}
	for _, name := range order {
		p, err := build[name]()
		if err == nil {
			return p
		}
		zl.Sugar().Warnw("⚠️ Provedor de IA indisponível", "provider", name, "error", err)
	}
	return assistant.Unavailable{}
}

// embedderFor usa o mesmo provedor do chat para os embeddings da base de conhecimento.
func embedderFor(ai usecase.AIProvider) usecase.Embedder {
	if e, ok := ai.(usecase.Embedder); ok {
		return e
	}
	return assistant.Unavailable{}
}

func webhookURL(base string) string {
	if base == "" {
		return ""
	}
	return base + "/webhooks/whatsapp"
}

func gatewayFlags(cfg *config.Config, wa *uazapi.Client, ai usecase.AIProvider) map[string]bool {
	return map[string]bool{
		"uazapi":    wa.Configured(),
		"clinicorp": cfg.ClinicorpClientID != "",
		"llm":       ai.Name() != "none",
		"mail":      cfg.MailHost != "",
	}
}

// meteredProcessor conta as mensagens atendidas por intenção.
type meteredProcessor struct {
	uc *usecase.ProcessMessageUseCase
}

func (p meteredProcessor) Process(ctx context.Context, payload queue.InboundMessagePayload) error {
	out, err := p.uc.Execute(ctx, payload)
	if err != nil {
		return err
	}
	middleware.RecordMessageProcessed(out.Intent)
	return nil
}
