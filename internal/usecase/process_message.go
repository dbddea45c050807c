package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/uazapi"
	"github.com/xavierca1/bemquerer-hub/internal/infra/queue"
)

type ProcessMessageOutput struct {
	ChatID     string `json:"chat_id"`
	Response   string `json:"response"`
	Intent     string `json:"intent"`
	Urgency    string `json:"urgency"`
	NeedsHuman bool   `json:"needs_human"`
}

// ProcessMessageUseCase é o atendimento automático de uma mensagem recebida no WhatsApp.
type ProcessMessageUseCase struct {
	Chats    entity.ChatRepositoryInterface
	AI       AIProvider
	WhatsApp WhatsAppGateway
	Now      func() time.Time
	log      *zap.SugaredLogger
}

func NewProcessMessageUseCase(chats entity.ChatRepositoryInterface, ai AIProvider, wa WhatsAppGateway, log *zap.Logger) *ProcessMessageUseCase {
	return &ProcessMessageUseCase{Chats: chats, AI: ai, WhatsApp: wa, Now: time.Now, log: log.Sugar()}
}

// Process satisfaz queue.MessageHandler.
func (uc *ProcessMessageUseCase) Process(ctx context.Context, payload queue.InboundMessagePayload) error {
	_, err := uc.Execute(ctx, payload)
	return err
}

func (uc *ProcessMessageUseCase) Execute(ctx context.Context, in queue.InboundMessagePayload) (*ProcessMessageOutput, error) {
	// 1. Conversa aberta do número (ou nova, com a origem detectada)
	chat, err := uc.Chats.FindByNumber(ctx, in.ClinicID, in.Phone)
	if errors.Is(err, entity.ErrChatNotFound) {
		chat = &entity.Chat{
			ClinicID:       in.ClinicID,
			PatientName:    in.Name,
			WhatsAppNumber: in.Phone,
			Source:         DetectSource(in.Text),
			Status:         entity.ChatOpen,
			Intent:         "question",
			Urgency:        "normal",
			Tags:           []string{},
			LastMessageAt:  uc.Now(),
		}
		if err = uc.Chats.Create(ctx, chat); err == nil {
			uc.log.Infow("🆕 Nova conversa", "chat_id", chat.ID, "source", chat.Source)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao obter conversa: %w", err)
	}

	history, err := uc.Chats.Messages(ctx, chat.ID, historyLimit)
	if err != nil {
		uc.log.Warnw("⚠️ Histórico indisponível", "chat_id", chat.ID, "error", err)
	}

	// 2. Mensagem do paciente
	userMsg := entity.ChatMessage{
		ID:        uuid.NewString(),
		Content:   in.Text,
		Sender:    entity.SenderUser,
		Timestamp: in.ReceivedAt,
		Type:      entity.MessageText,
		Status:    entity.MessageDelivered,
	}
	if userMsg.Timestamp.IsZero() {
		userMsg.Timestamp = uc.Now()
	}
	if err := uc.Chats.AppendMessage(ctx, chat.ID, &userMsg); err != nil {
		return nil, fmt.Errorf("erro ao salvar mensagem recebida: %w", err)
	}

	// 3. Análise da IA
	analysis, err := uc.AI.Analyze(ctx, assistant.History(history), in.Text, chat.PatientName)
	if err != nil {
		uc.log.Errorw("❌ Falha na análise da IA, transferindo para humano", "provider", uc.AI.Name(), "chat_id", chat.ID, "error", err)
		analysis = assistant.Fallback()
	}

	// 4. Resposta e triagem
	aiMsg := entity.ChatMessage{
		ID:        uuid.NewString(),
		Content:   analysis.Response,
		Sender:    entity.SenderAgent,
		Timestamp: uc.Now(),
		Type:      entity.MessageText,
		Status:    entity.MessageSent,
	}
	if err := uc.Chats.AppendMessage(ctx, chat.ID, &aiMsg); err != nil {
		return nil, fmt.Errorf("erro ao salvar resposta: %w", err)
	}

	status := chat.Status
	if analysis.NeedsHuman {
		status = entity.ChatWaitingHuman
	}
	if err := uc.Chats.UpdateTriage(ctx, chat.ID, analysis.Intent, analysis.Urgency, status); err != nil {
		uc.log.Errorw("❌ Erro ao atualizar triagem", "chat_id", chat.ID, "error", err)
	}

	out := &ProcessMessageOutput{
		ChatID:     chat.ID,
		Response:   analysis.Response,
		Intent:     analysis.Intent,
		Urgency:    analysis.Urgency,
		NeedsHuman: analysis.NeedsHuman,
	}

	// 5. Humano assume: não responde automaticamente
	if analysis.NeedsHuman {
		uc.log.Infow("🙋 Conversa aguardando atendente", "chat_id", chat.ID, "intent", analysis.Intent)
		return out, nil
	}

	if _, err := uc.WhatsApp.SendText(ctx, uazapi.SendTextInput{Number: in.Phone, Text: analysis.Response}); err != nil {
		return nil, fmt.Errorf("erro ao enviar resposta pelo WhatsApp: %w", err)
	}

	uc.log.Infow("✅ Mensagem respondida", "chat_id", chat.ID, "intent", analysis.Intent, "urgency", analysis.Urgency)
	return out, nil
}

type WebhookResult struct {
	Status string `json:"status"`
	Queued bool   `json:"queued,omitempty"`
}

// ReceiveWebhookUseCase recebe o evento da UazAPI e enfileira a mensagem.
// Sem fila disponível, processa na hora.
type ReceiveWebhookUseCase struct {
	Publisher InboundPublisher
	Processor *ProcessMessageUseCase
	ClinicID  string
	Now       func() time.Time
	log       *zap.SugaredLogger
}

func NewReceiveWebhookUseCase(pub InboundPublisher, processor *ProcessMessageUseCase, clinicID string, log *zap.Logger) *ReceiveWebhookUseCase {
	return &ReceiveWebhookUseCase{Publisher: pub, Processor: processor, ClinicID: clinicID, Now: time.Now, log: log.Sugar()}
}

func (uc *ReceiveWebhookUseCase) Execute(ctx context.Context, event uazapi.WebhookEvent) (*WebhookResult, error) {
	msg, ok := event.Parse()
	if !ok {
		return &WebhookResult{Status: "ignored"}, nil
	}
	if msg.FromMe {
		return &WebhookResult{Status: "ignored"}, nil
	}

	payload := queue.InboundMessagePayload{
		ClinicID:   uc.ClinicID,
		Phone:      msg.Phone,
		Name:       msg.Name,
		Text:       msg.Text,
		MessageID:  msg.MessageID,
		ReceivedAt: uc.Now(),
	}
	uc.log.Infow("📥 Mensagem recebida do WhatsApp", "phone", msg.Phone, "message_id", msg.MessageID)

	if uc.Publisher != nil {
		err := uc.Publisher.PublishInbound(ctx, payload)
		if err == nil {
			return &WebhookResult{Status: "received", Queued: true}, nil
		}
		uc.log.Warnw("⚠️ Fila indisponível, processando direto", "error", err)
	}

	if _, err := uc.Processor.Execute(ctx, payload); err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "erro ao processar mensagem", Err: err}
	}
	return &WebhookResult{Status: "processed"}, nil
}
