package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
)

// historyLimit é quantas mensagens são lidas do banco para montar o contexto.
const historyLimit = 10

type SendMessageInput struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type SendMessageOutput struct {
	Response    string             `json:"response"`
	UserMessage entity.ChatMessage `json:"user_message"`
	AIMessage   entity.ChatMessage `json:"ai_message"`
}

type ChatUseCase struct {
	Chats entity.ChatRepositoryInterface
	AI    AIProvider
	Now   func() time.Time
	log   *zap.SugaredLogger
}

func NewChatUseCase(chats entity.ChatRepositoryInterface, ai AIProvider, log *zap.Logger) *ChatUseCase {
	return &ChatUseCase{Chats: chats, AI: ai, Now: time.Now, log: log.Sugar()}
}

func (uc *ChatUseCase) List(ctx context.Context, clinicID string) ([]entity.ChatContact, error) {
	contacts, err := uc.Chats.ListContacts(ctx, clinicID)
	if err != nil {
		return nil, databaseError("erro ao listar conversas", err)
	}
	if contacts == nil {
		contacts = []entity.ChatContact{}
	}
	return contacts, nil
}

func (uc *ChatUseCase) Messages(ctx context.Context, chatID string) ([]entity.ChatMessage, error) {
	msgs, err := uc.Chats.Messages(ctx, chatID, 0)
	if err != nil {
		return nil, databaseError("erro ao carregar mensagens", err)
	}
	if msgs == nil {
		msgs = []entity.ChatMessage{}
	}
	return msgs, nil
}

func (uc *ChatUseCase) Send(ctx context.Context, input SendMessageInput) (*SendMessageOutput, error) {
	var errs []ValidationError
	errs = append(errs, required("chat_id", input.ChatID)...)
	errs = append(errs, required("message", input.Message)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	// 1. Conversa
	chat, err := uc.Chats.FindByID(ctx, input.ChatID)
	if errors.Is(err, entity.ErrChatNotFound) {
		return nil, &DomainError{Code: CodeChatNotFound, Message: "Chat not found"}
	}
	if err != nil {
		return nil, databaseError("erro ao buscar conversa", err)
	}

	history, err := uc.Chats.Messages(ctx, chat.ID, historyLimit)
	if err != nil {
		uc.log.Warnw("⚠️ Histórico indisponível, seguindo sem contexto", "chat_id", chat.ID, "error", err)
		history = nil
	}

	// 2. Mensagem do usuário
	userMsg := entity.ChatMessage{
		ID:        uuid.NewString(),
		Content:   strings.TrimSpace(input.Message),
		Sender:    entity.SenderUser,
		Timestamp: uc.Now(),
		Type:      entity.MessageText,
		Status:    entity.MessageSent,
	}
	if err := uc.Chats.AppendMessage(ctx, chat.ID, &userMsg); err != nil {
		return nil, databaseError("erro ao salvar mensagem", err)
	}

	// 3. Resposta da IA
	reply, err := uc.AI.Reply(ctx, assistant.History(history), userMsg.Content, chat.PatientName)
	if err != nil {
		uc.log.Errorw("❌ Falha no provedor de IA", "provider", uc.AI.Name(), "chat_id", chat.ID, "error", err)
		reply = assistant.FallbackReply
	}

	aiMsg := entity.ChatMessage{
		ID:        uuid.NewString(),
		Content:   reply,
		Sender:    entity.SenderAgent,
		Timestamp: uc.Now(),
		Type:      entity.MessageText,
		Status:    entity.MessageSent,
	}
	if err := uc.Chats.AppendMessage(ctx, chat.ID, &aiMsg); err != nil {
		return nil, databaseError("erro ao salvar resposta", err)
	}

	return &SendMessageOutput{Response: reply, UserMessage: userMsg, AIMessage: aiMsg}, nil
}
