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

const (
	threadHistoryLimit  = 20
	threadMessagesLimit = 100
	defaultThreadList   = 50
	maxThreadList       = 100
	newThreadTitle      = "Nova Conversa"
)

// KnowledgeContext devolve trechos da base de conhecimento para o prompt.
type KnowledgeContext interface {
	Context(ctx context.Context, clinicID, query string) string
}

type ThreadChatInput struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
	ClinicID string `json:"clinica_id"`
	UserID   string `json:"user_id"`
}

type ThreadChatOutput struct {
	ThreadID  string    `json:"thread_id"`
	MessageID string    `json:"message_id"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationUseCase conduz as conversas internas da equipe com a Carol.
type ConversationUseCase struct {
	Threads   entity.ThreadRepositoryInterface
	AI        AIProvider
	Knowledge KnowledgeContext
	Now       func() time.Time
	log       *zap.SugaredLogger
}

func NewConversationUseCase(threads entity.ThreadRepositoryInterface, ai AIProvider, log *zap.Logger) *ConversationUseCase {
	return &ConversationUseCase{Threads: threads, AI: ai, Now: time.Now, log: log.Sugar()}
}

func (uc *ConversationUseCase) WithKnowledge(k KnowledgeContext) *ConversationUseCase {
	uc.Knowledge = k
	return uc
}

// Chat responde na thread informada ou abre uma nova quando thread_id vem vazio.
func (uc *ConversationUseCase) Chat(ctx context.Context, input ThreadChatInput) (*ThreadChatOutput, error) {
	var errs []ValidationError
	errs = append(errs, required("message", input.Message)...)
	errs = append(errs, required("clinica_id", input.ClinicID)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(input.Message)

	// 1. Thread
	thread, err := uc.openThread(ctx, input)
	if err != nil {
		return nil, err
	}

	// 2. Histórico
	history, err := uc.Threads.History(ctx, thread.ID, threadHistoryLimit)
	if err != nil {
		uc.log.Warnw("⚠️ Histórico da thread indisponível", "thread_id", thread.ID, "error", err)
		history = nil
	}

	// 3. Mensagem do usuário
	userMsg := &entity.ThreadMessage{ID: uuid.NewString(), ThreadID: thread.ID, Role: entity.ThreadRoleUser, Content: message, CreatedAt: uc.Now()}
	if err := uc.Threads.AppendMessage(ctx, userMsg); err != nil {
		return nil, databaseError("erro ao salvar mensagem", err)
	}

	// 4. Resposta da Carol
	prompt := message
	if uc.Knowledge != nil {
		if kctx := uc.Knowledge.Context(ctx, thread.ClinicID, message); kctx != "" {
			prompt += "\n\nBase de conhecimento da clínica:\n" + kctx
		}
	}
	reply, err := uc.AI.Reply(ctx, threadTurns(history), prompt, "")
	if err != nil {
		uc.log.Errorw("❌ Falha no provedor de IA", "provider", uc.AI.Name(), "thread_id", thread.ID, "error", err)
		reply = assistant.FallbackReply
	}

	// 5. Resposta salva
	aiMsg := &entity.ThreadMessage{ID: uuid.NewString(), ThreadID: thread.ID, Role: entity.ThreadRoleAssistant, Content: reply, CreatedAt: uc.Now()}
	if err := uc.Threads.AppendMessage(ctx, aiMsg); err != nil {
		return nil, databaseError("erro ao salvar resposta", err)
	}

	return &ThreadChatOutput{ThreadID: thread.ID, MessageID: aiMsg.ID, Response: reply, CreatedAt: aiMsg.CreatedAt}, nil
}

func (uc *ConversationUseCase) openThread(ctx context.Context, input ThreadChatInput) (*entity.Thread, error) {
	if input.ThreadID != "" {
		thread, err := uc.find(ctx, input.ClinicID, input.ThreadID)
		if err != nil {
			return nil, err
		}
		if thread.Status == entity.ThreadArchived {
			return nil, &DomainError{Code: CodeThreadArchived, Message: "Conversa arquivada"}
		}
		return thread, nil
	}

	now := uc.Now()
	thread := &entity.Thread{
		ClinicID:  input.ClinicID,
		UserID:    input.UserID,
		Title:     newThreadTitle,
		Channel:   "chat",
		Status:    entity.ThreadActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Threads.Create(ctx, thread); err != nil {
		return nil, databaseError("erro ao criar conversa", err)
	}
	uc.log.Infow("💬 Nova conversa com a Carol", "thread_id", thread.ID, "clinic_id", thread.ClinicID)
	return thread, nil
}

// find só devolve threads da própria clínica.
func (uc *ConversationUseCase) find(ctx context.Context, clinicID, threadID string) (*entity.Thread, error) {
	thread, err := uc.Threads.FindByID(ctx, threadID)
	if errors.Is(err, entity.ErrThreadNotFound) || (err == nil && thread.ClinicID != clinicID) {
		return nil, &DomainError{Code: CodeThreadNotFound, Message: "Conversa não encontrada"}
	}
	if err != nil {
		return nil, databaseError("erro ao buscar conversa", err)
	}
	return thread, nil
}

func (uc *ConversationUseCase) ListThreads(ctx context.Context, clinicID string, limit int) ([]entity.Thread, error) {
	if limit <= 0 {
		limit = defaultThreadList
	}
	limit = min(limit, maxThreadList)

	threads, err := uc.Threads.ListByClinic(ctx, clinicID, limit)
	if err != nil {
		return nil, databaseError("erro ao listar conversas", err)
	}
	if threads == nil {
		threads = []entity.Thread{}
	}
	return threads, nil
}

func (uc *ConversationUseCase) Messages(ctx context.Context, clinicID, threadID string) ([]entity.ThreadMessage, error) {
	if _, err := uc.find(ctx, clinicID, threadID); err != nil {
		return nil, err
	}
	msgs, err := uc.Threads.History(ctx, threadID, threadMessagesLimit)
	if err != nil {
		return nil, databaseError("erro ao carregar mensagens", err)
	}
	if msgs == nil {
		msgs = []entity.ThreadMessage{}
	}
	return msgs, nil
}

// Archive é exclusão lógica; arquivar de novo não é erro.
func (uc *ConversationUseCase) Archive(ctx context.Context, clinicID, threadID string) error {
	if _, err := uc.find(ctx, clinicID, threadID); err != nil {
		return err
	}
	if err := uc.Threads.Archive(ctx, threadID); err != nil {
		return databaseError("erro ao arquivar conversa", err)
	}
	uc.log.Infow("🗄️ Conversa arquivada", "thread_id", threadID)
	return nil
}

// threadTurns mantém só usuário e assistente.
func threadTurns(msgs []entity.ThreadMessage) []assistant.Turn {
	turns := make([]assistant.Turn, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case entity.ThreadRoleUser:
			turns = append(turns, assistant.Turn{Role: assistant.RoleUser, Content: m.Content})
		case entity.ThreadRoleAssistant:
			turns = append(turns, assistant.Turn{Role: assistant.RoleAssistant, Content: m.Content})
		}
	}
	return turns
}
