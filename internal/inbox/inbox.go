// Package inbox é a lista de conversas e o histórico da conversa aberta, com
// envio otimista.
package inbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/async"
	"github.com/xavierca1/bemquerer-hub/internal/client"
	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

const (
	DefaultLoadBound = 3 * time.Second
	SendFailedText   = "Falha ao enviar mensagem"
)

var (
	ErrEmptyMessage = errors.New("mensagem vazia")
	ErrNoChat       = errors.New("nenhuma conversa selecionada")
)

type Backend interface {
	ListChats(ctx context.Context) ([]entity.ChatContact, error)
	GetMessages(ctx context.Context, chatID string) ([]entity.ChatMessage, error)
	SendMessage(ctx context.Context, chatID, message string) (*client.ChatReply, error)
}

type Inbox struct {
	mu       sync.Mutex
	backend  Backend
	contacts []entity.ChatContact
	selected string
	messages []entity.ChatMessage
	bound    time.Duration
	now      func() time.Time
	closed   bool
	log      *zap.SugaredLogger
}

func New(backend Backend, log *zap.Logger) *Inbox {
	return &Inbox{backend: backend, bound: DefaultLoadBound, now: time.Now, log: log.Sugar()}
}

func (in *Inbox) WithLoadBound(d time.Duration) *Inbox {
	in.bound = d
	return in
}

func (in *Inbox) WithClock(now func() time.Time) *Inbox {
	in.now = now
	return in
}

// Load busca a lista com prazo. Falha ou atraso deixam a lista vazia.
func (in *Inbox) Load(ctx context.Context) error {
	contacts, err := async.FirstSettled(ctx, in.bound, in.backend.ListChats)

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	if err != nil {
		in.log.Warnw("⚠️ Conversas indisponíveis", "error", err)
		in.contacts = nil
		return err
	}
	in.contacts = contacts
	return nil
}

func (in *Inbox) Contacts() []entity.ChatContact {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]entity.ChatContact(nil), in.contacts...)
}

func (in *Inbox) Selected() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.selected
}

func (in *Inbox) Messages() []entity.ChatMessage {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]entity.ChatMessage(nil), in.messages...)
}

// Select abre uma conversa. Uma resposta que chegue depois de outra seleção é descartada.
func (in *Inbox) Select(ctx context.Context, chatID string) error {
	in.mu.Lock()
	in.selected = chatID
	in.messages = nil
	in.mu.Unlock()

	msgs, err := in.backend.GetMessages(ctx, chatID)

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed || in.selected != chatID {
		return nil
	}
	if err != nil {
		in.log.Warnw("❌ Erro ao carregar mensagens", "chat_id", chatID, "error", err)
		return err
	}
	in.messages = msgs
	in.markReadLocked(chatID)
	return nil
}

// Send acrescenta a mensagem na hora e depois a resposta do agente. Se o
// backend falhar, a mensagem fica como failed e entra um aviso de sistema.
func (in *Inbox) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	// 1. Otimista
	in.mu.Lock()
	chatID := in.selected
	if chatID == "" {
		in.mu.Unlock()
		return ErrNoChat
	}
	local := entity.ChatMessage{
		ID:        uuid.NewString(),
		Content:   text,
		Sender:    entity.SenderUser,
		Timestamp: in.now(),
		Type:      entity.MessageText,
		Status:    entity.MessageSent,
	}
	in.messages = append(in.messages, local)
	in.touchContactLocked(chatID, text, local.Timestamp)
	in.mu.Unlock()

	// 2. Backend
	reply, err := in.backend.SendMessage(ctx, chatID, text)

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed || in.selected != chatID {
		return err
	}

	// 3. Falha vira estado local
	if err != nil {
		in.log.Warnw("❌ Falha ao enviar mensagem", "chat_id", chatID, "error", err)
		in.setStatusLocked(local.ID, entity.MessageFailed)
		in.messages = append(in.messages, entity.ChatMessage{
			ID:        uuid.NewString(),
			Content:   SendFailedText,
			Sender:    entity.SenderSystem,
			Timestamp: in.now(),
			Type:      entity.MessageText,
		})
		return err
	}

	// 4. Resposta do agente
	agent := reply.AIMessage
	if agent.Content == "" {
		agent.Content = reply.Response
	}
	if agent.Content == "" {
		return nil
	}
	if agent.ID == "" {
		agent.ID = uuid.NewString()
	}
	if agent.Timestamp.IsZero() {
		agent.Timestamp = in.now()
	}
	agent.Sender = entity.SenderAgent
	if agent.Type == "" {
		agent.Type = entity.MessageText
	}
	in.messages = append(in.messages, agent)
	in.touchContactLocked(chatID, agent.Content, agent.Timestamp)
	return nil
}

func (in *Inbox) Close() {
	in.mu.Lock()
	in.closed = true
	in.mu.Unlock()
}

func (in *Inbox) setStatusLocked(id string, status entity.MessageStatus) {
	for i := range in.messages {
		if in.messages[i].ID == id {
			in.messages[i].Status = status
			return
		}
	}
}

func (in *Inbox) touchContactLocked(chatID, text string, at time.Time) {
	for i := range in.contacts {
		if in.contacts[i].ID == chatID {
			in.contacts[i].LastMessage = text
			in.contacts[i].LastMessageTime = at
			return
		}
	}
}

func (in *Inbox) markReadLocked(chatID string) {
	for i := range in.contacts {
		if in.contacts[i].ID == chatID {
			in.contacts[i].UnreadCount = 0
			return
		}
	}
}
