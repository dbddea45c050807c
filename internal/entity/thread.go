package entity

import (
	"context"
	"time"
)

type ThreadStatus string

const (
	ThreadActive   ThreadStatus = "ativa"
	ThreadArchived ThreadStatus = "arquivada"
)

type ThreadRole string

const (
	ThreadRoleUser      ThreadRole = "user"
	ThreadRoleAssistant ThreadRole = "assistant"
	ThreadRoleSystem    ThreadRole = "system"
)

// Thread é uma conversa da equipe com a Carol, fora do WhatsApp.
type Thread struct {
	ID        string       `json:"id"`
	ClinicID  string       `json:"clinica_id"`
	UserID    string       `json:"user_id,omitempty"`
	Title     string       `json:"titulo"`
	Channel   string       `json:"canal"`
	Status    ThreadStatus `json:"status"`
	CreatedAt time.Time    `json:"criado_em"`
	UpdatedAt time.Time    `json:"atualizado_em"`
}

type ThreadMessage struct {
	ID        string     `json:"id"`
	ThreadID  string     `json:"thread_id"`
	Role      ThreadRole `json:"role"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"criado_em"`
}

type ThreadRepositoryInterface interface {
	Create(ctx context.Context, t *Thread) error
	FindByID(ctx context.Context, id string) (*Thread, error)
	ListByClinic(ctx context.Context, clinicID string, limit int) ([]Thread, error)
	// History devolve as últimas `limit` mensagens em ordem cronológica.
	History(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error)
	AppendMessage(ctx context.Context, m *ThreadMessage) error
	Archive(ctx context.Context, id string) error
}
