package entity

import (
	"context"
	"time"
)

type Sender string

const (
	SenderUser   Sender = "user"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

func (s Sender) IsValid() bool {
	switch s {
	case SenderUser, SenderAgent, SenderSystem:
		return true
	}
	return false
}

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageAudio MessageType = "audio"
)

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
	MessageFailed    MessageStatus = "failed"
)

// Status de atendimento da conversa (fora do funil).
const (
	ChatOpen         = "open"
	ChatClosed       = "closed"
	ChatWaitingHuman = "waiting_human"
)

// ChatContact é a linha da lista de conversas.
type ChatContact struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
	Tags            []string  `json:"tags"`
	Status          string    `json:"status,omitempty"`
}

type ChatMessage struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Sender    Sender        `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
	Type      MessageType   `json:"type"`
	Status    MessageStatus `json:"status,omitempty"`
}

// Chat é a conversa persistida, com o paciente e o estado de triagem da IA.
type Chat struct {
	ID             string    `json:"id"`
	ClinicID       string    `json:"clinic_id"`
	PatientName    string    `json:"patient_name"`
	WhatsAppNumber string    `json:"whatsapp_number"`
	Source         string    `json:"source"`
	Status         string    `json:"status"`
	Intent         string    `json:"intent"`
	Urgency        string    `json:"urgency"`
	Tags           []string  `json:"tags"`
	LastMessageAt  time.Time `json:"last_message_at"`
}

type ChatRepositoryInterface interface {
	ListContacts(ctx context.Context, clinicID string) ([]ChatContact, error)
	FindByID(ctx context.Context, id string) (*Chat, error)
	FindByNumber(ctx context.Context, clinicID, number string) (*Chat, error)
	Create(ctx context.Context, chat *Chat) error
	Messages(ctx context.Context, chatID string, limit int) ([]ChatMessage, error)
	AppendMessage(ctx context.Context, chatID string, msg *ChatMessage) error
	UpdateTriage(ctx context.Context, chatID, intent, urgency, status string) error
}
