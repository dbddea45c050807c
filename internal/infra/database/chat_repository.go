package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

type ChatRepository struct {
	DB *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

// No banco o remetente da IA é "ai".
func senderToDB(s entity.Sender) string {
	if s == entity.SenderAgent {
		return "ai"
	}
	return string(s)
}

func senderFromDB(s string) entity.Sender {
	switch s {
	case "ai", "assistant", "agent":
		return entity.SenderAgent
	case "system":
		return entity.SenderSystem
	default:
		return entity.SenderUser
	}
}

func (r *ChatRepository) ListContacts(ctx context.Context, clinicID string) ([]entity.ChatContact, error) {
	query := `
		SELECT c.id, COALESCE(p.name, c.whatsapp_number, 'Desconhecido'),
		       COALESCE(lm.content, ''), COALESCE(lm.created_at, c.last_message_at, c.created_at),
		       COALESCE(c.unread_count, 0), COALESCE(c.tags, '{}'), COALESCE(c.status, '')
		FROM chats c
		LEFT JOIN patients p ON p.id = c.patient_id
		LEFT JOIN LATERAL (
			SELECT m.content, m.created_at FROM messages m
			WHERE m.chat_id = c.id ORDER BY m.created_at DESC LIMIT 1
		) lm ON true
		WHERE c.clinic_id = $1
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar chats: %w", err)
	}
	defer rows.Close()

	contacts := make([]entity.ChatContact, 0)
	for rows.Next() {
		var c entity.ChatContact
		if err := rows.Scan(&c.ID, &c.Name, &c.LastMessage, &c.LastMessageTime,
			&c.UnreadCount, pq.Array(&c.Tags), &c.Status); err != nil {
			return nil, fmt.Errorf("erro ao ler chat: %w", err)
		}
		if c.Tags == nil {
			c.Tags = []string{}
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

const chatColumns = `
	c.id, c.clinic_id, COALESCE(p.name, ''), COALESCE(c.whatsapp_number, ''),
	COALESCE(p.source, ''), COALESCE(c.status, ''), COALESCE(c.intent, ''), COALESCE(c.urgency, ''),
	COALESCE(c.tags, '{}'), COALESCE(c.last_message_at, c.created_at)
`

func scanChat(row *sql.Row) (*entity.Chat, error) {
	var c entity.Chat
	err := row.Scan(&c.ID, &c.ClinicID, &c.PatientName, &c.WhatsAppNumber,
		&c.Source, &c.Status, &c.Intent, &c.Urgency, pq.Array(&c.Tags), &c.LastMessageAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler chat: %w", err)
	}
	return &c, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*entity.Chat, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrChatNotFound
	}
	return scanChat(r.DB.QueryRowContext(ctx, `
		SELECT `+chatColumns+`
		FROM chats c LEFT JOIN patients p ON p.id = c.patient_id
		WHERE c.id = $1
	`, id))
}

// FindByNumber devolve a conversa ativa mais recente do número.
func (r *ChatRepository) FindByNumber(ctx context.Context, clinicID, number string) (*entity.Chat, error) {
	return scanChat(r.DB.QueryRowContext(ctx, `
		SELECT `+chatColumns+`
		FROM chats c LEFT JOIN patients p ON p.id = c.patient_id
		WHERE c.clinic_id = $1 AND c.whatsapp_number = $2
		  AND COALESCE(c.status, 'open') NOT IN ('closed', 'won', 'lost')
		ORDER BY c.created_at DESC
		LIMIT 1
	`, clinicID, number))
}

// Create grava paciente e conversa numa transação.
func (r *ChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	name := chat.PatientName
	if name == "" {
		name = chat.WhatsAppNumber
	}

	var patientID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO patients (clinic_id, name, phone, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (clinic_id, phone) DO UPDATE SET name = COALESCE(NULLIF(EXCLUDED.name, ''), patients.name)
		RETURNING id
	`, chat.ClinicID, name, chat.WhatsAppNumber, nullString(chat.Source)).Scan(&patientID)
	if err != nil {
		return fmt.Errorf("erro ao criar paciente: %w", err)
	}

	if chat.Tags == nil {
		chat.Tags = []string{}
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO chats (clinic_id, patient_id, whatsapp_number, status, intent, urgency, tags, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, last_message_at
	`, chat.ClinicID, patientID, chat.WhatsAppNumber, chat.Status, chat.Intent, chat.Urgency, pq.Array(chat.Tags)).
		Scan(&chat.ID, &chat.LastMessageAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chat duplicado para %s: %w", chat.WhatsAppNumber, err)
		}
		return fmt.Errorf("erro ao criar chat: %w", err)
	}

	return tx.Commit()
}

// Messages devolve as mensagens em ordem cronológica. limit 0 devolve todas.
func (r *ChatRepository) Messages(ctx context.Context, chatID string, limit int) ([]entity.ChatMessage, error) {
	if _, err := uuid.Parse(chatID); err != nil {
		return []entity.ChatMessage{}, nil
	}

	query := `
		SELECT id, content, sender_type, created_at, COALESCE(message_type, 'text'), COALESCE(status, 'sent')
		FROM messages WHERE chat_id = $1 ORDER BY created_at ASC
	`
	args := []any{chatID}
	if limit > 0 {
		query = `
			SELECT * FROM (
				SELECT id, content, sender_type, created_at, COALESCE(message_type, 'text'), COALESCE(status, 'sent')
				FROM messages WHERE chat_id = $1 ORDER BY created_at DESC LIMIT $2
			) recent ORDER BY created_at ASC
		`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar mensagens: %w", err)
	}
	defer rows.Close()

	msgs := make([]entity.ChatMessage, 0)
	for rows.Next() {
		var (
			m      entity.ChatMessage
			sender string
		)
		if err := rows.Scan(&m.ID, &m.Content, &sender, &m.Timestamp, &m.Type, &m.Status); err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		m.Sender = senderFromDB(sender)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *ChatRepository) AppendMessage(ctx context.Context, chatID string, msg *entity.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Type == "" {
		msg.Type = entity.MessageText
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, clinic_id, chat_id, content, message_type, sender_type, status, created_at)
		SELECT $1, c.clinic_id, c.id, $3, $4, $5, $6, $7 FROM chats c WHERE c.id = $2
	`, msg.ID, chatID, msg.Content, msg.Type, senderToDB(msg.Sender), nullString(string(msg.Status)), msg.Timestamp)
	if err != nil {
		return fmt.Errorf("erro ao gravar mensagem: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE chats SET last_message_at = $1 WHERE id = $2`, msg.Timestamp, chatID); err != nil {
		return fmt.Errorf("erro ao atualizar chat: %w", err)
	}
	return tx.Commit()
}

// UpdateTriage grava o resultado da análise. Campos vazios não são alterados.
func (r *ChatRepository) UpdateTriage(ctx context.Context, chatID, intent, urgency, status string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE chats SET
			intent = COALESCE($2, intent),
			urgency = COALESCE($3, urgency),
			status = COALESCE($4, status)
		WHERE id = $1
	`, chatID, nullString(intent), nullString(urgency), nullString(status))
	if err != nil {
		return fmt.Errorf("erro ao atualizar triagem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrChatNotFound
	}
	return nil
}
