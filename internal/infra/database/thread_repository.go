package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// ThreadRepository usa `conversation_threads` e `conversation_messages`.
type ThreadRepository struct {
	DB *sql.DB
}

func NewThreadRepository(db *sql.DB) *ThreadRepository {
	return &ThreadRepository{DB: db}
}

const threadColumns = `id, clinica_id, COALESCE(user_id::text, ''), titulo, canal, status, criado_em, atualizado_em`

func scanThread(s rowScanner) (*entity.Thread, error) {
	var (
		t      entity.Thread
		status string
	)
	if err := s.Scan(&t.ID, &t.ClinicID, &t.UserID, &t.Title, &t.Channel, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = entity.ThreadStatus(status)
	return &t, nil
}

func (r *ThreadRepository) Create(ctx context.Context, t *entity.Thread) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO conversation_threads (id, clinica_id, user_id, titulo, canal, status, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.ClinicID, nullString(t.UserID), t.Title, t.Channel, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao criar thread: %w", err)
	}
	return nil
}

func (r *ThreadRepository) FindByID(ctx context.Context, id string) (*entity.Thread, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrThreadNotFound
	}
	t, err := scanThread(r.DB.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM conversation_threads WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrThreadNotFound
	}
	return t, err
}

func (r *ThreadRepository) ListByClinic(ctx context.Context, clinicID string, limit int) ([]entity.Thread, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+threadColumns+` FROM conversation_threads
		WHERE clinica_id = $1
		ORDER BY atualizado_em DESC
		LIMIT $2
	`, clinicID, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar threads: %w", err)
	}
	defer rows.Close()

	threads := make([]entity.Thread, 0)
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler thread: %w", err)
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

func (r *ThreadRepository) History(ctx context.Context, threadID string, limit int) ([]entity.ThreadMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, thread_id, role, content, criado_em FROM (
			SELECT id, thread_id, role, content, criado_em
			FROM conversation_messages
			WHERE thread_id = $1
			ORDER BY criado_em DESC
			LIMIT $2
		) recent
		ORDER BY criado_em
	`, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar histórico: %w", err)
	}
	defer rows.Close()

	msgs := make([]entity.ThreadMessage, 0)
	for rows.Next() {
		var (
			m    entity.ThreadMessage
			role string
		)
		if err := rows.Scan(&m.ID, &m.ThreadID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		m.Role = entity.ThreadRole(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AppendMessage grava a mensagem e atualiza atualizado_em da thread.
func (r *ThreadRepository) AppendMessage(ctx context.Context, m *entity.ThreadMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, thread_id, role, content, criado_em)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.ThreadID, string(m.Role), m.Content, m.CreatedAt); err != nil {
		return fmt.Errorf("erro ao gravar mensagem: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversation_threads SET atualizado_em = $1 WHERE id = $2`, m.CreatedAt, m.ThreadID); err != nil {
		return fmt.Errorf("erro ao atualizar thread: %w", err)
	}
	return tx.Commit()
}

func (r *ThreadRepository) Archive(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE conversation_threads SET status = $1 WHERE id = $2`, string(entity.ThreadArchived), id)
	if err != nil {
		return fmt.Errorf("erro ao arquivar thread: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrThreadNotFound
	}
	return nil
}
