package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// KnowledgeRepository usa `documentos_conhecimento` e `embeddings_conhecimento`.
// O embedding fica em real[]; a similaridade é calculada no use case.
type KnowledgeRepository struct {
	DB *sql.DB
}

func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository {
	return &KnowledgeRepository{DB: db}
}

func (r *KnowledgeRepository) CreateDocument(ctx context.Context, doc *entity.KnowledgeDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO documentos_conhecimento (id, clinica_id, titulo, tipo, conteudo, ativo, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doc.ID, doc.ClinicID, doc.Title, doc.Type, doc.Content, doc.Active, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao criar documento: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) SaveChunks(ctx context.Context, documentID string, chunks []entity.KnowledgeChunk) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings_conhecimento (documento_id, chunk_index, chunk_text, embedding)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("erro ao preparar trechos: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, documentID, c.Index, c.Text, pq.Array(c.Embedding)); err != nil {
			return fmt.Errorf("erro ao gravar trecho %d: %w", c.Index, err)
		}
	}
	return tx.Commit()
}

func (r *KnowledgeRepository) ListActive(ctx context.Context, clinicID string) ([]entity.KnowledgeDocument, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, clinica_id, titulo, tipo, ativo, criado_em
		FROM documentos_conhecimento
		WHERE clinica_id = $1 AND ativo
		ORDER BY criado_em DESC
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar documentos: %w", err)
	}
	defer rows.Close()

	docs := make([]entity.KnowledgeDocument, 0)
	for rows.Next() {
		var d entity.KnowledgeDocument
		if err := rows.Scan(&d.ID, &d.ClinicID, &d.Title, &d.Type, &d.Active, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler documento: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *KnowledgeRepository) Deactivate(ctx context.Context, clinicID, documentID string) error {
	if _, err := uuid.Parse(documentID); err != nil {
		return entity.ErrDocumentNotFound
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documentos_conhecimento SET ativo = false WHERE id = $1 AND clinica_id = $2`,
		documentID, clinicID,
	)
	if err != nil {
		return fmt.Errorf("erro ao desativar documento: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *KnowledgeRepository) ActiveChunks(ctx context.Context, clinicID string) ([]entity.KnowledgeChunk, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT e.documento_id, d.titulo, e.chunk_index, e.chunk_text, e.embedding
		FROM embeddings_conhecimento e
		JOIN documentos_conhecimento d ON d.id = e.documento_id
		WHERE d.clinica_id = $1 AND d.ativo
		ORDER BY d.criado_em DESC, e.chunk_index
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar trechos: %w", err)
	}
	defer rows.Close()

	chunks := make([]entity.KnowledgeChunk, 0)
	for rows.Next() {
		var c entity.KnowledgeChunk
		if err := rows.Scan(&c.DocumentID, &c.DocumentTitle, &c.Index, &c.Text, pq.Array(&c.Embedding)); err != nil {
			return nil, fmt.Errorf("erro ao ler trecho: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
