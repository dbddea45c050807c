package entity

import (
	"context"
	"database/sql/driver"
	"time"
)

type DocumentType string

const (
	DocumentPrice     DocumentType = "preco"
	DocumentPolicy    DocumentType = "politica"
	DocumentProcedure DocumentType = "procedimento"
	DocumentFAQ       DocumentType = "faq"
	DocumentOther     DocumentType = "outro"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentPrice, DocumentPolicy, DocumentProcedure, DocumentFAQ, DocumentOther:
		return true
	}
	return false
}

func (t *DocumentType) Scan(src interface{}) error {
	str, err := scanString(src, "DocumentType")
	if err != nil {
		return err
	}
	if str == "" {
		*t = DocumentOther
		return nil
	}
	*t = DocumentType(str)
	return nil
}

func (t DocumentType) Value() (driver.Value, error) {
	return string(t), nil
}

// KnowledgeDocument espelha `documentos_conhecimento`. Remover só desativa.
type KnowledgeDocument struct {
	ID        string       `json:"id"`
	ClinicID  string       `json:"clinica_id"`
	Title     string       `json:"titulo"`
	Type      DocumentType `json:"tipo"`
	Content   string       `json:"conteudo,omitempty"`
	Active    bool         `json:"ativo"`
	CreatedAt time.Time    `json:"criado_em"`
}

// KnowledgeChunk é um trecho do documento com seu embedding.
type KnowledgeChunk struct {
	DocumentID    string
	DocumentTitle string
	Index         int
	Text          string
	Embedding     []float32
}

type KnowledgeMatch struct {
	DocumentID string  `json:"documento_id"`
	Title      string  `json:"titulo"`
	ChunkText  string  `json:"chunk_text"`
	Similarity float64 `json:"similarity"`
}

type KnowledgeRepositoryInterface interface {
	CreateDocument(ctx context.Context, doc *KnowledgeDocument) error
	SaveChunks(ctx context.Context, documentID string, chunks []KnowledgeChunk) error
	ListActive(ctx context.Context, clinicID string) ([]KnowledgeDocument, error)
	Deactivate(ctx context.Context, clinicID, documentID string) error
	// ActiveChunks devolve os trechos dos documentos ativos da clínica.
	ActiveChunks(ctx context.Context, clinicID string) ([]KnowledgeChunk, error)
}
