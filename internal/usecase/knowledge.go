package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

const (
	// chunkRunes aproxima 500 tokens por trecho.
	chunkRunes         = 2000
	defaultSearchLimit = 5
	maxSearchLimit     = 20
	contextChunks      = 3
)

type KnowledgeTextInput struct {
	ClinicID string              `json:"clinica_id"`
	Title    string              `json:"titulo"`
	Type     entity.DocumentType `json:"tipo"`
	Content  string              `json:"conteudo"`
}

type KnowledgeUploadInput struct {
	ClinicID string
	Filename string
	Title    string
	Type     entity.DocumentType
	Data     []byte
}

type KnowledgeIngestOutput struct {
	DocumentID string `json:"documento_id"`
	Title      string `json:"titulo"`
	Chunks     int    `json:"chunks_processados"`
	Message    string `json:"message"`
}

type KnowledgeSearchInput struct {
	Query    string `json:"query"`
	ClinicID string `json:"clinica_id"`
	Limit    int    `json:"limit"`
}

// KnowledgeUseCase mantém a base de conhecimento da clínica e a busca semântica
// usada para dar contexto à Carol.
type KnowledgeUseCase struct {
	Docs     entity.KnowledgeRepositoryInterface
	Embedder Embedder
	Now      func() time.Time
	log      *zap.SugaredLogger
}

func NewKnowledgeUseCase(docs entity.KnowledgeRepositoryInterface, embedder Embedder, log *zap.Logger) *KnowledgeUseCase {
	return &KnowledgeUseCase{Docs: docs, Embedder: embedder, Now: time.Now, log: log.Sugar()}
}

func (uc *KnowledgeUseCase) AddText(ctx context.Context, input KnowledgeTextInput) (*KnowledgeIngestOutput, error) {
	var errs []ValidationError
	errs = append(errs, required("clinica_id", input.ClinicID)...)
	errs = append(errs, required("titulo", input.Title)...)
	errs = append(errs, required("conteudo", input.Content)...)
	errs = append(errs, validDocumentType("tipo", input.Type)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}
	return uc.ingest(ctx, input)
}

// Upload aceita arquivos de texto (.txt, .md). O título padrão é o nome do arquivo.
func (uc *KnowledgeUseCase) Upload(ctx context.Context, input KnowledgeUploadInput) (*KnowledgeIngestOutput, error) {
	if strings.TrimSpace(input.ClinicID) == "" {
		return nil, validationError("clinica_id é obrigatório")
	}
	if input.Type == "" {
		input.Type = entity.DocumentOther
	}
	if err := joinValidation(validDocumentType("tipo", input.Type)); err != nil {
		return nil, err
	}

	text, err := extractText(input.Filename, input.Data)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.Filename
	}
	return uc.ingest(ctx, KnowledgeTextInput{ClinicID: input.ClinicID, Title: title, Type: input.Type, Content: text})
}

func (uc *KnowledgeUseCase) ingest(ctx context.Context, input KnowledgeTextInput) (*KnowledgeIngestOutput, error) {
	doc := &entity.KnowledgeDocument{
		ClinicID:  input.ClinicID,
		Title:     strings.TrimSpace(input.Title),
		Type:      input.Type,
		Content:   strings.TrimSpace(input.Content),
		Active:    true,
		CreatedAt: uc.Now(),
	}
	pieces := ChunkText(doc.Content, chunkRunes)

	// 1. Documento
	// 2. Embeddings dos trechos; se falhar, o documento é desativado
	tx := NewTransaction(uc.log)
	tx.AddOperation("insert_document", func(ctx context.Context) error {
		return uc.Docs.CreateDocument(ctx, doc)
	})
	tx.AddCompensation("deactivate_document", func(ctx context.Context) error {
		return uc.Docs.Deactivate(ctx, doc.ClinicID, doc.ID)
	})
	tx.AddOperation("embed_chunks", func(ctx context.Context) error {
		vecs, err := uc.Embedder.Embed(ctx, pieces)
		if err != nil {
			return err
		}
		if len(vecs) != len(pieces) {
			return fmt.Errorf("%d embeddings para %d trechos", len(vecs), len(pieces))
		}
		chunks := make([]entity.KnowledgeChunk, len(pieces))
		for i, p := range pieces {
			chunks[i] = entity.KnowledgeChunk{DocumentID: doc.ID, DocumentTitle: doc.Title, Index: i, Text: p, Embedding: vecs[i]}
		}
		return uc.Docs.SaveChunks(ctx, doc.ID, chunks)
	})

	if err := tx.Execute(ctx); err != nil {
		uc.log.Errorw("❌ Falha ao processar documento", "clinic_id", doc.ClinicID, "titulo", doc.Title, "error", err)
		return nil, &TechnicalError{Code: CodeIntegration, Message: "Erro ao processar documento", Err: err}
	}

	uc.log.Infow("📚 Documento processado", "documento_id", doc.ID, "chunks", len(pieces))
	return &KnowledgeIngestOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Chunks:     len(pieces),
		Message:    fmt.Sprintf("Documento processado com sucesso! %d chunks criados.", len(pieces)),
	}, nil
}

func (uc *KnowledgeUseCase) List(ctx context.Context, clinicID string) ([]entity.KnowledgeDocument, error) {
	docs, err := uc.Docs.ListActive(ctx, clinicID)
	if err != nil {
		return nil, databaseError("erro ao listar documentos", err)
	}
	if docs == nil {
		docs = []entity.KnowledgeDocument{}
	}
	return docs, nil
}

// Delete desativa o documento; os trechos deixam de aparecer na busca.
func (uc *KnowledgeUseCase) Delete(ctx context.Context, clinicID, documentID string) error {
	err := uc.Docs.Deactivate(ctx, clinicID, documentID)
	if errors.Is(err, entity.ErrDocumentNotFound) {
		return &DomainError{Code: CodeDocumentNotFound, Message: "Documento não encontrado"}
	}
	if err != nil {
		return databaseError("erro ao desativar documento", err)
	}
	uc.log.Infow("🗑️ Documento desativado", "documento_id", documentID)
	return nil
}

// Search ordena os trechos ativos por similaridade de cosseno com a pergunta.
func (uc *KnowledgeUseCase) Search(ctx context.Context, input KnowledgeSearchInput) ([]entity.KnowledgeMatch, error) {
	var errs []ValidationError
	errs = append(errs, required("query", input.Query)...)
	errs = append(errs, required("clinica_id", input.ClinicID)...)
	if err := joinValidation(errs); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	vecs, err := uc.Embedder.Embed(ctx, []string{strings.TrimSpace(input.Query)})
	if err != nil || len(vecs) != 1 {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "erro ao gerar embedding da busca", Err: err}
	}

	chunks, err := uc.Docs.ActiveChunks(ctx, input.ClinicID)
	if err != nil {
		return nil, databaseError("erro ao buscar trechos", err)
	}

	matches := make([]entity.KnowledgeMatch, 0, len(chunks))
	for _, c := range chunks {
		sim := CosineSimilarity(vecs[0], c.Embedding)
		if sim <= 0 {
			continue
		}
		matches = append(matches, entity.KnowledgeMatch{
			DocumentID: c.DocumentID,
			Title:      c.DocumentTitle,
			ChunkText:  c.Text,
			Similarity: sim,
		})
	}
	slices.SortStableFunc(matches, func(a, b entity.KnowledgeMatch) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Context formata os trechos mais próximos para o prompt. Falhas viram contexto vazio.
func (uc *KnowledgeUseCase) Context(ctx context.Context, clinicID, query string) string {
	matches, err := uc.Search(ctx, KnowledgeSearchInput{Query: query, ClinicID: clinicID, Limit: contextChunks})
	if err != nil {
		uc.log.Warnw("⚠️ Base de conhecimento indisponível", "clinic_id", clinicID, "error", err)
		return ""
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("[Documento %d: %s]\n%s\n", i+1, m.Title, m.ChunkText)
	}
	return strings.Join(parts, "\n")
}

func validDocumentType(field string, t entity.DocumentType) []ValidationError {
	if t == "" {
		return []ValidationError{{field, "is required"}}
	}
	if !t.IsValid() {
		return []ValidationError{{field, "must be preco, politica, procedimento, faq or outro"}}
	}
	return nil
}

func extractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
	default:
		return "", &DomainError{Code: CodeUnsupportedFile, Message: "Formato não suportado. Use TXT ou MD"}
	}
	if !utf8.Valid(data) {
		return "", &DomainError{Code: CodeUnsupportedFile, Message: "Arquivo não está em UTF-8"}
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", validationError("arquivo vazio")
	}
	return text, nil
}

// ChunkText quebra o texto em trechos de até limit runas, sem cortar palavras.
// Palavras maiores que limit são cortadas.
func ChunkText(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		size   int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			size = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			flush()
			r := []rune(word)
			chunks = append(chunks, string(r[:limit]))
			word = string(r[limit:])
		}
		n := utf8.RuneCountInString(word)
		if size > 0 && size+1+n > limit {
			flush()
		}
		if size > 0 {
			cur.WriteByte(' ')
			size++
		}
		cur.WriteString(word)
		size += n
	}
	flush()
	return chunks
}

// CosineSimilarity devolve 0 para vetores vazios, nulos ou de tamanhos diferentes.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
