package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
)

// Client fala com o Gemini usando o prompt da Carol.
type Client struct {
	client     *genai.Client
	model      string
	embedModel string
	log        *zap.SugaredLogger
}

const DefaultEmbeddingModel = "text-embedding-004"

func NewClient(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	return newClient(ctx, &genai.ClientConfig{APIKey: apiKey}, model, log)
}

func newClient(ctx context.Context, cfg *genai.ClientConfig, model string, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY não configurada")
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar cliente Gemini: %w", err)
	}

	return &Client{client: client, model: model, embedModel: DefaultEmbeddingModel, log: log.Sugar()}, nil
}

func (c *Client) Name() string {
	return "gemini"
}

// Reply devolve só o texto da resposta.
func (c *Client) Reply(ctx context.Context, history []assistant.Turn, message, patientName string) (string, error) {
	text, err := c.generate(ctx, assistant.SystemPrompt, history, message+assistant.ContextLine(patientName), false)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Analyze pede o JSON estruturado (intenção, urgência, dados extraídos).
func (c *Client) Analyze(ctx context.Context, history []assistant.Turn, message, patientName string) (*assistant.Analysis, error) {
	text, err := c.generate(ctx, assistant.SystemPrompt+assistant.AnalysisFormat, history, message+assistant.ContextLine(patientName), true)
	if err != nil {
		return nil, err
	}
	return assistant.ParseAnalysis(text), nil
}

func (c *Client) generate(ctx context.Context, system string, history []assistant.Turn, message string, asJSON bool) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == assistant.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	}
	if asJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		c.log.Errorw("❌ Gemini: falha ao gerar resposta", "model", c.model, "error", err)
		return "", fmt.Errorf("gemini: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: resposta vazia")
	}
	return text, nil
}

// Embed gera um vetor por texto, na mesma ordem.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, contents, nil)
	if err != nil {
		c.log.Errorw("❌ Gemini: falha ao gerar embeddings", "model", c.embedModel, "error", err)
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: %d embeddings para %d textos", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
