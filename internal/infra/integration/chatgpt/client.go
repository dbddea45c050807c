package chatgpt

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/infra/integration/assistant"
)

// Client é o provedor ChatGPT da Carol.
type Client struct {
	client *openai.Client
	model  string
	log    *zap.SugaredLogger
}

func NewClient(apiKey, model string, log *zap.Logger, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY não configurada")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	cl := openai.NewClient(opts...)

	return &Client{client: &cl, model: model, log: log.Sugar()}, nil
}

func (c *Client) Name() string {
	return "chatgpt"
}

func (c *Client) Reply(ctx context.Context, history []assistant.Turn, message, patientName string) (string, error) {
	return c.complete(ctx, assistant.SystemPrompt, history, message+assistant.ContextLine(patientName))
}

func (c *Client) Analyze(ctx context.Context, history []assistant.Turn, message, patientName string) (*assistant.Analysis, error) {
	text, err := c.complete(ctx, assistant.SystemPrompt+assistant.AnalysisFormat, history, message+assistant.ContextLine(patientName))
	if err != nil {
		return nil, err
	}
	return assistant.ParseAnalysis(text), nil
}

func (c *Client) complete(ctx context.Context, system string, history []assistant.Turn, message string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(system)}
	for _, t := range history {
		if t.Role == assistant.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(t.Content))
	}
	messages = append(messages, openai.UserMessage(message))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		c.log.Errorw("❌ ChatGPT: falha na completion", "model", c.model, "error", err)
		return "", fmt.Errorf("chatgpt: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chatgpt: resposta vazia")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed usa o text-embedding-3-small; a ordem da resposta segue o índice.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModelTextEmbedding3Small,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		c.log.Errorw("❌ ChatGPT: falha ao gerar embeddings", "error", err)
		return nil, fmt.Errorf("chatgpt: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("chatgpt: %d embeddings para %d textos", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("chatgpt: índice de embedding inválido %d", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}
