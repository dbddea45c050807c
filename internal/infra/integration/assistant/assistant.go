package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// HistoryWindow é quantas mensagens anteriores entram no contexto do modelo.
const HistoryWindow = 5

const SystemPrompt = `Você é a Carol, assistente virtual da Bem-Querer Odontologia.

## Sua Persona:
- Tom: Empático, acolhedor e eficiente
- Público: Mães preocupadas e pacientes ocupados
- Objetivo: Ajudar com agendamentos e tirar dúvidas sobre tratamentos odontológicos

## Regras Importantes:
1. NUNCA faça diagnósticos médicos ou prescreva tratamentos
2. NUNCA invente informações sobre disponibilidade de agenda
3. Se não souber algo, seja honesto e ofereça transferir para um humano
4. Mantenha respostas curtas e objetivas (máximo 2-3 frases)
5. Use linguagem natural e amigável, evite jargões técnicos

## Capacidades:
- Identificar intenções: Emergência, Agendamento, Dúvida, Reclamação
- Extrair informações: Nome da mãe vs. Nome do filho
- Classificar urgência: Baixa, Normal, Alta, Urgente`

const AnalysisFormat = `

## Formato de Resposta:
Sempre retorne um JSON com:
{
    "response": "sua resposta em texto",
    "intent": "booking|emergency|question|complaint",
    "urgency": "low|normal|high|urgent",
    "extracted_data": {
        "patient_name": "nome do paciente",
        "guardian_name": "nome do responsável",
        "phone": "telefone se mencionado"
    },
    "needs_human": false
}`

// FallbackReply é usado quando o provedor falha; a conversa vai para um humano.
const FallbackReply = "Desculpe, estou com dificuldades técnicas. Vou transferir você para um atendente humano."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role
	Content string
}

// Analysis é a resposta estruturada da Carol.
type Analysis struct {
	Response      string            `json:"response"`
	Intent        string            `json:"intent"`
	Urgency       string            `json:"urgency"`
	ExtractedData map[string]string `json:"extracted_data"`
	NeedsHuman    bool              `json:"needs_human"`
}

// History converte as últimas mensagens do chat em turnos do modelo.
// Mensagens de sistema ficam de fora.
func History(messages []entity.ChatMessage) []Turn {
	if len(messages) > HistoryWindow {
		messages = messages[len(messages)-HistoryWindow:]
	}
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		switch m.Sender {
		case entity.SenderUser:
			turns = append(turns, Turn{Role: RoleUser, Content: m.Content})
		case entity.SenderAgent:
			turns = append(turns, Turn{Role: RoleAssistant, Content: m.Content})
		}
	}
	return turns
}

// ContextLine formata o contexto extra anexado à mensagem do usuário.
func ContextLine(patientName string) string {
	if patientName == "" {
		return ""
	}
	return fmt.Sprintf("\n\nContexto adicional: paciente %s", patientName)
}

// ParseAnalysis lê o JSON do modelo. Texto que não é JSON vira resposta simples.
func ParseAnalysis(raw string) *Analysis {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil || a.Response == "" {
		return &Analysis{
			Response:      strings.TrimSpace(raw),
			Intent:        "question",
			Urgency:       "normal",
			ExtractedData: map[string]string{},
		}
	}

	if a.Intent == "" {
		a.Intent = "question"
	}
	if a.Urgency == "" {
		a.Urgency = "normal"
	}
	if a.ExtractedData == nil {
		a.ExtractedData = map[string]string{}
	}
	return &a
}

// Fallback é a análise devolvida quando o provedor não responde.
func Fallback() *Analysis {
	return &Analysis{
		Response:      FallbackReply,
		Intent:        "question",
		Urgency:       "normal",
		ExtractedData: map[string]string{},
		NeedsHuman:    true,
	}
}

// ErrNoProvider indica que nenhuma chave de LLM foi configurada.
var ErrNoProvider = errors.New("nenhum provedor de IA configurado")

// Unavailable é o provedor usado quando não há chave de LLM. Toda chamada falha
// com ErrNoProvider e o atendimento cai no fallback humano.
type Unavailable struct{}

func (Unavailable) Name() string { return "none" }

func (Unavailable) Reply(context.Context, []Turn, string, string) (string, error) {
	return "", ErrNoProvider
}

func (Unavailable) Analyze(context.Context, []Turn, string, string) (*Analysis, error) {
	return nil, ErrNoProvider
}

func (Unavailable) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrNoProvider
}
