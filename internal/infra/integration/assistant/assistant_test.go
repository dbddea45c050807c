package assistant

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

func TestParseAnalysisJSON(t *testing.T) {
	raw := "```json\n{\"response\":\"Posso agendar para amanhã\",\"intent\":\"booking\",\"urgency\":\"high\",\"needs_human\":false}\n```"

	a := ParseAnalysis(raw)

	assert.Equal(t, "Posso agendar para amanhã", a.Response)
	assert.Equal(t, "booking", a.Intent)
	assert.Equal(t, "high", a.Urgency)
	assert.NotNil(t, a.ExtractedData)
}

func TestParseAnalysisPlainTextFallsBack(t *testing.T) {
	a := ParseAnalysis("Olá! Como posso ajudar?")

	assert.Equal(t, "Olá! Como posso ajudar?", a.Response)
	assert.Equal(t, "question", a.Intent)
	assert.Equal(t, "normal", a.Urgency)
	assert.False(t, a.NeedsHuman)
}

func TestHistoryKeepsLastWindowAndSkipsSystem(t *testing.T) {
	var msgs []entity.ChatMessage
	for i := 0; i < 7; i++ {
		sender := entity.SenderUser
		if i%2 == 1 {
			sender = entity.SenderAgent
		}
		msgs = append(msgs, entity.ChatMessage{Content: fmt.Sprint(i), Sender: sender})
	}
	msgs = append(msgs, entity.ChatMessage{Content: "aviso", Sender: entity.SenderSystem})

	turns := History(msgs)

	require.Len(t, turns, 4)
	assert.Equal(t, "3", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[0].Role)
	assert.Equal(t, "6", turns[3].Content)
}

func TestFallbackNeedsHuman(t *testing.T) {
	assert.True(t, Fallback().NeedsHuman)
}

func TestUnavailableAlwaysFails(t *testing.T) {
	var p Unavailable
	_, err := p.Reply(context.Background(), nil, "oi", "")
	assert.ErrorIs(t, err, ErrNoProvider)
	_, err = p.Analyze(context.Background(), nil, "oi", "")
	assert.ErrorIs(t, err, ErrNoProvider)
}
