package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiovx/outreach-backend/internal/model"
	"github.com/studiovx/outreach-backend/internal/template"
)

func TestRenderResolvesVariables(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", Type: model.MessageTypeText, Content: "Oi {{contact_name}}, tudo bem?"},
	}
	vars := template.Variables{"contact_name": "Marcos"}

	bubbles := Render(messages, vars, nil)
	require.Len(t, bubbles, 1)
	assert.Equal(t, "Oi Marcos, tudo bem?", bubbles[0].Text)
	assert.Empty(t, bubbles[0].Unresolved)
}

func TestRenderReportsUnresolved(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", Type: model.MessageTypeText, Content: "Link: {{proposal_link}}"},
	}

	bubbles := Render(messages, template.Variables{}, nil)
	require.Len(t, bubbles, 1)
	// the raw token stays visible so the operator notices the missing value
	assert.Equal(t, "Link: {{proposal_link}}", bubbles[0].Text)
	assert.Equal(t, []string{"proposal_link"}, bubbles[0].Unresolved)
}

func TestRenderMarkupAfterResolution(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", Type: model.MessageTypeText, Content: "Proposta para *{{company_name}}*"},
	}
	vars := template.Variables{"company_name": "Padaria Central"}

	bubbles := Render(messages, vars, nil)
	require.Len(t, bubbles, 1)
	assert.Equal(t, []Span{
		{Text: "Proposta para ", Style: StylePlain},
		{Text: "Padaria Central", Style: StyleBold},
	}, bubbles[0].Spans)
}

func TestRenderConditionLabels(t *testing.T) {
	tests := []struct {
		condition model.Condition
		expected  string
	}{
		{model.ConditionAfterPositiveResponse, "after a positive response"},
		{model.ConditionAfterNegativeResponse, "after a negative response"},
		{model.ConditionAfterNoResponse, "after waiting with no reply"},
		// unknown condition passes through verbatim, no panic
		{model.Condition("after_ghosting"), "after_ghosting"},
	}

	for _, tc := range tests {
		messages := []model.ScriptMessage{
			{ID: "m1", Type: model.MessageTypeConditional, Condition: tc.condition, Content: "x"},
		}
		bubbles := Render(messages, nil, nil)
		require.Len(t, bubbles, 1)
		assert.Equal(t, tc.expected, bubbles[0].ConditionLabel)
	}
}

func TestRenderNonConditionalHasNoLabel(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", Type: model.MessageTypeText, Condition: model.ConditionAfterNoResponse, Content: "x"},
	}
	bubbles := Render(messages, nil, nil)
	assert.Empty(t, bubbles[0].ConditionLabel)
}

func TestRenderImageFallback(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "with", Type: model.MessageTypeImage, Content: "olha", ImageURL: "https://cdn.example.com/a.png"},
		{ID: "without", Type: model.MessageTypeImage, Content: "olha"},
	}
	bubbles := Render(messages, nil, nil)
	require.Len(t, bubbles, 2)

	assert.True(t, bubbles[0].HasImage)
	assert.Equal(t, "https://cdn.example.com/a.png", bubbles[0].ImageURL)
	assert.False(t, bubbles[0].ImageMissing)

	assert.True(t, bubbles[1].HasImage)
	assert.Empty(t, bubbles[1].ImageURL)
	assert.True(t, bubbles[1].ImageMissing)
}

func TestRenderSentBadge(t *testing.T) {
	at := time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)
	messages := []model.ScriptMessage{
		{ID: "m1", Type: model.MessageTypeText, Content: "a"},
		{ID: "m2", Type: model.MessageTypeText, Content: "b"},
	}
	sent := map[string]time.Time{"m1": at}

	bubbles := Render(messages, nil, sent)
	require.Len(t, bubbles, 2)

	assert.True(t, bubbles[0].Sent)
	require.NotNil(t, bubbles[0].SentAt)
	assert.Equal(t, at, *bubbles[0].SentAt)

	assert.False(t, bubbles[1].Sent)
	assert.Nil(t, bubbles[1].SentAt)
}

func TestRenderIdempotent(t *testing.T) {
	messages := []model.ScriptMessage{
		{ID: "m1", Type: model.MessageTypeText, Content: "*{{a}}* e {{b}}"},
	}
	vars := template.Variables{"a": "1"}

	first := Render(messages, vars, nil)
	second := Render(messages, vars, nil)
	assert.Equal(t, first, second)
}
