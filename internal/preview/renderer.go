// internal/preview/renderer.go
package preview

import (
	"time"

	"github.com/studiovx/outreach-backend/internal/model"
	"github.com/studiovx/outreach-backend/internal/template"
)

// Bubble is one entry of the simulated conversation: resolved text, parsed
// style spans, the condition label for conditional messages, the image
// reference (or its placeholder state) and the sent badge.
type Bubble struct {
	MessageID      string            `json:"message_id"`
	Type           model.MessageType `json:"type"`
	Text           string            `json:"text"`
	Spans          []Span            `json:"spans"`
	ConditionLabel string            `json:"condition_label,omitempty"`
	HasImage       bool              `json:"has_image"`
	ImageURL       string            `json:"image_url,omitempty"`
	ImageMissing   bool              `json:"image_missing,omitempty"`
	Sent           bool              `json:"sent"`
	SentAt         *time.Time        `json:"sent_at,omitempty"`
	Unresolved     []string          `json:"unresolved,omitempty"`
}

var conditionLabels = map[model.Condition]string{
	model.ConditionAfterPositiveResponse: "after a positive response",
	model.ConditionAfterNegativeResponse: "after a negative response",
	model.ConditionAfterNoResponse:       "after waiting with no reply",
}

// ConditionLabel returns the human-readable label for a trigger condition.
// Unrecognized values pass through verbatim so new conditions show up
// instead of disappearing.
func ConditionLabel(c model.Condition) string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return string(c)
}

// Render builds the chat transcript view model for messages already sorted
// by order. vars resolves template tokens, sent marks which messages the
// operator already dispatched. Pure transform: same inputs, same output.
func Render(messages []model.ScriptMessage, vars template.Variables, sent map[string]time.Time) []Bubble {
	bubbles := make([]Bubble, 0, len(messages))
	for _, m := range messages {
		resolved := template.Resolve(m.Content, vars)

		b := Bubble{
			MessageID:  m.ID,
			Type:       m.Type,
			Text:       resolved,
			Spans:      ParseMarkup(resolved),
			Unresolved: template.Unresolved(m.Content, vars),
		}
		if m.Type == model.MessageTypeConditional {
			b.ConditionLabel = ConditionLabel(m.Condition)
		}
		if m.Type == model.MessageTypeImage {
			b.HasImage = true
			if m.ImageURL == "" {
				b.ImageMissing = true
			} else {
				b.ImageURL = m.ImageURL
			}
		}
		if at, ok := sent[m.ID]; ok {
			b.Sent = true
			t := at
			b.SentAt = &t
		}
		bubbles = append(bubbles, b)
	}
	return bubbles
}
