// internal/preview/markup.go
package preview

import "regexp"

type Style string

const (
	StylePlain         Style = "plain"
	StyleBold          Style = "bold"
	StyleItalic        Style = "italic"
	StyleStrikethrough Style = "strikethrough"
	StyleMonospace     Style = "monospace"
)

// Span is one styled run of text within a message bubble.
type Span struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// markupRules in application order. Each pattern takes the narrowest
// non-empty match between a delimiter pair; a span claimed by an earlier
// rule is not re-scanned by later ones, so styles never nest.
var markupRules = []struct {
	pattern *regexp.Regexp
	style   Style
}{
	{regexp.MustCompile(`\*([^*]+)\*`), StyleBold},
	{regexp.MustCompile(`_([^_]+)_`), StyleItalic},
	{regexp.MustCompile(`~([^~]+)~`), StyleStrikethrough},
	{regexp.MustCompile("```(.+?)```"), StyleMonospace},
}

// ParseMarkup splits chat-style inline markup (*bold*, _italic_, ~strike~,
// ```mono```) into ordered spans. Unmatched delimiters stay literal; the
// function never fails, malformed input just comes back as plain text.
func ParseMarkup(text string) []Span {
	if text == "" {
		return nil
	}
	spans := []Span{{Text: text, Style: StylePlain}}
	for _, rule := range markupRules {
		spans = applyRule(spans, rule.pattern, rule.style)
	}
	return spans
}

func applyRule(spans []Span, pattern *regexp.Regexp, style Style) []Span {
	out := make([]Span, 0, len(spans))
	for _, span := range spans {
		if span.Style != StylePlain {
			out = append(out, span)
			continue
		}
		rest := span.Text
		for {
			loc := pattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				break
			}
			if loc[0] > 0 {
				out = append(out, Span{Text: rest[:loc[0]], Style: StylePlain})
			}
			out = append(out, Span{Text: rest[loc[2]:loc[3]], Style: style})
			rest = rest[loc[1]:]
		}
		if rest != "" {
			out = append(out, Span{Text: rest, Style: StylePlain})
		}
	}
	return out
}
