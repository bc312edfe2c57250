// internal/template/resolver.go
package template

import (
	"regexp"
	"strings"
)

// Variables maps a template variable name to its per-recipient value.
type Variables map[string]string

var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Resolve substitutes every {{name}} token whose name is a key in values.
// Matching is exact and case-sensitive; an empty-string value substitutes as
// empty. Tokens with no matching key are left in place so the operator can
// see which data is missing before sending.
func Resolve(template string, values Variables) string {
	if template == "" || len(values) == 0 {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-2]
		if value, ok := values[name]; ok {
			return value
		}
		return token
	})
}

// Names returns the distinct variable names referenced by the template, in
// first-appearance order.
func Names(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := map[string]bool{}
	names := []string{}
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Unresolved returns the distinct token names in template that have no key
// in values, in first-appearance order.
func Unresolved(template string, values Variables) []string {
	unresolved := []string{}
	for _, name := range Names(template) {
		if _, ok := values[name]; !ok {
			unresolved = append(unresolved, name)
		}
	}
	return unresolved
}

// Merge layers variable maps left to right, later maps winning. Keys bound
// to empty strings still win: an operator clearing a value is a choice, not
// a miss.
func Merge(maps ...Variables) Variables {
	merged := Variables{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// HasTokens reports whether the text still contains any token syntax.
func HasTokens(text string) bool {
	return strings.Contains(text, "{{") && tokenPattern.MatchString(text)
}
