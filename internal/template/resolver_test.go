package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	vars := Variables{
		"contact_name": "Marcos",
		"company_name": "Padaria Central",
		"city":         "Curitiba",
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "single token",
			template: "Oi {{contact_name}}!",
			expected: "Oi Marcos!",
		},
		{
			name:     "multiple tokens",
			template: "{{contact_name}} da {{company_name}} em {{city}}",
			expected: "Marcos da Padaria Central em Curitiba",
		},
		{
			name:     "repeated token replaced everywhere",
			template: "{{city}}, {{city}}",
			expected: "Curitiba, Curitiba",
		},
		{
			name:     "unknown token left visible",
			template: "Link: {{proposal_link}}",
			expected: "Link: {{proposal_link}}",
		},
		{
			name:     "no tokens is a no-op",
			template: "plain text, no placeholders",
			expected: "plain text, no placeholders",
		},
		{
			name:     "case sensitive names",
			template: "{{Contact_Name}}",
			expected: "{{Contact_Name}}",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.template, vars))
		})
	}
}

func TestResolveEmptyValueIsNotMissing(t *testing.T) {
	vars := Variables{"segment": ""}
	assert.Equal(t, "ramo: ", Resolve("ramo: {{segment}}", vars))
	assert.Empty(t, Unresolved("ramo: {{segment}}", vars))
}

func TestResolveIdempotent(t *testing.T) {
	vars := Variables{"contact_name": "Ana"}
	template := "Oi {{contact_name}}, falta {{proposal_link}}"

	once := Resolve(template, vars)
	twice := Resolve(once, vars)
	assert.Equal(t, once, twice)
}

func TestResolveTotalOnKnownKeys(t *testing.T) {
	vars := Variables{"a": "1", "b": "2"}
	resolved := Resolve("{{a}} and {{b}} and {{a}}", vars)
	assert.False(t, HasTokens(resolved))
}

func TestUnresolved(t *testing.T) {
	vars := Variables{"contact_name": "Ana"}
	template := "{{proposal_link}} {{contact_name}} {{segment}} {{proposal_link}}"

	assert.Equal(t, []string{"proposal_link", "segment"}, Unresolved(template, vars))
	assert.Empty(t, Unresolved("no tokens here", vars))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Names("{{b}} {{a}} {{b}}"))
	assert.Nil(t, Names("nothing"))
	// malformed token syntax is not a name
	assert.Nil(t, Names("{{no spaces allowed}} {{}}"))
}

func TestMerge(t *testing.T) {
	defaults := Variables{"city": "Curitiba", "segment": "food"}
	stored := Variables{"segment": "bakery"}
	override := Variables{"city": ""}

	merged := Merge(defaults, stored, override)
	assert.Equal(t, "bakery", merged["segment"])
	// an explicitly cleared value wins over the default
	assert.Equal(t, "", merged["city"])
}
