package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/prompt"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars map[string]string
		want string
	}{
		{"plain text", "hello", nil, "hello"},
		{"placeholder", "我是 {{ user_name }}", map[string]string{"user_name": "小王"}, "我是 小王"},
		{"no spaces", "{{user_name}}!", map[string]string{"user_name": "A"}, "A!"},
		{"comment dropped", "a{# note #}b", nil, "ab"},
		{"local set", `{% set greeting = "嗨" %}{{ greeting }}，{{ user_name }}`, map[string]string{"user_name": "B"}, "嗨，B"},
		{"single quoted set", `{% set x = 'y' %}{{x}}`, nil, "y"},
		{"trim both sides", "a  \n{{- user_name -}}\n  b", map[string]string{"user_name": "X"}, "aXb"},
		{"stray closer is literal", "json }} here", nil, "json }} here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := prompt.Parse(tt.src)
			require.NoError(t, err)
			got, err := tmpl.Execute(tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed placeholder", "hi {{ user_name"},
		{"unclosed directive", "{% set a = \"b\""},
		{"unclosed comment", "{# never ends"},
		{"unknown directive", "{% for x in y %}{% endfor %}"},
		{"expression", "{{ user_name | upper }}"},
		{"nested opener", "{{ {{ user_name }}"},
		{"empty placeholder", "{{ }}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prompt.Parse(tt.src)
			var syntaxErr *prompt.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestSyntaxErrorLine(t *testing.T) {
	_, err := prompt.Parse("line one\nline two\n{% bogus %}")
	var syntaxErr *prompt.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 3, syntaxErr.Line)
}

func TestUnknownPlaceholder(t *testing.T) {
	tmpl, err := prompt.Parse("hi {{ user_name }} from {{ company }}")
	require.NoError(t, err)

	var unknown *prompt.UnknownPlaceholderError
	require.ErrorAs(t, tmpl.Check(prompt.ProfileVariables), &unknown)
	assert.Equal(t, "company", unknown.Name)

	_, err = tmpl.Execute(map[string]string{"user_name": "A"})
	require.ErrorAs(t, err, &unknown)

	assert.Equal(t, []string{"user_name", "company"}, tmpl.Variables())
}

func TestLocalsAreNotVariables(t *testing.T) {
	tmpl, err := prompt.Parse(`{% set sig = "--" %}{{ sig }} {{ signature }} {{ sig }}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"signature"}, tmpl.Variables())
	assert.NoError(t, tmpl.Check(prompt.ProfileVariables))
}

func TestSetLaterStillLocal(t *testing.T) {
	tmpl, err := prompt.Parse(`[{{ sig }}]{% set sig = "--" %}{{ sig }}{{ user_name }}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_name"}, tmpl.Variables())
	assert.NoError(t, tmpl.Check(prompt.ProfileVariables))

	got, err := tmpl.Execute(map[string]string{"user_name": "A", "sig": "outer"})
	require.NoError(t, err)
	assert.Equal(t, "[]--A", got)
}
