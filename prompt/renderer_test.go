package prompt_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
	"msgagent/prompt"
)

var casual = models.ToneProfile{
	Name:        "小王",
	Profile:     "軟體工程師",
	Style:       models.StyleCasual,
	ReplyLength: models.LengthShort,
	Signature:   "- 小王",
	Language:    "zh-tw",
}

func TestRenderDefaultTemplate(t *testing.T) {
	r := prompt.NewRenderer(nil)
	out := r.Render(prompt.DefaultTemplate, casual)

	require.NoError(t, out.Err)
	assert.False(t, out.Fallback)
	assert.Contains(t, out.Text, "你是 小王，軟體工程師。")
	assert.Contains(t, out.Text, "語調風格：輕鬆")
	assert.Contains(t, out.Text, "可以啊，幾點開場？- 小王")
	assert.NotContains(t, out.Text, "{{")
}

func TestRenderCachesByTemplateAndTone(t *testing.T) {
	r := prompt.NewRenderer(nil)

	first := r.Render(prompt.DefaultTemplate, casual)
	second := r.Render(prompt.DefaultTemplate, casual)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, int64(1), r.RenderCount())

	formal := casual
	formal.Style = models.StyleFormal
	third := r.Render(prompt.DefaultTemplate, formal)
	assert.False(t, third.Cached)
	assert.Equal(t, int64(2), r.RenderCount())

	stats := r.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestInvalidateForcesRerender(t *testing.T) {
	r := prompt.NewRenderer(nil)
	r.Render(prompt.DefaultTemplate, casual)
	r.Invalidate()
	out := r.Render(prompt.DefaultTemplate, casual)

	assert.False(t, out.Cached)
	assert.Equal(t, int64(2), r.RenderCount())
}

func TestRenderConcurrentWithInvalidate(t *testing.T) {
	r := prompt.NewRenderer(nil)
	want := r.Render(prompt.DefaultTemplate, casual).Text

	var wg sync.WaitGroup
	results := make(chan prompt.Rendered, 8*200)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				results <- r.Render(prompt.DefaultTemplate, casual)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			r.Invalidate()
		}
	}()
	wg.Wait()
	close(results)

	for out := range results {
		require.NoError(t, out.Err)
		assert.False(t, out.Fallback)
		assert.Equal(t, want, out.Text)
	}
	assert.GreaterOrEqual(t, r.RenderCount(), int64(1))
	assert.LessOrEqual(t, r.RenderCount(), int64(1+8*200))
}

func TestRenderMalformedFallsBack(t *testing.T) {
	r := prompt.NewRenderer(nil)
	for _, src := range []string{"{{ user_name", "{% include 'x' %}", "hi {{ company }}"} {
		out := r.Render(src, casual)
		assert.True(t, out.Fallback, src)
		assert.Error(t, out.Err, src)
		assert.Contains(t, out.Text, "小王")
		assert.Contains(t, out.Text, "輕鬆")
	}

	// Fallbacks are never cached.
	again := r.Render("{{ user_name", casual)
	assert.False(t, again.Cached)
}

func TestFallbackPromptDefaultsStyle(t *testing.T) {
	text := prompt.FallbackPrompt(models.ToneProfile{Name: "A"})
	assert.Contains(t, text, "你是 A。")
	assert.Contains(t, text, "語調：正式")
}

func TestValidateSyntax(t *testing.T) {
	ok, msg := prompt.ValidateSyntax(prompt.DefaultTemplate)
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = prompt.ValidateSyntax("# Role\n{{ user_name }")
	assert.False(t, ok)
	assert.Contains(t, msg, "unclosed")

	ok, msg = prompt.ValidateSyntax("# Role\n{{ boss_name }}")
	assert.False(t, ok)
	assert.Contains(t, msg, "boss_name")

	// Missing sections only warn.
	ok, _ = prompt.ValidateSyntax("just {{ user_name }}")
	assert.True(t, ok)
}

func TestExtractVariables(t *testing.T) {
	assert.Equal(t,
		[]string{"user_name", "user_profile", "language", "tone_style", "reply_length", "signature"},
		prompt.ExtractVariables(prompt.DefaultTemplate))
	assert.Equal(t, []string{"company"}, prompt.ExtractVariables("{{ company }}"))
	assert.Equal(t, []string{}, prompt.ExtractVariables("{{ broken"))
	assert.Equal(t, []string{}, prompt.ExtractVariables("no placeholders"))
}

func TestMissingSections(t *testing.T) {
	assert.Empty(t, prompt.MissingSections(prompt.DefaultTemplate))
	assert.Equal(t, []string{"Goal", "Tools", "Constraint"}, prompt.MissingSections("# role only"))
}
