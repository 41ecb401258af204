package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"

	"msgagent/models"
	"msgagent/utils"
)

// Rendered is the outcome of one render call.
type Rendered struct {
	Text     string `json:"text"`
	Cached   bool   `json:"cached"`
	Fallback bool   `json:"fallback"`
	Err      error  `json:"-"`
}

// Renderer renders templates against tone profiles and caches the output
// keyed by template content and the full profile.
type Renderer struct {
	cache   *utils.MemoryCache[string]
	renders atomic.Int64
}

// NewRenderer returns a renderer with its own cache. cache may be nil.
func NewRenderer(cache *utils.MemoryCache[string]) *Renderer {
	if cache == nil {
		cache = utils.NewMemoryCache[string](0)
	}
	return &Renderer{cache: cache}
}

// Render substitutes the profile into template. Malformed templates yield
// the fallback prompt; fallbacks are not cached.
func (r *Renderer) Render(template string, tone models.ToneProfile) Rendered {
	key := cacheKey(template, tone)
	if text, ok := r.cache.Get(key); ok {
		return Rendered{Text: text, Cached: true}
	}

	text, err := r.execute(template, tone)
	if err != nil {
		utils.Log.Warn("Prompt render failed, using fallback: %v", err)
		return Rendered{Text: FallbackPrompt(tone), Fallback: true, Err: err}
	}

	r.cache.Set(key, text)
	utils.Log.Debug("Rendered prompt, length %d", len(text))
	return Rendered{Text: text}
}

func (r *Renderer) execute(template string, tone models.ToneProfile) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", &SyntaxError{Msg: "render panic"}
		}
	}()
	r.renders.Add(1)
	tmpl, err := Parse(template)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ProfileVars(tone))
}

// Invalidate drops every cached render.
func (r *Renderer) Invalidate() {
	r.cache.Clear()
	utils.Log.Debug("Prompt render cache cleared")
}

// RenderCount is how many times the template engine ran.
func (r *Renderer) RenderCount() int64 {
	return r.renders.Load()
}

// CacheStats exposes the cache counters.
func (r *Renderer) CacheStats() utils.CacheStats {
	return r.cache.Stats()
}

// ValidateSyntax parses template without rendering it. Missing conventional
// sections are logged but do not fail validation.
func ValidateSyntax(template string) (bool, string) {
	tmpl, err := Parse(template)
	if err != nil {
		return false, err.Error()
	}
	if err := tmpl.Check(ProfileVariables); err != nil {
		return false, err.Error()
	}
	for _, s := range MissingSections(template) {
		utils.Log.Warn("Prompt is missing section: %s", s)
	}
	return true, ""
}

// ExtractVariables lists the non-local names template references. A
// template that does not parse yields an empty list.
func ExtractVariables(template string) []string {
	tmpl, err := Parse(template)
	if err != nil {
		return []string{}
	}
	vars := tmpl.Variables()
	if vars == nil {
		return []string{}
	}
	return vars
}

func cacheKey(template string, tone models.ToneProfile) string {
	profile, _ := json.Marshal(tone)
	h := sha256.New()
	h.Write([]byte(template))
	h.Write([]byte{0})
	h.Write(profile)
	return hex.EncodeToString(h.Sum(nil))
}
