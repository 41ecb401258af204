package prompt

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"msgagent/models"
	"msgagent/storage"
	"msgagent/utils"
)

// Limits bound what users may store.
type Limits struct {
	MinLength  int
	MaxLength  int
	MaxPerUser int
}

// DefaultLimits matches the stock limits config.
var DefaultLimits = Limits{MinLength: 10, MaxLength: 10000, MaxPerUser: 10}

// InvalidPromptError is returned when content fails validation.
type InvalidPromptError struct {
	Reason string
}

func (e *InvalidPromptError) Error() string {
	return "invalid prompt: " + e.Reason
}

// Manager ties template storage to the renderer. Every change that can
// affect which template a user renders clears the render cache.
type Manager struct {
	store    storage.TemplateStore
	renderer *Renderer
	limits   Limits
}

// NewManager builds a manager. A nil renderer gets a fresh one.
func NewManager(store storage.TemplateStore, renderer *Renderer, limits Limits) *Manager {
	if renderer == nil {
		renderer = NewRenderer(nil)
	}
	return &Manager{store: store, renderer: renderer, limits: limits}
}

// Renderer returns the shared renderer.
func (m *Manager) Renderer() *Renderer {
	return m.renderer
}

// Limits returns the configured limits.
func (m *Manager) Limits() Limits {
	return m.limits
}

// ActiveTemplate returns the content the user renders with: their active
// template, or DefaultTemplate when none is active or the store fails.
func (m *Manager) ActiveTemplate(ctx context.Context, userID string) string {
	p, err := m.store.ActiveTemplate(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			utils.Log.Warn("Loading active prompt for %s failed, using default: %v", userID, err)
		}
		return DefaultTemplate
	}
	return p.Content
}

// RenderFor renders the user's active template with tone.
func (m *Manager) RenderFor(ctx context.Context, userID string, tone models.ToneProfile) Rendered {
	return m.renderer.Render(m.ActiveTemplate(ctx, userID), tone)
}

// Validate checks length and syntax.
func (m *Manager) Validate(content string) error {
	n := utf8.RuneCountInString(content)
	if n < m.limits.MinLength {
		return &InvalidPromptError{Reason: fmt.Sprintf("shorter than %d characters", m.limits.MinLength)}
	}
	if m.limits.MaxLength > 0 && n > m.limits.MaxLength {
		return &InvalidPromptError{Reason: fmt.Sprintf("longer than %d characters", m.limits.MaxLength)}
	}
	if ok, msg := ValidateSyntax(content); !ok {
		return &InvalidPromptError{Reason: msg}
	}
	return nil
}

// Save validates and upserts a template by name. It does not activate it.
func (m *Manager) Save(ctx context.Context, userID, name, content string) (*models.PromptTemplate, error) {
	if name == "" {
		return nil, &InvalidPromptError{Reason: "name is required"}
	}
	if err := m.Validate(content); err != nil {
		return nil, err
	}

	if m.limits.MaxPerUser > 0 {
		existing, err := m.store.ListTemplates(ctx, userID)
		if err != nil {
			return nil, err
		}
		replacing := false
		for _, p := range existing {
			if p.Name == name {
				replacing = true
				break
			}
		}
		if !replacing && len(existing) >= m.limits.MaxPerUser {
			return nil, fmt.Errorf("%d prompts: %w", len(existing), storage.ErrPromptLimit)
		}
	}

	p, err := m.store.SaveTemplate(ctx, userID, name, content)
	if err != nil {
		return nil, err
	}
	m.renderer.Invalidate()
	utils.Log.Info("Saved prompt %q for %s", name, userID)
	return p, nil
}

// SaveAndActivate saves a template and makes it the active one.
func (m *Manager) SaveAndActivate(ctx context.Context, userID, name, content string) (*models.PromptTemplate, error) {
	p, err := m.Save(ctx, userID, name, content)
	if err != nil {
		return nil, err
	}
	if err := m.Activate(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	p.IsActive = true
	return p, nil
}

// Activate makes id the user's only active template.
func (m *Manager) Activate(ctx context.Context, userID string, id int64) error {
	if err := m.store.ActivateTemplate(ctx, userID, id); err != nil {
		return err
	}
	m.renderer.Invalidate()
	utils.Log.Info("Activated prompt %d for %s", id, userID)
	return nil
}

// Delete removes a template.
func (m *Manager) Delete(ctx context.Context, userID string, id int64) error {
	if err := m.store.DeleteTemplate(ctx, userID, id); err != nil {
		return err
	}
	m.renderer.Invalidate()
	utils.Log.Info("Deleted prompt %d for %s", id, userID)
	return nil
}

// List returns the user's templates, newest first.
func (m *Manager) List(ctx context.Context, userID string) ([]models.PromptTemplate, error) {
	return m.store.ListTemplates(ctx, userID)
}
