// Package storage persists prompts, contacts, execution logs and the demo
// message set.
package storage

import (
	"context"
	"errors"

	"msgagent/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrPromptLimit is returned when a user already has the maximum number of prompts
	ErrPromptLimit = errors.New("prompt limit reached")
)

// TemplateStore keeps custom prompt templates. At most one template per
// user is active; the store enforces that.
type TemplateStore interface {
	ActiveTemplate(ctx context.Context, userID string) (*models.PromptTemplate, error)
	SaveTemplate(ctx context.Context, userID, name, content string) (*models.PromptTemplate, error)
	ActivateTemplate(ctx context.Context, userID string, id int64) error
	DeleteTemplate(ctx context.Context, userID string, id int64) error
	ListTemplates(ctx context.Context, userID string) ([]models.PromptTemplate, error)
}

// ContactStore keeps per (owner, sender) priority settings.
type ContactStore interface {
	ContactSettings(ctx context.Context, owner, sender string) (models.ContactSettings, error)
	SetContactSettings(ctx context.Context, owner, sender string, settings models.ContactSettings) error
}

// ExecutionLogStore records organize runs.
type ExecutionLogStore interface {
	LogExecution(ctx context.Context, log *models.ExecutionLog) error
	ExecutionStats(ctx context.Context, userID string, days int) (*models.ExecutionStats, error)
}

// Store is everything the API needs from a relational backend.
type Store interface {
	TemplateStore
	ContactStore
	ExecutionLogStore
	Ping(ctx context.Context) error
	Close() error
}
