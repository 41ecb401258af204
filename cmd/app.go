package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"msgagent/config"
	"msgagent/handlers/api"
	"msgagent/ingest"
	"msgagent/organizer"
	"msgagent/prompt"
	"msgagent/storage"
	"msgagent/utils"
)

// renderCacheTTL bounds how long a rendered prompt is served from memory
const renderCacheTTL = time.Hour

// app holds the components shared by the commands
type app struct {
	cfg      *config.Config
	store    storage.Store
	cache    *utils.MemoryCache[string]
	prompts  *prompt.Manager
	pipeline *organizer.Pipeline
	toolbox  *organizer.Toolbox

	demo     *storage.DemoStore
	tags     *storage.TagIndex
	importer *ingest.Importer
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		utils.Log.Info("Using postgres storage")
		return storage.OpenPostgres(ctx, cfg.Storage.PostgresDSN)
	default:
		path := cfg.SQLitePath()
		utils.Log.Info("Using sqlite storage at %s", path)
		return storage.OpenSQLite(path)
	}
}

func pipelineOptions(cfg *config.Config, contacts organizer.ContactLookup) []organizer.Option {
	return []organizer.Option{
		organizer.WithContacts(contacts),
		organizer.WithPhrasebook(utils.Phrasebook{}),
		organizer.WithThresholds(organizer.Thresholds{
			Tool:  cfg.Performance.ToolWarn,
			Total: cfg.Performance.TotalWarn,
		}),
	}
}

// newApp opens the relational store and builds the pipeline over it
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cache := utils.NewMemoryCache[string](renderCacheTTL)
	pipeline := organizer.NewPipeline(pipelineOptions(cfg, store)...)

	return &app{
		cfg:   cfg,
		store: store,
		cache: cache,
		prompts: prompt.NewManager(store, prompt.NewRenderer(cache), prompt.Limits{
			MinLength:  cfg.Limits.MinPromptLength,
			MaxLength:  cfg.Limits.MaxPromptLength,
			MaxPerUser: cfg.Limits.MaxPromptsPerUser,
		}),
		pipeline: pipeline,
		toolbox:  organizer.NewToolbox(pipeline),
	}, nil
}

// openDemo opens the demo JSON store, its tag index and, when an IMAP
// server is configured, the mail importer
func (a *app) openDemo() error {
	demo, err := storage.NewDemoStore(a.cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open demo store: %w", err)
	}
	tags, err := storage.OpenTagIndex(a.cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open tag index: %w", err)
	}
	a.demo = demo
	a.tags = tags

	if imap := a.cfg.IMAP; imap.Server != "" {
		source := ingest.NewIMAPSource(ingest.IMAPConfig{
			Server:   imap.Server,
			Port:     imap.Port,
			Username: imap.Username,
			Password: imap.Password,
			Mailbox:  imap.Mailbox,
		})
		a.importer = ingest.NewImporter(source, demo, a.cfg.Limits.MaxMessageLength)
	}
	return nil
}

// processor runs organize calls for the API users
func (a *app) processor(events *api.EventHub) *api.Processor {
	return api.NewProcessor(a.pipeline, a.prompts, a.store, events)
}

// demoProcessor scores demo messages against the demo contact list
func (a *app) demoProcessor(events *api.EventHub) *api.Processor {
	pipeline := organizer.NewPipeline(pipelineOptions(a.cfg, a.demo)...)
	return api.NewProcessor(pipeline, a.prompts, a.store, events)
}

func (a *app) Close() error {
	var errs []error
	if a.tags != nil {
		errs = append(errs, a.tags.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
