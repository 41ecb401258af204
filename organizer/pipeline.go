package organizer

import (
	"context"
	"time"

	"msgagent/models"
	"msgagent/utils"
)

// ContactLookup resolves contact settings. Implementations return zero
// settings and a nil error when no record exists.
type ContactLookup interface {
	ContactSettings(ctx context.Context, owner, sender string) (models.ContactSettings, error)
}

// Thresholds are the durations above which a step or a whole run is logged
// as slow.
type Thresholds struct {
	Tool  time.Duration
	Total time.Duration
}

// DefaultThresholds matches the stock performance config.
var DefaultThresholds = Thresholds{Tool: 5 * time.Second, Total: 15 * time.Second}

// Pipeline runs the per-message decisions in order.
type Pipeline struct {
	classifier *Classifier
	tagger     *Tagger
	scorer     *PriorityScorer
	archiver   *ArchiveDecider
	drafter    *ReplyDrafter
	sorter     *ThreadSorter
	contacts   ContactLookup
	thresholds Thresholds
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithContacts sets the contact lookup used for priority scoring.
func WithContacts(c ContactLookup) Option {
	return func(p *Pipeline) { p.contacts = c }
}

// WithPhrasebook localizes drafted replies.
func WithPhrasebook(pb Phrasebook) Option {
	return func(p *Pipeline) { p.drafter = NewReplyDrafter(pb) }
}

// WithArchiveRules replaces the archive rule table.
func WithArchiveRules(rules map[models.Category]ArchiveRule) Option {
	return func(p *Pipeline) { p.archiver = NewArchiveDecider(rules) }
}

// WithThresholds sets the slow-step thresholds.
func WithThresholds(t Thresholds) Option {
	return func(p *Pipeline) { p.thresholds = t }
}

// NewPipeline builds a pipeline with the stock rule tables.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: DefaultClassifier(),
		tagger:     DefaultTagger(),
		scorer:     DefaultPriorityScorer(),
		archiver:   DefaultArchiveDecider(),
		drafter:    NewReplyDrafter(nil),
		sorter:     NewThreadSorter(),
		thresholds: DefaultThresholds,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Trace records how one Organize call ran.
type Trace struct {
	Steps   []models.ToolResult
	Elapsed time.Duration
}

// Success reports whether every step ran without degrading.
func (t Trace) Success() bool {
	for _, s := range t.Steps {
		if !s.Success {
			return false
		}
	}
	return true
}

// Contact resolves contact settings, falling back to the zero value.
func (p *Pipeline) Contact(ctx context.Context, owner, sender string) models.ContactSettings {
	if p.contacts == nil || sender == "" {
		return models.ContactSettings{}
	}
	settings, err := p.contacts.ContactSettings(ctx, owner, sender)
	if err != nil {
		utils.Log.Warn("Contact lookup for %s failed, using defaults: %v", sender, err)
		return models.ContactSettings{}
	}
	return settings
}

// Organize classifies, tags, scores, decides archival and drafts a reply.
func (p *Pipeline) Organize(ctx context.Context, req models.MessageRequest) (models.OrganizeResult, Trace) {
	start := time.Now()
	var trace Trace
	tone := NormalizeTone(req.ToneProfile)

	category := record(p, &trace, ToolClassify, map[string]any{"text": req.Text},
		func() Decision[models.Category] { return p.classifier.Classify(req.Text) })

	tags := record(p, &trace, ToolTag, map[string]any{"text": req.Text},
		func() Decision[[]string] { return p.tagger.Tag(req.Text) })

	contact := p.Contact(ctx, req.OwnerID, req.SenderID)
	priority := record(p, &trace, ToolPriority,
		map[string]any{"sender_id": req.SenderID, "category": category},
		func() Decision[models.Priority] { return p.scorer.Score(category, contact) })

	archive := record(p, &trace, ToolArchive,
		map[string]any{"category": category, "priority": priority},
		func() Decision[bool] { return p.archiver.ShouldArchive(category, priority) })

	draft := record(p, &trace, ToolDraft, map[string]any{"text": req.Text, "style": tone.Style},
		func() Decision[string] { return p.drafter.Draft(req.Text, tone) })

	trace.Elapsed = time.Since(start)
	if trace.Elapsed > p.thresholds.Total {
		utils.Log.Warn("Organize took %s, above %s", trace.Elapsed, p.thresholds.Total)
	}

	return models.OrganizeResult{
		Category:      category,
		Tags:          tags,
		Priority:      priority,
		ShouldArchive: archive,
		Draft:         &draft,
	}, trace
}

// SortThreads orders threads most urgent first.
func (p *Pipeline) SortThreads(threads []models.ConversationThread) Decision[[]string] {
	d := p.sorter.Sort(threads)
	if d.Degraded {
		utils.Log.Warn("Thread sort fell back to input order: %v", d.Err)
	}
	return d
}

// Classifier exposes the pipeline's classifier.
func (p *Pipeline) Classifier() *Classifier { return p.classifier }

// Drafter exposes the pipeline's reply drafter.
func (p *Pipeline) Drafter() *ReplyDrafter { return p.drafter }

func record[T any](p *Pipeline, trace *Trace, name string, input map[string]any, run func() Decision[T]) T {
	start := time.Now()
	d := run()
	elapsed := time.Since(start)

	res := models.ToolResult{
		ToolName:      name,
		Input:         input,
		Output:        d.Value,
		ExecutionTime: elapsed.Seconds(),
		Success:       !d.Degraded,
	}
	if d.Err != nil {
		res.Error = d.Err.Error()
		utils.Log.Warn("%s degraded to default: %v", name, d.Err)
	}
	if elapsed > p.thresholds.Tool {
		utils.Log.Warn("%s took %s, above %s", name, elapsed, p.thresholds.Tool)
	}
	trace.Steps = append(trace.Steps, res)
	return d.Value
}
