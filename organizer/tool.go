package organizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"msgagent/models"
)

// Tool names exposed to orchestrators.
const (
	ToolClassify = "classify_message"
	ToolTag      = "extract_tags"
	ToolPriority = "score_priority"
	ToolArchive  = "decide_archive"
	ToolDraft    = "draft_reply"
	ToolSort     = "sort_threads"
)

// DecisionTool is the capability every decision component offers to an
// orchestrator: a stable name and a JSON-in, value-out invocation.
type DecisionTool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input json.RawMessage) (any, error)
}

// Tool adapts a typed function into a DecisionTool.
type Tool[In, Out any] struct {
	name        string
	description string
	fn          func(context.Context, In) (Out, error)
}

// NewTool wraps fn.
func NewTool[In, Out any](name, description string, fn func(context.Context, In) (Out, error)) *Tool[In, Out] {
	return &Tool[In, Out]{name: name, description: description, fn: fn}
}

func (t *Tool[In, Out]) Name() string        { return t.name }
func (t *Tool[In, Out]) Description() string { return t.description }

// Call invokes the tool with a typed input.
func (t *Tool[In, Out]) Call(ctx context.Context, in In) (Out, error) {
	if err := ctx.Err(); err != nil {
		var zero Out
		return zero, err
	}
	return t.fn(ctx, in)
}

// Invoke decodes input and calls the tool.
func (t *Tool[In, Out]) Invoke(ctx context.Context, input json.RawMessage) (any, error) {
	var in In
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, fmt.Errorf("decode %s input: %w", t.name, err)
		}
	}
	return t.Call(ctx, in)
}

type ClassifyInput struct {
	Text string `json:"text" jsonschema:"the message text to classify"`
}

type ClassifyOutput struct {
	Category models.Category `json:"category"`
	Degraded bool            `json:"degraded,omitempty"`
}

type TagInput struct {
	Text string `json:"text" jsonschema:"the message text to tag"`
}

type TagOutput struct {
	Tags []string `json:"tags"`
}

type PriorityInput struct {
	Category string `json:"category" jsonschema:"category of the message"`
	SenderID string `json:"sender_id" jsonschema:"sender whose contact settings apply"`
	OwnerID  string `json:"owner_id,omitempty" jsonschema:"user who owns the contact list"`
}

type PriorityOutput struct {
	Priority models.Priority `json:"priority"`
	Base     models.Priority `json:"base"`
	Boost    int             `json:"priority_boost"`
	Starred  bool            `json:"is_starred"`
}

type ArchiveInput struct {
	Category string `json:"category" jsonschema:"category of the message"`
	Priority any    `json:"priority" jsonschema:"priority from 1 (urgent) to 5"`
}

type ArchiveOutput struct {
	ShouldArchive bool `json:"should_archive"`
}

type DraftInput struct {
	Text        string             `json:"text" jsonschema:"the message to reply to"`
	ToneProfile models.ToneProfile `json:"tone_profile" jsonschema:"voice used for the reply"`
}

type DraftOutput struct {
	Draft string `json:"draft"`
}

type SortInput struct {
	Threads []models.ConversationThread `json:"threads" jsonschema:"threads to order"`
}

type SortOutput struct {
	SortedThreads []string `json:"sorted_threads"`
	Sorted        bool     `json:"sorted"`
}

// Toolbox holds the decision tools built over one pipeline.
type Toolbox struct {
	Classify *Tool[ClassifyInput, ClassifyOutput]
	Tag      *Tool[TagInput, TagOutput]
	Priority *Tool[PriorityInput, PriorityOutput]
	Archive  *Tool[ArchiveInput, ArchiveOutput]
	Draft    *Tool[DraftInput, DraftOutput]
	Sort     *Tool[SortInput, SortOutput]

	byName map[string]DecisionTool
}

// NewToolbox exposes p's components as tools.
func NewToolbox(p *Pipeline) *Toolbox {
	tb := &Toolbox{
		Classify: NewTool(ToolClassify, "Classify a message as 工作, 朋友, 家人 or 廣告",
			func(_ context.Context, in ClassifyInput) (ClassifyOutput, error) {
				d := p.classifier.Classify(in.Text)
				return ClassifyOutput{Category: d.Value, Degraded: d.Degraded}, nil
			}),
		Tag: NewTool(ToolTag, "Extract up to five descriptive tags from a message",
			func(_ context.Context, in TagInput) (TagOutput, error) {
				return TagOutput{Tags: p.tagger.Tag(in.Text).Value}, nil
			}),
		Priority: NewTool(ToolPriority, "Score priority 1-5 from category and the sender's contact settings",
			func(ctx context.Context, in PriorityInput) (PriorityOutput, error) {
				category, _ := NormalizeCategory(in.Category)
				contact := p.Contact(ctx, in.OwnerID, in.SenderID)
				return PriorityOutput{
					Priority: p.scorer.Score(category, contact).Value,
					Base:     p.scorer.Base(category),
					Boost:    contact.PriorityBoost,
					Starred:  contact.IsStarred,
				}, nil
			}),
		Archive: NewTool(ToolArchive, "Decide whether a message should be archived",
			func(_ context.Context, in ArchiveInput) (ArchiveOutput, error) {
				category, _ := NormalizeCategory(in.Category)
				priority, _ := NormalizePriority(in.Priority)
				return ArchiveOutput{ShouldArchive: p.archiver.ShouldArchive(category, priority).Value}, nil
			}),
		Draft: NewTool(ToolDraft, "Draft a short reply in the user's tone",
			func(_ context.Context, in DraftInput) (DraftOutput, error) {
				return DraftOutput{Draft: p.drafter.Draft(in.Text, NormalizeTone(in.ToneProfile)).Value}, nil
			}),
		Sort: NewTool(ToolSort, "Order conversation threads by priority, recency and unread count",
			func(_ context.Context, in SortInput) (SortOutput, error) {
				d := p.sorter.Sort(in.Threads)
				return SortOutput{SortedThreads: d.Value, Sorted: !d.Degraded}, nil
			}),
	}

	tb.byName = make(map[string]DecisionTool)
	for _, t := range []DecisionTool{tb.Classify, tb.Tag, tb.Priority, tb.Archive, tb.Draft, tb.Sort} {
		tb.byName[t.Name()] = t
	}
	return tb
}

// Tools lists every tool sorted by name.
func (tb *Toolbox) Tools() []DecisionTool {
	tools := make([]DecisionTool, 0, len(tb.byName))
	for _, t := range tb.byName {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Lookup finds a tool by name.
func (tb *Toolbox) Lookup(name string) (DecisionTool, bool) {
	t, ok := tb.byName[name]
	return t, ok
}
