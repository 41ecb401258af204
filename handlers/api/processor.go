package api

import (
	"context"
	"time"

	"msgagent/models"
	"msgagent/organizer"
	"msgagent/prompt"
	"msgagent/storage"
	"msgagent/utils"
)

// Outcome is everything one processed message produced.
type Outcome struct {
	Result models.OrganizeResult `json:"result"`
	Steps  []models.ToolResult   `json:"tool_calls"`
	Prompt prompt.Rendered       `json:"-"`
	Took   time.Duration         `json:"-"`
	LogID  int64                 `json:"log_id,omitempty"`
}

// Processor runs the pipeline for a user: render their prompt, organize
// the message, persist an execution log and announce the result.
type Processor struct {
	pipeline *organizer.Pipeline
	prompts  *prompt.Manager
	logs     storage.ExecutionLogStore
	events   *EventHub
}

// NewProcessor wires a processor. logs and events may be nil.
func NewProcessor(pipeline *organizer.Pipeline, prompts *prompt.Manager, logs storage.ExecutionLogStore, events *EventHub) *Processor {
	return &Processor{pipeline: pipeline, prompts: prompts, logs: logs, events: events}
}

// Process organizes req on behalf of userID. Contact settings are always
// read from userID's list; an owner_id in req is ignored.
func (p *Processor) Process(ctx context.Context, userID string, req models.MessageRequest) *Outcome {
	if req.OwnerID != "" && req.OwnerID != userID {
		utils.Log.Warn("Ignoring owner_id %s in request from %s", req.OwnerID, userID)
	}
	req.OwnerID = userID
	req.ToneProfile = organizer.NormalizeTone(req.ToneProfile)

	rendered := p.prompts.RenderFor(ctx, userID, req.ToneProfile)
	result, trace := p.pipeline.Organize(ctx, req)

	out := &Outcome{Result: result, Steps: trace.Steps, Prompt: rendered, Took: trace.Elapsed}

	if p.logs != nil {
		entry := &models.ExecutionLog{
			UserID:        userID,
			MessageText:   req.Text,
			SenderID:      req.SenderID,
			PromptUsed:    rendered.Text,
			Result:        &result,
			ToolCalls:     trace.Steps,
			ExecutionTime: trace.Elapsed.Seconds(),
			Success:       trace.Success(),
		}
		if !entry.Success {
			for _, s := range trace.Steps {
				if s.Error != "" {
					entry.Error = s.ToolName + ": " + s.Error
					break
				}
			}
		}
		if err := p.logs.LogExecution(ctx, entry); err != nil {
			utils.Log.Warn("Failed to store execution log for %s: %v", userID, err)
		} else {
			out.LogID = entry.ID
		}
	}

	utils.Log.WithFields(map[string]interface{}{
		"user":     userID,
		"sender":   req.SenderID,
		"category": string(result.Category),
		"priority": int(result.Priority),
	}).Info("Message organized in %s", trace.Elapsed)

	if p.events != nil {
		p.events.Publish(Event{
			Type:    EventMessageProcessed,
			UserID:  userID,
			Message: string(result.Category),
			Data: map[string]interface{}{
				"sender_id":      req.SenderID,
				"category":       result.Category,
				"priority":       result.Priority,
				"should_archive": result.ShouldArchive,
			},
		})
	}
	return out
}

// Pipeline returns the underlying pipeline.
func (p *Processor) Pipeline() *organizer.Pipeline {
	return p.pipeline
}
