package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"msgagent/middleware"
	"msgagent/models"
	"msgagent/organizer"
	"msgagent/utils"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Pinger reports backend health
type Pinger interface {
	Ping(ctx context.Context) error
}

// AgentHandler serves the organize, sort and tool endpoints
type AgentHandler struct {
	processor *Processor
	toolbox   *organizer.Toolbox
	backend   Pinger
	maxLength int
}

// NewAgentHandler creates the handler. backend may be nil.
func NewAgentHandler(processor *Processor, toolbox *organizer.Toolbox, backend Pinger, maxLength int) *AgentHandler {
	return &AgentHandler{processor: processor, toolbox: toolbox, backend: backend, maxLength: maxLength}
}

// Root answers GET /
func (h *AgentHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Message agent is running!",
		"version": Version,
		"status":  "healthy",
	})
}

// Health answers GET /health
func (h *AgentHandler) Health(c *fiber.Ctx) error {
	database := "not configured"
	status := "healthy"
	if h.backend != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.backend.Ping(ctx); err != nil {
			database = "unreachable"
			status = "degraded"
			utils.Log.Warn("Health check ping failed: %v", err)
		} else {
			database = "ok"
		}
	}
	return c.JSON(fiber.Map{
		"status":          status,
		"database":        database,
		"tools_available": len(h.toolbox.Tools()),
		"prompt_cache":    h.processor.prompts.Renderer().CacheStats(),
		"time":            time.Now().Format(time.RFC3339),
	})
}

// Organize answers POST /organize
func (h *AgentHandler) Organize(c *fiber.Ctx) error {
	var req models.MessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	text, err := cleanText(req.Text, h.maxLength)
	if err != nil {
		return err
	}
	req.Text = text

	utils.Log.Info("Organize request from sender %s", req.SenderID)
	out := h.processor.Process(c.UserContext(), middleware.UserID(c), req)

	if c.QueryBool("trace") {
		return c.JSON(fiber.Map{
			"result":         out.Result,
			"tool_calls":     out.Steps,
			"execution_time": out.Took.Seconds(),
			"prompt_cached":  out.Prompt.Cached,
		})
	}
	return c.JSON(out.Result)
}

const (
	selfTestMessage = "今晚一起去看電影《沙丘2》好嗎？"
	selfTestSender  = "test_user"
)

// Test answers POST /test by running every tool on a fixed message
func (h *AgentHandler) Test(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tone := models.ToneProfile{Name: "測試用戶", Style: models.StyleCasual, Signature: "- 小明"}

	classified, err := h.toolbox.Classify.Call(ctx, organizer.ClassifyInput{Text: selfTestMessage})
	if err != nil {
		return toolError(organizer.ToolClassify, err)
	}
	tags, err := h.toolbox.Tag.Call(ctx, organizer.TagInput{Text: selfTestMessage})
	if err != nil {
		return toolError(organizer.ToolTag, err)
	}
	priority, err := h.toolbox.Priority.Call(ctx, organizer.PriorityInput{
		Category: string(classified.Category),
		SenderID: selfTestSender,
	})
	if err != nil {
		return toolError(organizer.ToolPriority, err)
	}
	archive, err := h.toolbox.Archive.Call(ctx, organizer.ArchiveInput{
		Category: string(classified.Category),
		Priority: int(priority.Priority),
	})
	if err != nil {
		return toolError(organizer.ToolArchive, err)
	}
	draft, err := h.toolbox.Draft.Call(ctx, organizer.DraftInput{Text: selfTestMessage, ToneProfile: tone})
	if err != nil {
		return toolError(organizer.ToolDraft, err)
	}

	return c.JSON(fiber.Map{
		"test_message": selfTestMessage,
		"classify":     classified,
		"tags":         tags,
		"priority":     priority,
		"archive":      archive,
		"draft":        draft,
		"status":       "所有工具運作正常",
	})
}

// Sort answers POST /sort
func (h *AgentHandler) Sort(c *fiber.Ctx) error {
	var in organizer.SortInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.toolbox.Sort.Call(c.UserContext(), in)
	if err != nil {
		return toolError(organizer.ToolSort, err)
	}
	return c.JSON(out)
}

// ListTools answers GET /api/tools
func (h *AgentHandler) ListTools(c *fiber.Ctx) error {
	tools := []fiber.Map{}
	for _, t := range h.toolbox.Tools() {
		tools = append(tools, fiber.Map{"name": t.Name(), "description": t.Description()})
	}
	return c.JSON(fiber.Map{"tools": tools, "count": len(tools)})
}

// CallTool answers POST /api/tools/:name with the raw JSON body as input
func (h *AgentHandler) CallTool(c *fiber.Ctx) error {
	name := c.Params("name")
	tool, ok := h.toolbox.Lookup(name)
	if !ok {
		return utils.NotFoundError("Unknown tool: "+name, nil)
	}

	body := c.Body()
	if len(body) > 0 && !json.Valid(body) {
		return utils.BadRequestError("Invalid request body", nil).WithKey(utils.ErrKeyJSONParse)
	}

	if name == organizer.ToolPriority {
		scoped, err := withOwner(body, middleware.UserID(c))
		if err != nil {
			return utils.BadRequestError("Invalid request body", err).WithKey(utils.ErrKeyJSONParse)
		}
		body = scoped
	}

	start := time.Now()
	out, err := tool.Invoke(c.UserContext(), body)
	if err != nil {
		return toolError(name, err)
	}
	return c.JSON(fiber.Map{
		"tool_name":      name,
		"output":         out,
		"execution_time": time.Since(start).Seconds(),
		"success":        true,
	})
}

// withOwner replaces owner_id in a JSON object body with the caller
func withOwner(body []byte, owner string) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
	}
	encoded, err := json.Marshal(owner)
	if err != nil {
		return nil, err
	}
	fields["owner_id"] = encoded
	return json.Marshal(fields)
}

func toolError(name string, err error) error {
	return utils.BadRequestError("Tool "+name+" failed", err).
		WithKey(utils.ErrKeyToolExecutionFailed).
		WithContext("tool", name)
}
