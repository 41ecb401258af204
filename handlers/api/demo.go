package api

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"msgagent/ingest"
	"msgagent/models"
	"msgagent/storage"
	"msgagent/utils"
)

// DemoOptions carries the optional collaborators of the demo handler.
type DemoOptions struct {
	OwnerID     string
	MaxLength   int
	ImportLimit int
	Tags        *storage.TagIndex
	Importer    *ingest.Importer
	Events      *EventHub
}

// DemoHandler serves the demo message set kept in JSON files
type DemoHandler struct {
	store     *storage.DemoStore
	processor *Processor
	opts      DemoOptions
}

// NewDemoHandler creates the handler
func NewDemoHandler(store *storage.DemoStore, processor *Processor, opts DemoOptions) *DemoHandler {
	if opts.OwnerID == "" {
		opts.OwnerID = storage.DemoUserID
	}
	if opts.ImportLimit <= 0 {
		opts.ImportLimit = 20
	}
	return &DemoHandler{store: store, processor: processor, opts: opts}
}

type addMessageRequest struct {
	Text       string `json:"text" query:"text"`
	SenderID   string `json:"sender_id" query:"sender_id"`
	SenderName string `json:"sender_name" query:"sender_name"`
}

type processedMessage struct {
	Success   bool                   `json:"success"`
	MessageID int                    `json:"message_id"`
	Sender    string                 `json:"sender"`
	Result    *models.OrganizeResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Messages answers GET /demo/messages. page and page_size are optional.
func (h *DemoHandler) Messages(c *fiber.Ctx) error {
	messages, err := h.store.Messages()
	if err != nil {
		return utils.InternalServerError("Failed to load messages", err)
	}
	unprocessed := 0
	for _, m := range messages {
		if !m.Processed {
			unprocessed++
		}
	}

	page := models.NewPaginatedMessages(messages, c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	return c.JSON(fiber.Map{
		"total_messages":    len(messages),
		"unprocessed_count": unprocessed,
		"messages":          page.Messages,
		"pagination":        page,
	})
}

// Unprocessed answers GET /demo/messages/unprocessed
func (h *DemoHandler) Unprocessed(c *fiber.Ctx) error {
	messages, err := h.store.Unprocessed()
	if err != nil {
		return utils.InternalServerError("Failed to load messages", err)
	}
	return c.JSON(fiber.Map{"count": len(messages), "messages": messages})
}

// Process answers POST /demo/process/:id
func (h *DemoHandler) Process(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequestError("Invalid message id", err)
	}
	msg, err := h.store.Message(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return utils.NotFoundError("Message not found", err).WithKey(utils.ErrKeyMessageNotFound)
		}
		return utils.InternalServerError("Failed to load message", err)
	}

	if msg.Processed {
		return c.JSON(fiber.Map{
			"message": "訊息已處理過",
			"result":  msg.ProcessingResult,
		})
	}

	result, err := h.process(c.UserContext(), *msg)
	if err != nil {
		return utils.InternalServerError("Failed to process message", err)
	}
	return c.JSON(fiber.Map{
		"message_id":    msg.ID,
		"original_text": msg.Text,
		"sender":        msg.SenderName,
		"result":        result,
	})
}

// BatchProcess answers POST /demo/batch-process
func (h *DemoHandler) BatchProcess(c *fiber.Ctx) error {
	messages, err := h.store.Unprocessed()
	if err != nil {
		return utils.InternalServerError("Failed to load messages", err)
	}

	results := make([]processedMessage, 0, len(messages))
	processed, failed := 0, 0
	for _, msg := range messages {
		entry := processedMessage{MessageID: msg.ID, Sender: msg.SenderName}
		result, err := h.process(c.UserContext(), msg)
		if err != nil {
			entry.Error = err.Error()
			failed++
		} else {
			entry.Success = true
			entry.Result = result
			processed++
		}
		results = append(results, entry)
	}

	return c.JSON(fiber.Map{
		"processed_count": processed,
		"failed_count":    failed,
		"results":         results,
	})
}

// ProcessMessage organizes demo message id. A message that was already
// processed returns its stored result.
func (h *DemoHandler) ProcessMessage(ctx context.Context, id int) (*models.OrganizeResult, error) {
	msg, err := h.store.Message(id)
	if err != nil {
		return nil, err
	}
	if msg.Processed {
		return msg.ProcessingResult, nil
	}
	return h.process(ctx, *msg)
}

// process organizes one demo message with the owner's profile and records
// the outcome in the message file, the history and the tag index.
func (h *DemoHandler) process(ctx context.Context, msg models.DemoMessage) (*models.OrganizeResult, error) {
	profile, err := h.store.UserProfile(h.opts.OwnerID)
	if err != nil {
		return nil, err
	}

	out := h.processor.Process(ctx, h.opts.OwnerID, models.MessageRequest{
		Text:        msg.Text,
		SenderID:    msg.SenderID,
		OwnerID:     h.opts.OwnerID,
		ToneProfile: profile.Tone(),
	})

	if err := h.store.MarkProcessed(msg.ID, out.Result); err != nil {
		return nil, err
	}
	if _, err := h.store.AppendLog(models.ProcessingLog{
		MessageID:     msg.ID,
		MessageText:   msg.Text,
		SenderID:      msg.SenderID,
		Result:        &out.Result,
		ExecutionTime: out.Took.Seconds(),
	}); err != nil {
		utils.Log.Warn("Failed to append processing log for message %d: %v", msg.ID, err)
	}
	if h.opts.Tags != nil {
		if err := h.opts.Tags.SetTags(msg.ID, out.Result.Tags); err != nil {
			utils.Log.Warn("Failed to index tags for message %d: %v", msg.ID, err)
		}
	}
	return &out.Result, nil
}

// Stats answers GET /demo/stats
func (h *DemoHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.Stats()
	if err != nil {
		return utils.InternalServerError("Failed to compute stats", err)
	}
	if h.opts.Tags != nil {
		if counts, err := h.opts.Tags.Counts(); err != nil {
			utils.Log.Warn("Failed to read tag counts: %v", err)
		} else {
			stats.TagCounts = counts
		}
	}
	contacts, err := h.store.Contacts()
	if err != nil {
		return utils.InternalServerError("Failed to load contacts", err)
	}

	return c.JSON(fiber.Map{
		"processing_stats":  stats,
		"total_messages":    stats.TotalMessages,
		"total_contacts":    len(contacts),
		"unprocessed_count": stats.UnprocessedMessages,
	})
}

// AddMessage answers POST /demo/add-message. Fields come from the JSON body
// or, failing that, the query string.
func (h *DemoHandler) AddMessage(c *fiber.Ctx) error {
	var req addMessageRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	} else if err := c.QueryParser(&req); err != nil {
		return utils.BadRequestError("Invalid query", err)
	}

	text, err := cleanText(req.Text, h.opts.MaxLength)
	if err != nil {
		return err
	}
	if req.SenderID == "" {
		return utils.BadRequestError("sender_id is required", nil)
	}
	if req.SenderName == "" {
		req.SenderName = req.SenderID
	}

	msg, err := h.store.AddMessage(text, req.SenderID, req.SenderName)
	if err != nil {
		return utils.InternalServerError("Failed to add message", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "訊息新增成功",
		"message_id": msg.ID,
		"text":       msg.Text,
		"sender":     msg.SenderName,
	})
}

// Contacts answers GET /demo/contacts
func (h *DemoHandler) Contacts(c *fiber.Ctx) error {
	contacts, err := h.store.Contacts()
	if err != nil {
		return utils.InternalServerError("Failed to load contacts", err)
	}
	return c.JSON(fiber.Map{"total_contacts": len(contacts), "contacts": contacts})
}

// UserProfile answers GET /demo/user-profile
func (h *DemoHandler) UserProfile(c *fiber.Ctx) error {
	profile, err := h.store.UserProfile(h.opts.OwnerID)
	if err != nil {
		return utils.InternalServerError("Failed to load user profile", err)
	}
	return c.JSON(fiber.Map{"user_profile": profile})
}

// Threads answers GET /demo/threads with one thread per sender, most
// urgent first.
func (h *DemoHandler) Threads(c *fiber.Ctx) error {
	messages, err := h.store.Messages()
	if err != nil {
		return utils.InternalServerError("Failed to load messages", err)
	}
	threads := utils.NewThreadBuilder().BuildThreads(messages)
	order := h.processor.Pipeline().SortThreads(threads)

	byID := make(map[string]models.ConversationThread, len(threads))
	for _, t := range threads {
		byID[t.ID] = t
	}
	sorted := make([]models.ConversationThread, 0, len(threads))
	for _, id := range order.Value {
		sorted = append(sorted, byID[id])
	}

	resp := fiber.Map{"threads": sorted, "sorted_ids": order.Value, "count": len(sorted)}
	if order.Degraded {
		resp["degraded"] = true
	}
	return c.JSON(resp)
}

// TagMessages answers GET /demo/tags/:tag
func (h *DemoHandler) TagMessages(c *fiber.Ctx) error {
	if h.opts.Tags == nil {
		return utils.NotFoundError("Tag index is not enabled", nil)
	}
	tag, err := url.PathUnescape(c.Params("tag"))
	if err != nil {
		return utils.BadRequestError("Invalid tag", err)
	}
	ids, err := h.opts.Tags.MessagesWithTag(tag)
	if err != nil {
		return utils.InternalServerError("Failed to read tag index", err)
	}

	messages := make([]models.DemoMessage, 0, len(ids))
	for _, id := range ids {
		msg, err := h.store.Message(id)
		if err != nil {
			utils.Log.Debug("Tagged message %d is gone: %v", id, err)
			continue
		}
		messages = append(messages, *msg)
	}
	return c.JSON(fiber.Map{"tag": tag, "count": len(messages), "messages": messages})
}

// Import answers POST /demo/import?limit=N
func (h *DemoHandler) Import(c *fiber.Ctx) error {
	if h.opts.Importer == nil {
		return utils.BadRequestError("Mail import is not configured", nil)
	}
	report, err := h.opts.Importer.Import(c.UserContext(), c.QueryInt("limit", h.opts.ImportLimit))
	if err != nil {
		return utils.InternalServerError("Mail import failed", err)
	}

	if h.opts.Events != nil && len(report.Imported) > 0 {
		h.opts.Events.Publish(Event{
			Type:    EventMessagesImported,
			UserID:  h.opts.OwnerID,
			Message: "imported",
			Data: map[string]interface{}{
				"imported": len(report.Imported),
				"skipped":  report.Skipped,
			},
		})
	}
	return c.JSON(report)
}
