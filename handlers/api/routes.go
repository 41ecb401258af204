package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handlers groups everything Mount registers. Demo may be nil.
type Handlers struct {
	Agent    *AgentHandler
	Prompts  *PromptHandler
	Contacts *ContactHandler
	Demo     *DemoHandler
	Events   *EventHub
	I18n     *I18nHandler
}

// Mount registers the API routes. auth guards every route that acts on
// behalf of a user.
func Mount(app fiber.Router, h Handlers, auth fiber.Handler) {
	// Public routes
	app.Get("/", h.Agent.Root)
	app.Get("/health", h.Agent.Health)
	if h.I18n != nil {
		app.Get("/api/i18n/:lang", h.I18n.GetTranslations)
	}

	// Decision routes
	app.Post("/organize", auth, h.Agent.Organize)
	app.Post("/test", auth, h.Agent.Test)
	app.Post("/sort", auth, h.Agent.Sort)

	apiRoutes := app.Group("/api", auth)
	{
		apiRoutes.Get("/tools", h.Agent.ListTools)
		apiRoutes.Post("/tools/:name", h.Agent.CallTool)

		apiRoutes.Get("/prompts", h.Prompts.List)
		apiRoutes.Post("/prompts", h.Prompts.Create)
		apiRoutes.Get("/prompts/active", h.Prompts.Active)
		apiRoutes.Post("/prompts/validate", h.Prompts.Validate)
		apiRoutes.Post("/prompts/variables", h.Prompts.Variables)
		apiRoutes.Post("/prompts/render", h.Prompts.Render)
		apiRoutes.Post("/prompts/:id/activate", h.Prompts.Activate)
		apiRoutes.Delete("/prompts/:id", h.Prompts.Delete)

		apiRoutes.Get("/contacts/:sender", h.Contacts.Get)
		apiRoutes.Put("/contacts/:sender", h.Contacts.Put)
		apiRoutes.Get("/stats", h.Contacts.Stats)
	}

	if h.Demo != nil {
		demo := app.Group("/demo")
		demo.Get("/messages", h.Demo.Messages)
		demo.Get("/messages/unprocessed", h.Demo.Unprocessed)
		demo.Post("/process/:id", h.Demo.Process)
		demo.Post("/batch-process", h.Demo.BatchProcess)
		demo.Get("/stats", h.Demo.Stats)
		demo.Post("/add-message", h.Demo.AddMessage)
		demo.Get("/contacts", h.Demo.Contacts)
		demo.Get("/user-profile", h.Demo.UserProfile)
		demo.Get("/threads", h.Demo.Threads)
		demo.Get("/tags/:tag", h.Demo.TagMessages)
		demo.Post("/import", h.Demo.Import)
	}

	if h.Events != nil {
		events := app.Group("/events")
		events.Get("/sse", h.Events.HandleSSE)
		events.Get("/ws", UpgradeWebSocket, websocket.New(h.Events.HandleWebSocket))
	}
}
