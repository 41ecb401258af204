package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"msgagent/handlers/api"
	"msgagent/handlers/web"
	"msgagent/middleware"
	"msgagent/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and demo dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.openDemo(); err != nil {
			return err
		}

		app := newServer(ctx, a)

		go a.cache.RunJanitor(ctx, 10*time.Minute)
		go func() {
			<-ctx.Done()
			utils.Log.Info("Shutting down server...")
			if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
				utils.Log.Error("Error during shutdown: %v", err)
			}
		}()

		addr := cfg.Addr()
		if cfg.SSL.Enabled {
			if err := cfg.ValidateSSL(); err != nil {
				return err
			}
			utils.Log.Info("Starting HTTPS server on %s...", addr)
			return app.ListenTLS(addr, cfg.SSL.CertFile, cfg.SSL.KeyFile)
		}
		utils.Log.Info("Starting server on %s...", addr)
		return app.Listen(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newServer builds the fiber app with every route mounted
func newServer(ctx context.Context, a *app) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "msgagent",
		Views:        web.NewEngine(),
		ViewsLayout:  web.Layout,
		ErrorHandler: api.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline';",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(a.cfg.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
	}))
	if headers := a.cfg.GetSecurityHeaders(); len(headers) > 0 {
		app.Use(func(c *fiber.Ctx) error {
			for k, v := range headers {
				c.Set(k, v)
			}
			return c.Next()
		})
	}
	app.Use(middleware.LocaleMiddleware())
	app.Use(middleware.RateLimiter(ctx, a.cfg.Limits.RateLimitPerMinute, time.Minute))

	events := api.NewEventHub()
	processor := a.processor(events)
	maxLength := a.cfg.Limits.MaxMessageLength

	handlers := api.Handlers{
		Agent:    api.NewAgentHandler(processor, a.toolbox, a.store, maxLength),
		Prompts:  api.NewPromptHandler(a.prompts, events),
		Contacts: api.NewContactHandler(a.store, a.store),
		Events:   events,
		I18n:     &api.I18nHandler{},
	}

	var dashboard *web.DashboardHandler
	if a.demo != nil {
		demo := api.NewDemoHandler(a.demo, a.demoProcessor(events), api.DemoOptions{
			OwnerID:     a.cfg.Demo.OwnerID,
			MaxLength:   maxLength,
			ImportLimit: a.cfg.IMAP.Limit,
			Tags:        a.tags,
			Importer:    a.importer,
			Events:      events,
		})
		handlers.Demo = demo

		csrf := middleware.DefaultCSRFConfig()
		csrf.Secure = a.cfg.SSL.Enabled
		dashboard = web.NewDashboardHandler(a.demo, demo, csrf, a.cfg.Demo.OwnerID, maxLength)
	}

	api.Mount(app, handlers, middleware.Auth(middleware.AuthConfig{
		Secret:      a.cfg.Auth.JWTSecret,
		DefaultUser: a.cfg.Demo.OwnerID,
	}))
	if dashboard != nil {
		dashboard.Mount(app)
	}

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no route for %s %s", c.Method(), c.Path()))
	})

	return app
}
