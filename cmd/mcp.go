package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"msgagent/mcpserver"
	"msgagent/utils"
)

func newMCPCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the decision tools over the Model Context Protocol",
		Long:  "Serve the decision tools to MCP clients on stdio, or over streamable HTTP with --http.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			server := mcpserver.NewServer(a.pipeline, a.toolbox)
			if addr == "" {
				utils.Log.Info("Serving MCP on stdio")
				return mcpserver.ServeStdio(ctx, server)
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           mcpserver.HTTPHandler(server),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					utils.Log.Error("MCP server shutdown: %v", err)
				}
			}()

			utils.Log.Info("Serving MCP over HTTP on %s", addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "Listen address for streamable HTTP (stdio when empty)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newMCPCmd())
}
