// Package mcpserver exposes the decision tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"msgagent/models"
	"msgagent/organizer"
	"msgagent/utils"
)

// Name and Version identify the server to MCP clients.
const (
	Name    = "msgagent"
	Version = "v1.0.0"

	// ToolOrganize runs the whole pipeline in one call.
	ToolOrganize = "organize_message"
)

// OrganizeInput is the organize_message argument.
type OrganizeInput struct {
	Text        string             `json:"text" jsonschema:"the message text"`
	SenderID    string             `json:"sender_id" jsonschema:"sender whose contact settings apply"`
	OwnerID     string             `json:"owner_id,omitempty" jsonschema:"user who owns the contact list"`
	ToneProfile models.ToneProfile `json:"tone_profile,omitempty" jsonschema:"voice used for the reply draft"`
}

// OrganizeOutput is the organize_message result.
type OrganizeOutput struct {
	Result    models.OrganizeResult `json:"result"`
	ToolCalls []models.ToolResult   `json:"tool_calls"`
}

// NewServer registers every tool in toolbox plus organize_message.
func NewServer(pipeline *organizer.Pipeline, toolbox *organizer.Toolbox) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)

	addTool(server, toolbox.Classify)
	addTool(server, toolbox.Tag)
	addTool(server, toolbox.Priority)
	addTool(server, toolbox.Archive)
	addTool(server, toolbox.Draft)
	addTool(server, toolbox.Sort)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolOrganize,
		Description: "Classify, tag, prioritize, decide archival and draft a reply for one message",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in OrganizeInput) (*mcp.CallToolResult, OrganizeOutput, error) {
		result, trace := pipeline.Organize(ctx, models.MessageRequest{
			Text:        in.Text,
			SenderID:    in.SenderID,
			OwnerID:     in.OwnerID,
			ToneProfile: in.ToneProfile,
		})
		return nil, OrganizeOutput{Result: result, ToolCalls: trace.Steps}, nil
	})

	return server
}

func addTool[In, Out any](server *mcp.Server, tool *organizer.Tool[In, Out]) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		out, err := tool.Call(ctx, in)
		if err != nil {
			utils.Log.Warn("MCP tool %s failed: %v", tool.Name(), err)
			return nil, out, err
		}
		utils.Log.Debug("MCP tool %s answered in %s", tool.Name(), time.Since(start))
		return nil, out, nil
	})
}

// ServeStdio runs server over stdin/stdout until ctx ends.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves server over the streamable HTTP transport.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}
