// Package server implements the MCP server that exposes the relay to agents.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/medsum/medsum/relay"
)

// Explainer is the part of relay.Relay the tools need.
type Explainer interface {
	Explain(ctx context.Context, req relay.Request) (*relay.Result, error)
	Prompt(req relay.Request) (string, error)
}

// Server is the medsum MCP server.
type Server struct {
	version   string
	explainer Explainer
	logger    *slog.Logger
}

// New creates a new MCP server backed by e.
func New(version string, e Explainer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		version:   version,
		explainer: e,
		logger:    logger,
	}
}

// Serve starts the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve() error {
	srv := mcpserver.NewMCPServer(
		"medsum",
		s.version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
	)

	s.registerTools(srv)

	return mcpserver.ServeStdio(srv)
}

func (s *Server) registerTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool("explain",
			mcp.WithDescription("Explain a diagnosis and the prescribed medicines in plain language"),
			mcp.WithString("diagnosis",
				mcp.Description("The diagnosis, e.g. Hypertension"),
				mcp.Required(),
			),
			mcp.WithString("medicines",
				mcp.Description("Prescribed medicines, e.g. Metformin, Lisinopril"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleExplain,
	)

	srv.AddTool(
		mcp.NewTool("prompt",
			mcp.WithDescription("Show the prompt that would be sent for a diagnosis and medicines, without calling the model"),
			mcp.WithString("diagnosis",
				mcp.Description("The diagnosis"),
				mcp.Required(),
			),
			mcp.WithString("medicines",
				mcp.Description("Prescribed medicines"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handlePrompt,
	)
}

// requestFrom reads both arguments. Missing arguments become empty strings so
// the relay reports them through its own validation.
func requestFrom(request mcp.CallToolRequest) relay.Request {
	return relay.Request{
		Diagnosis: request.GetString("diagnosis", ""),
		Medicines: request.GetString("medicines", ""),
	}
}

func (s *Server) handleExplain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.explainer.Explain(ctx, requestFrom(request))
	if err != nil {
		if relay.KindOf(err) == relay.KindValidation {
			return mcp.NewToolResultError(relay.MissingFieldsWarning), nil
		}
		s.logger.Warn("mcp explain failed", "kind", relay.KindOf(err))
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	return mcp.NewToolResultText(res.Content), nil
}

func (s *Server) handlePrompt(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := s.explainer.Prompt(requestFrom(request))
	if err != nil {
		return mcp.NewToolResultError(relay.MissingFieldsWarning), nil
	}
	return mcp.NewToolResultText(prompt), nil
}
