// Package mcpserver exposes the todo and rule services as MCP tools over
// stdio.
package mcpserver

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/rules"
	"github.com/baiirun/minitodo/internal/todo"
)

// Name is the server name announced to clients.
const Name = "minitodo"

// Server wires the services to MCP tool handlers.
type Server struct {
	todos    *todo.Service
	rules    *rules.Service
	pipeline *ingest.Pipeline
	log      zerolog.Logger
	mcp      *server.MCPServer
}

// New registers every tool and returns the server.
func New(todos *todo.Service, ruleSvc *rules.Service, pipeline *ingest.Pipeline, logger zerolog.Logger, version string) *Server {
	s := &Server{
		todos:    todos,
		rules:    ruleSvc,
		pipeline: pipeline,
		log:      logger,
	}

	s.mcp = server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range s.tools() {
		s.mcp.AddTool(t.Tool, s.logged(t.Tool.Name, t.Handler))
	}
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio blocks serving requests on stdin and stdout.
func (s *Server) ServeStdio() error {
	s.log.Info().Msg("serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) logged(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := h(ctx, req)
		evt := s.log.Debug()
		if res != nil && res.IsError {
			evt = s.log.Warn()
		}
		evt.Str("tool", name).Bool("error", res != nil && res.IsError).Msg("tool call")
		return res, err
	}
}

const instructions = `minitodo keeps an ordered todo queue and a list of rules.
Use get-next-todo to fetch the next incomplete task, do the work, then call
complete-todo with the ID in the task description. bulk-add-todos turns every
file in a folder into a numbered task.`

// idArg reads a required positive integer argument.
func idArg(req mcp.CallToolRequest, name string) (int64, error) {
	f, err := req.RequireFloat(name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", name, err, model.ErrInvalidArgument)
	}
	return positiveInt(name, f)
}

// optionalIDArg reads an optional positive integer argument.
func optionalIDArg(req mcp.CallToolRequest, name string) (int64, bool, error) {
	if _, ok := req.GetArguments()[name]; !ok {
		return 0, false, nil
	}
	id, err := idArg(req, name)
	return id, err == nil, err
}

// maxID is the largest integer a JSON number carries exactly.
const maxID = 1 << 53

func positiveInt(name string, f float64) (int64, error) {
	if f != math.Trunc(f) || f <= 0 || f > maxID {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, model.ErrInvalidArgument)
	}
	return int64(f), nil
}

// stringArg reads a required non-empty string argument.
func stringArg(req mcp.CallToolRequest, name string) (string, error) {
	v, err := req.RequireString(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", name, err, model.ErrInvalidArgument)
	}
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", name, model.ErrInvalidArgument)
	}
	return v, nil
}

// optionalStringArg reads an optional string argument that must be non-empty
// when present.
func optionalStringArg(req mcp.CallToolRequest, name string) (*string, error) {
	if _, ok := req.GetArguments()[name]; !ok {
		return nil, nil
	}
	v, err := stringArg(req, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
