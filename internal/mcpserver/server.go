// Package mcpserver publishes a toolkit over the Model Context Protocol.
//
// Every child of every toolkit parent becomes one MCP tool. Results are
// returned as a single text block: strings verbatim, anything else as
// indented JSON. Failures are reported in-band with isError set, never as
// protocol errors.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matsumura-ka/egov-mcp/toolkit"
)

// Server serves one toolkit over MCP.
type Server struct {
	kit    *toolkit.Toolkit
	logger *slog.Logger
	mcp    *mcp.Server
}

// New registers every tool of kit on a fresh MCP server identified by name
// and version.
func New(kit *toolkit.Toolkit, name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		kit:    kit,
		logger: logger,
		mcp:    mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
	for _, tool := range mcpTools(kit) {
		s.mcp.AddTool(tool, s.handler(tool.Name))
	}
	return s
}

// Run serves MCP over stdin and stdout until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio", "toolkit", s.kit.GetToolkitName(), "tools", len(s.kit.Tools()))
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Call invokes the tool called name and renders its outcome.
func (s *Server) Call(ctx context.Context, name string, args json.RawMessage) *mcp.CallToolResult {
	start := time.Now()
	result, err := s.kit.CallTool(ctx, name, args)
	s.logger.Debug("tool call", "tool", name, "duration", time.Since(start), "err", err)

	var tkErr toolkit.ToolKitError
	if errors.As(err, &tkErr) && tkErr.Code == toolkit.CodeChildNotFound {
		return textResult("Unknown tool: "+name, true)
	}
	return Render(result, err)
}

func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return s.Call(ctx, name, args), nil
	}
}

func mcpTools(kit *toolkit.Toolkit) []*mcp.Tool {
	infos := kit.Tools()
	tools := make([]*mcp.Tool, 0, len(infos))
	for _, info := range infos {
		tools = append(tools, &mcp.Tool{
			Name:        info.Name,
			Description: info.Description,
			InputSchema: info.InputSchema,
		})
	}
	return tools
}

// Render converts a tool outcome into an MCP result.
func Render(result interface{}, err error) *mcp.CallToolResult {
	if err != nil {
		return textResult("Error: "+err.Error(), true)
	}
	switch v := result.(type) {
	case nil:
		return textResult("", false)
	case string:
		return textResult(v, false)
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return textResult("Error: encode result: "+err.Error(), true)
		}
		return textResult(string(b), false)
	}
}

// Text joins the text blocks of res.
func Text(res *mcp.CallToolResult) string {
	var out string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			out += tc.Text
		}
	}
	return out
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
