// Package toolkit groups AI-callable tools into named parents and exposes
// them to tool-calling clients, either one tool at a time (the MCP server
// in internal/mcpserver) or as a single batched meta-tool (see
// examples/claude).
//
// Core concepts:
//   - Toolkit: the top-level registry holding every Parent
//   - Parent: a namespace of related Child tools, e.g. the e-Gov law tools
//   - Child: a single tool with a name, a description, a JSON input schema
//     and a handler
//
// This file defines the interfaces that Parent and Child implementations
// satisfy. NewChild and NewParent in builder.go cover the common case;
// packages with stricter argument handling (pkg/tools/laws) implement
// Child directly.
package toolkit

import (
	"context"
	"encoding/json"
)

// Parent is a named collection of Child tools.
type Parent interface {
	// GetName returns the parent's name. It must be unique within a Toolkit.
	GetName() string

	// GetDescription describes what the tools of this parent are for.
	GetDescription() string

	// GetChildren returns the parent's tools keyed by tool name.
	GetChildren() map[string]Child

	// HandleChildren runs the requested child tools in request order and
	// collects their results. A failing child never aborts the others: its
	// ToolKitError is stored in that child's response slot instead.
	HandleChildren(ctx context.Context, childRequests []ToolKitChild) ParentResponse
}

// Child is a single callable tool.
type Child interface {
	// GetName returns the tool name. Names are unique across a Toolkit
	// because the MCP server exposes children without their parent prefix.
	GetName() string

	// GetDescription is shown to the model when it picks a tool.
	GetDescription() string

	// GetInputSchema returns the JSON schema of the tool's arguments.
	GetInputSchema() interface{}

	// Handle runs the tool. args is the raw JSON object sent by the caller.
	// Framework-level failures are returned as ToolKitError values.
	Handle(ctx context.Context, args json.RawMessage) (interface{}, error)
}
