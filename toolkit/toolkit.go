package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Toolkit is the registry of every Parent served by a process.
type Toolkit struct {
	parents map[string]Parent
	name    string
}

// New creates a Toolkit named name holding parents. Nil parents are skipped
// and a duplicate parent name overwrites the earlier one, both with a
// warning.
//
//	lawParent, err := laws.NewParent(laws.NewService(client, logger))
//	...
//	tk := toolkit.New("egov-mcp", lawParent)
func New(name string, parents ...Parent) *Toolkit {
	parentMap := make(map[string]Parent, len(parents))
	for _, p := range parents {
		if p == nil {
			slog.Warn("nil parent provided to toolkit.New, skipping", "toolkit", name)
			continue
		}
		if _, exists := parentMap[p.GetName()]; exists {
			slog.Warn("duplicate parent name, overwriting", "toolkit", name, "parent", p.GetName())
		}
		parentMap[p.GetName()] = p
	}

	return &Toolkit{
		parents: parentMap,
		name:    name,
	}
}

// GetToolkitName returns the toolkit name.
func (t *Toolkit) GetToolkitName() string {
	return t.name
}

// GetToolkitSchema returns the input schema of the batched ToolKit request
// for provider. Only "anthropic" is known; other providers get the same
// schema with a warning.
func (t *Toolkit) GetToolkitSchema(provider string) interface{} {
	switch provider {
	case "anthropic":
		return GetToolKitSchemaForAnthropic()
	default:
		slog.Warn("unsupported schema provider, defaulting to anthropic", "provider", provider)
		return GetToolKitSchemaForAnthropic()
	}
}

// GetToolkitDescription renders the toolkit as the XML-like listing given to
// a model that calls the toolkit as one meta-tool. Parents and children are
// listed in name order so the text is stable between runs.
func (t *Toolkit) GetToolkitDescription() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("In this environment, you have access to the following <toolkit name=\"%s\">:\n", t.name))
	sb.WriteString("A <toolkit> is a collection of <parents>, a <parent> is a collection of <childs>.\n")
	sb.WriteString("Below is the list of available <parents> and their <childs>:\n")

	for _, parent := range t.sortedParents() {
		sb.WriteString(fmt.Sprintf("<parent name=\"%s\" description=\"%s\">\n", parent.GetName(), parent.GetDescription()))
		for _, child := range sortedChildren(parent) {
			schemaStr := "schema_error"
			schemaBytes, err := json.Marshal(child.GetInputSchema())
			if err == nil {
				schemaStr = string(schemaBytes)
			} else {
				slog.Error("marshal input schema", "parent", parent.GetName(), "child", child.GetName(), "err", err)
			}
			sb.WriteString(fmt.Sprintf("<child name=\"%s\" description=\"%s\"><input_schema>%s</input_schema></child>\n", child.GetName(), child.GetDescription(), schemaStr))
		}
		sb.WriteString("</parent>\n")
	}
	sb.WriteString("**NOTE**: A child tool cannot be invoked directly, it must be invoked through its parent.\n")
	sb.WriteString("</toolkit>")

	return sb.String()
}

// Tools lists every child of every parent as a flat tool, ordered by parent
// then child name. When two parents hold a child with the same name only the
// first one is listed.
func (t *Toolkit) Tools() []ToolInfo {
	var infos []ToolInfo
	seen := make(map[string]bool)
	for _, parent := range t.sortedParents() {
		for _, child := range sortedChildren(parent) {
			if seen[child.GetName()] {
				slog.Warn("tool name shadowed by an earlier parent", "parent", parent.GetName(), "tool", child.GetName())
				continue
			}
			seen[child.GetName()] = true

			schema, err := json.Marshal(child.GetInputSchema())
			if err != nil {
				slog.Error("marshal input schema", "tool", child.GetName(), "err", err)
				schema = json.RawMessage(`{"type":"object"}`)
			}
			infos = append(infos, ToolInfo{
				Name:        child.GetName(),
				Description: child.GetDescription(),
				InputSchema: schema,
			})
		}
	}
	return infos
}

// CallTool runs the child named name, looked up across all parents in the
// same order as Tools.
func (t *Toolkit) CallTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	child, ok := t.lookup(name)
	if !ok {
		return nil, NewError(CodeChildNotFound, fmt.Sprintf("tool '%s' not registered in toolkit '%s'", name, t.name))
	}
	return child.Handle(ctx, args)
}

func (t *Toolkit) lookup(name string) (Child, bool) {
	for _, parent := range t.sortedParents() {
		if child, ok := parent.GetChildren()[name]; ok {
			return child, true
		}
	}
	return nil, false
}

func (t *Toolkit) sortedParents() []Parent {
	names := make([]string, 0, len(t.parents))
	for name := range t.parents {
		names = append(names, name)
	}
	sort.Strings(names)

	parents := make([]Parent, 0, len(names))
	for _, name := range names {
		parents = append(parents, t.parents[name])
	}
	return parents
}

func sortedChildren(p Parent) []Child {
	children := p.GetChildren()
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	sorted := make([]Child, 0, len(names))
	for _, name := range names {
		sorted = append(sorted, children[name])
	}
	return sorted
}

// --- Processing Methods ---

// HandleToolKit decodes a batched ToolKit request and runs it.
//
// A request that is not valid JSON yields a response holding a single
// invalid_input_json error together with the decoding error. Unknown
// parents and failing children are reported inside the response and do not
// produce an error return.
func (t *Toolkit) HandleToolKit(ctx context.Context, input json.RawMessage) (ToolKitResponse, error) {
	tkRequest, err := t.parseToolKitInput(input)
	if err != nil {
		slog.Warn("parse toolkit input", "toolkit", t.name, "err", err)
		errResp := ToolKitResponse{
			Name: "toolkit_request_parse_error",
			Responses: []ParentResponse{
				{
					Name: "_parse_error",
					ChildsResponses: []ChildResponse{
						{Name: "_input_error", Response: NewError(CodeInvalidInputJSON, err.Error())},
					},
				},
			},
		}
		return errResp, err
	}

	return t.processToolKit(ctx, tkRequest)
}

func (t *Toolkit) processToolKit(ctx context.Context, toolkitRequest ToolKit) (ToolKitResponse, error) {
	tlResponse := ToolKitResponse{
		Name: t.GetToolkitName(),
	}

	if len(toolkitRequest.ToolKitParents) == 0 {
		return tlResponse, NewError(CodeNoParents, "No toolkit parents specified in the request")
	}

	for _, parentReq := range toolkitRequest.ToolKitParents {
		parent, ok := t.parents[parentReq.Name]
		if !ok {
			slog.Warn("requested parent not found", "toolkit", t.name, "parent", parentReq.Name)
			tlResponse.AddResponse(ParentResponse{
				Name: parentReq.Name,
				ChildsResponses: []ChildResponse{
					{Name: "_parent_error", Response: NewError(CodeParentNotFound, fmt.Sprintf("Parent toolkit '%s' not registered", parentReq.Name))},
				},
			})
			continue
		}

		tlResponse.AddResponse(parent.HandleChildren(ctx, parentReq.ToolKitChilds))
	}

	return tlResponse, nil
}

func (t *Toolkit) parseToolKitInput(input json.RawMessage) (ToolKit, error) {
	var toolkitRequest ToolKit
	if err := json.Unmarshal(input, &toolkitRequest); err != nil {
		return ToolKit{}, fmt.Errorf("error unmarshaling toolkit JSON input: %w", err)
	}
	return toolkitRequest, nil
}
