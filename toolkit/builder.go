package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

type child[T any] struct {
	name        string
	description string
	schema      interface{}
	handler     func(ctx context.Context, args T) (interface{}, error)
}

// NewChild builds a Child whose arguments are decoded into T before handler
// runs. The input schema is reflected from T once, at construction.
//
// Decoding failures are reported as invalid_arguments and handler failures
// as handler_execution_error; a ToolKitError returned by the handler is
// passed through untouched.
func NewChild[T any](name, description string, handler func(ctx context.Context, args T) (interface{}, error)) Child {
	return &child[T]{
		name:        name,
		description: description,
		schema:      GenerateSchema[T](),
		handler:     handler,
	}
}

func (c *child[T]) GetName() string             { return c.name }
func (c *child[T]) GetDescription() string      { return c.description }
func (c *child[T]) GetInputSchema() interface{} { return c.schema }

func (c *child[T]) Handle(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var v T
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &v); err != nil {
			return nil, NewError(CodeInvalidArguments, fmt.Sprintf("tool %s: %v", c.name, err))
		}
	}

	result, err := c.handler(ctx, v)
	if err != nil {
		if tkErr, ok := err.(ToolKitError); ok {
			return nil, tkErr
		}
		return nil, NewError(CodeHandlerExecution, fmt.Sprintf("tool %s: %v", c.name, err))
	}
	return result, nil
}

type parent struct {
	name        string
	description string
	children    map[string]Child
}

// NewParent groups children under name. Nil children are skipped; on a
// duplicate name the later child wins.
func NewParent(name, description string, children ...Child) Parent {
	byName := make(map[string]Child, len(children))
	for _, c := range children {
		if c == nil {
			slog.Warn("nil child passed to toolkit.NewParent, skipping", "parent", name)
			continue
		}
		if _, exists := byName[c.GetName()]; exists {
			slog.Warn("duplicate child name, overwriting", "parent", name, "child", c.GetName())
		}
		byName[c.GetName()] = c
	}
	return &parent{
		name:        name,
		description: description,
		children:    byName,
	}
}

func (p *parent) GetName() string               { return p.name }
func (p *parent) GetDescription() string        { return p.description }
func (p *parent) GetChildren() map[string]Child { return p.children }

func (p *parent) HandleChildren(ctx context.Context, childRequests []ToolKitChild) ParentResponse {
	resp := ParentResponse{Name: p.name}
	for _, req := range childRequests {
		c, ok := p.children[req.Name]
		if !ok {
			resp.AddResponse(ChildResponse{
				Name:     req.Name,
				Response: NewError(CodeChildNotFound, fmt.Sprintf("child tool '%s' not registered in parent '%s'", req.Name, p.name)),
			})
			continue
		}

		result, err := c.Handle(ctx, req.Args)
		if err != nil {
			tkErr, ok := err.(ToolKitError)
			if !ok {
				tkErr = ToolKitError{Code: CodeHandlerExecution, Message: err.Error()}
			}
			resp.AddResponse(ChildResponse{Name: req.Name, Response: tkErr})
			continue
		}
		resp.AddResponse(ChildResponse{Name: req.Name, Response: result})
	}
	return resp
}
