package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsumura-ka/egov-mcp/toolkit"
)

type lookupArgs struct {
	LawID string `json:"law_id" jsonschema:"required,description=法令ID"`
	Limit *int   `json:"limit,omitempty" jsonschema:"default=10,minimum=1"`
}

type lookupResult struct {
	Title string `json:"title"`
}

func lookupChild(t *testing.T, name, title string, fail bool) toolkit.Child {
	t.Helper()
	return toolkit.NewChild(name, "looks up "+name, func(ctx context.Context, args lookupArgs) (interface{}, error) {
		if fail {
			return nil, fmt.Errorf("upstream refused %s", args.LawID)
		}
		return lookupResult{Title: title + ":" + args.LawID}, nil
	})
}

func TestNewChildMetadata(t *testing.T) {
	child := lookupChild(t, "get_law", "民法", false)

	assert.Equal(t, "get_law", child.GetName())
	assert.Equal(t, "looks up get_law", child.GetDescription())

	raw, err := json.Marshal(child.GetInputSchema())
	require.NoError(t, err)
	var schema struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"law_id"}, schema.Required)
	assert.Contains(t, string(schema.Properties["limit"]), `"default":10`)
	assert.NotContains(t, string(raw), `"$id"`)
	assert.NotContains(t, string(raw), `"additionalProperties"`)
}

func TestNewChildHandle(t *testing.T) {
	tests := []struct {
		name     string
		fail     bool
		args     string
		want     interface{}
		wantCode string
	}{
		{name: "success", args: `{"law_id":"129AC0000000089"}`, want: lookupResult{Title: "民法:129AC0000000089"}},
		{name: "empty args decode to zero value", args: ``, want: lookupResult{Title: "民法:"}},
		{name: "null args decode to zero value", args: `null`, want: lookupResult{Title: "民法:"}},
		{name: "malformed json", args: `{"law_id`, wantCode: toolkit.CodeInvalidArguments},
		{name: "wrong type", args: `{"law_id":1}`, wantCode: toolkit.CodeInvalidArguments},
		{name: "handler failure", fail: true, args: `{"law_id":"x"}`, wantCode: toolkit.CodeHandlerExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := lookupChild(t, "get_law", "民法", tt.fail)
			got, err := child.Handle(context.Background(), json.RawMessage(tt.args))
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var tkErr toolkit.ToolKitError
			require.True(t, errors.As(err, &tkErr), "got %v", err)
			assert.Equal(t, tt.wantCode, tkErr.Code)
			assert.Contains(t, tkErr.Message, "get_law")
		})
	}
}

func TestNewChildPassesToolKitErrorThrough(t *testing.T) {
	child := toolkit.NewChild("strict", "rejects everything", func(ctx context.Context, args lookupArgs) (interface{}, error) {
		return nil, toolkit.NewError(toolkit.CodeInvalidArguments, "unknown kind")
	})

	_, err := child.Handle(context.Background(), json.RawMessage(`{}`))
	assert.Equal(t, toolkit.ToolKitError{Code: toolkit.CodeInvalidArguments, Message: "unknown kind"}, err)
}

func TestNewParentChildren(t *testing.T) {
	parent := toolkit.NewParent("egov", "e-Gov tools",
		lookupChild(t, "get_laws", "a", false),
		nil,
		lookupChild(t, "get_law_data", "b", false),
		lookupChild(t, "get_laws", "c", false),
	)

	assert.Equal(t, "egov", parent.GetName())
	assert.Equal(t, "e-Gov tools", parent.GetDescription())

	children := parent.GetChildren()
	require.Len(t, children, 2)

	// the later duplicate wins
	got, err := children["get_laws"].Handle(context.Background(), json.RawMessage(`{"law_id":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, lookupResult{Title: "c:1"}, got)
}

func TestHandleChildren(t *testing.T) {
	parent := toolkit.NewParent("egov", "e-Gov tools",
		lookupChild(t, "get_laws", "laws", false),
		lookupChild(t, "get_law_data", "data", false),
		lookupChild(t, "broken", "", true),
	)

	resp := parent.HandleChildren(context.Background(), []toolkit.ToolKitChild{
		{Name: "get_law_data", Args: json.RawMessage(`{"law_id":"2"}`)},
		{Name: "get_laws", Args: json.RawMessage(`{"law_id":"1"}`)},
		{Name: "missing", Args: json.RawMessage(`{}`)},
		{Name: "broken", Args: json.RawMessage(`{"law_id":"3"}`)},
	})

	assert.Equal(t, "egov", resp.Name)
	require.Len(t, resp.ChildsResponses, 4)

	// request order is kept
	assert.Equal(t, "get_law_data", resp.ChildsResponses[0].Name)
	assert.Equal(t, lookupResult{Title: "data:2"}, resp.ChildsResponses[0].Response)
	assert.Equal(t, lookupResult{Title: "laws:1"}, resp.ChildsResponses[1].Response)

	notFound, ok := resp.ChildsResponses[2].Response.(toolkit.ToolKitError)
	require.True(t, ok)
	assert.Equal(t, toolkit.CodeChildNotFound, notFound.Code)

	failed, ok := resp.ChildsResponses[3].Response.(toolkit.ToolKitError)
	require.True(t, ok)
	assert.Equal(t, toolkit.CodeHandlerExecution, failed.Code)
	assert.Contains(t, failed.Message, "upstream refused 3")
}
