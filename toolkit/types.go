package toolkit

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// --- Batched request/response structures ---

// ToolKit is a batched invocation: several children of several parents
// executed in one call. It is the input format of the toolkit meta-tool.
type ToolKit struct {
	Name           string          `json:"name" jsonschema:"required,description=The name of the toolkit."`
	ToolKitParents []ToolKitParent `json:"parents" jsonschema:"required,description=The parent toolsets to execute within the toolkit."`
}

// ToolKitParent selects one parent and the children to run under it.
type ToolKitParent struct {
	Name          string         `json:"name" jsonschema:"required,description=The name of the parent toolset to execute."`
	ToolKitChilds []ToolKitChild `json:"childs" jsonschema:"required,description=The child tools to execute within this parent."`
}

// ToolKitChild names one child tool. Args stay raw until the child decodes
// them.
type ToolKitChild struct {
	Name string          `json:"name" jsonschema:"required,description=The name of the child tool to execute."`
	Args json.RawMessage `json:"args" jsonschema:"required,description=The arguments for the child tool as a JSON object."`
}

// ToolKitResponse mirrors the shape of a ToolKit request.
type ToolKitResponse struct {
	Name      string           `json:"name"`
	Responses []ParentResponse `json:"responses,omitempty"`
}

// ParentResponse holds child responses in request order.
type ParentResponse struct {
	Name            string          `json:"name"`
	ChildsResponses []ChildResponse `json:"childsResponses,omitempty"`
}

// ChildResponse holds either the child's result or a ToolKitError.
type ChildResponse struct {
	Name     string      `json:"name"`
	Response interface{} `json:"response,omitempty"`
}

// ToolInfo is the flat description of one child, as published by
// tools/list.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// --- Error Handling ---

// Error codes carried by ToolKitError.
const (
	CodeInvalidArguments = "invalid_arguments"
	CodeHandlerExecution = "handler_execution_error"
	CodeChildNotFound    = "child_not_found"
	CodeParentNotFound   = "parent_not_found"
	CodeInvalidInputJSON = "invalid_input_json"
	CodeNoParents        = "no_toolkit_parents"
)

// ToolKitError is a framework-level failure with a machine-readable code.
type ToolKitError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (e ToolKitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError returns a ToolKitError as an error value.
func NewError(code, message string) error {
	return ToolKitError{
		Code:    code,
		Message: message,
	}
}

// --- Response Helper Methods ---

// AddResponse appends pr to the toolkit response.
func (tr *ToolKitResponse) AddResponse(pr ParentResponse) {
	tr.Responses = append(tr.Responses, pr)
}

// AddResponse appends cr to the parent response.
func (pr *ParentResponse) AddResponse(cr ChildResponse) {
	pr.ChildsResponses = append(pr.ChildsResponses, cr)
}

// --- Schema Generation ---

// ReflectSchema builds the JSON schema of T from its json and jsonschema
// struct tags. Properties keep the struct field order, which the law tools
// rely on when they print their parameter lists.
//
//	type LookupArgs struct {
//	    LawID string `json:"law_id" jsonschema:"required,description=法令ID"`
//	    Limit *int   `json:"limit,omitempty" jsonschema:"default=10,minimum=1"`
//	}
//	schema := ReflectSchema[LookupArgs]()
func ReflectSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true, // unknown keys are reported by the tools, not the schema
		DoNotReference:             true, // keep every schema self-contained
		Anonymous:                  true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	return reflector.Reflect(&v)
}

// GenerateSchema is ReflectSchema typed as interface{}, the form expected by
// Child.GetInputSchema.
func GenerateSchema[T any]() interface{} {
	return ReflectSchema[T]()
}

// GetToolKitSchemaForAnthropic returns the input schema of the batched
// ToolKit request, registered as a single tool with the Anthropic API.
func GetToolKitSchemaForAnthropic() interface{} {
	return GenerateSchema[ToolKit]()
}
