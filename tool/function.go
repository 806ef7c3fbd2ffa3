package tool

import (
	"fmt"
	"time"

	"github.com/parley-ai/parley/internal/util"
)

// FunctionTool is a generic adapter exposing a plain Go function as a tool.
//
// Responsibilities:
//   - Holds a JSON-Schema-like parameter specification
//   - Validates supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *ToolError with
//     consistent codes (VALIDATION_ERROR for schema mismatch,
//     EXECUTION_ERROR for underlying failures, custom codes preserved when
//     the function returns *ToolError directly)
//
// A FunctionTool has no internal mutable state after construction and is
// safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(inv *Invocation, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// function.
//
// Example:
//
//	searchTool := NewFunctionTool(
//	  "search_documents",
//	  "Search the local document collections",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "query": map[string]any{"type": "string"},
//	      "limit": map[string]any{"type": "integer"},
//	    },
//	    "required": []string{"query"},
//	  },
//	  func(inv *Invocation, args map[string]any) (any, error) {
//	    return repo.Search(inv.Context, args["query"].(string)), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(inv *Invocation, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from an argument
// struct using reflection, equivalent to util.CreateSchema(structType).
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(inv *Invocation, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used in function call declarations.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the wrapped
// function. Arguments not declared by the schema (except user_id, which the
// loop may inject) fail validation so the loop can retry without them.
func (t *FunctionTool) Call(inv *Invocation, args map[string]any) (any, error) {
	logger := inv.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "call_id", inv.CallID)

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	// Reject injected arguments the schema does not declare; the loop
	// retries without them.
	for k := range args {
		if k == "user_id" && !util.HasProperty(t.parameters, k) {
			logger.Debug("tool.call.unexpected_arg", "tool", t.name, "arg", k)

			return nil, &ToolError{
				Tool:    t.name,
				Message: fmt.Sprintf("unexpected argument %q", k),
				Code:    CodeValidation,
			}
		}
	}

	result, err := t.fn(inv, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
