// Package dispatch implements the tool/resource dispatcher (C8): it
// registers the closed tool and resource set against a downstream protocol
// server, validates arguments, and renders every result as the fixed
// envelope shape (spec §4.8, §6.2).
package dispatch

import "context"

// ToolHandler executes one tool call. The handlers the dispatcher registers
// return an already-rendered *ToolEnvelope and a nil error: a handler
// failure is carried inside the envelope as isError:true.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// ResourceHandler executes one resource read, receiving the path variables
// bound from the template.
type ResourceHandler func(ctx context.Context, uri string, bindings map[string]string) (interface{}, error)

// ToolServer is the downstream protocol server's tool-registration contract
// (spec §6.2). Any real transport (stdio, HTTP, websocket framing) implements
// this; wiring one is out of scope here.
type ToolServer interface {
	RegisterTool(name, description string, schema Schema, handler ToolHandler)
}

// ResourceServer is the downstream protocol server's resource-registration
// contract (spec §6.2).
type ResourceServer interface {
	RegisterResource(name, uriTemplate string, handler ResourceHandler)
}

// Schema enumerates a tool's required and optional fields with semantic
// types (spec §6.3). It is not a JSON Schema document; it is the minimal
// description the dispatcher validates arguments against before the
// handler runs.
type Schema struct {
	Required []Field
	Optional []Field
}

// FieldType is a tool argument's semantic type.
type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
	FieldBool
	FieldStringArray
	FieldJSONArray
)

// Field is one schema entry.
type Field struct {
	Name string
	Type FieldType
}

// ToolContent is one element of a tool envelope's content array
// (spec glossary "Tool envelope").
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolEnvelope is the fixed result shape every tool handler renders into.
// RequestID is stamped by the dispatcher for log correlation across a call
// that may touch several components (C1-C7) before rendering.
type ToolEnvelope struct {
	Content   []ToolContent `json:"content"`
	IsError   bool          `json:"isError,omitempty"`
	RequestID string        `json:"requestId"`
}

// ResourceContent is one element of a resource envelope's contents array.
type ResourceContent struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

// ResourceEnvelope is the fixed result shape every resource handler renders
// into.
type ResourceEnvelope struct {
	Contents  []ResourceContent `json:"contents"`
	RequestID string            `json:"requestId"`
}
