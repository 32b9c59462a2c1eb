package llm

import "encoding/json"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single turn in a conversation. Assistant turns that
// requested a tool invocation carry ToolCalls and an empty Content; tool
// result turns carry the ToolCallID they answer.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// ToolCall is a structured request from the completion service to invoke a
// named tool. Arguments is the raw JSON argument object as returned by the
// service; it may be malformed.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Tool describes a callable tool: its name, a description for the model,
// and a JSON schema for its parameters.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an LLM completion request.
// Either Content is a plain-text answer or ToolCalls is non-empty.
type CompletionResponse struct {
	Content      string
	ToolCalls    []ToolCall
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
