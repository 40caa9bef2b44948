package llm

import (
	"context"
	"errors"
)

// ErrRateLimited is wrapped by adapters when the vendor rejects a call because of rate or quota limits.
var ErrRateLimited = errors.New("llm provider rate limited")

type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// ToolCall is a model-issued request to invoke a declared function
type ToolCall struct {
	ID        string                 `bson:"id,omitempty" json:"id,omitempty"` // provider correlation id, only some vendors send one
	Name      string                 `bson:"name" json:"name"`
	Arguments map[string]interface{} `bson:"arguments" json:"arguments"`
}

// ToolResult carries the output of a tool call back to the model
type ToolResult struct {
	Name   string      `bson:"name" json:"name"`
	Result interface{} `bson:"result" json:"result"`
}

// Message is one provider-neutral turn of a conversation.
// Assistant messages carry either Text or ToolCall, tool_result messages carry ToolResult.
type Message struct {
	Role       Role        `bson:"role" json:"role"`
	Text       string      `bson:"text,omitempty" json:"text,omitempty"`
	ToolCall   *ToolCall   `bson:"tool_call,omitempty" json:"toolCall,omitempty"`
	ToolResult *ToolResult `bson:"tool_result,omitempty" json:"toolResult,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

func ToolResultMessage(name string, result interface{}) Message {
	return Message{Role: RoleToolResult, ToolResult: &ToolResult{Name: name, Result: result}}
}

// isEmptyReply reports an assistant turn with neither text nor a tool call.
// Vendors reject such turns on replay, so converters drop them.
func isEmptyReply(msg Message) bool {
	return msg.Role == RoleAssistant && msg.ToolCall == nil && msg.Text == ""
}

// ChatResult is the classified outcome of a single inference call
type ChatResult struct {
	Text     string
	ToolCall *ToolCall
	// RawMessage is appended to the history as-is; it keeps provider bookkeeping such as call ids.
	RawMessage Message
}

// Client defines the interface every provider adapter satisfies
type Client interface {
	Chat(ctx context.Context, messages []Message, systemPrompt string, tools []Tool) (*ChatResult, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name     string
	Provider string
}

// Config holds configuration for LLM clients
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}
