package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/sirupsen/logrus"
)

const DefaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient calls a local Ollama daemon through the official api client.
type OllamaClient struct {
	client      *api.Client
	model       string
	temperature float64
	logger      *logrus.Entry
}

func NewOllamaClient(config Config) (*OllamaClient, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL %q: %w", baseURL, err)
	}
	return &OllamaClient{
		// local models are slow; the caller's context bounds the call
		client:      api.NewClient(base, &http.Client{Timeout: 5 * time.Minute}),
		model:       config.Model,
		temperature: config.Temperature,
		logger:      logrus.WithField("provider", Ollama),
	}, nil
}

func (c *OllamaClient) Chat(ctx context.Context, messages []Message, systemPrompt string, tools []Tool) (*ChatResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	converted, err := messagesToOllama(messages)
	if err != nil {
		return nil, err
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: append([]api.Message{{Role: "system", Content: systemPrompt}}, converted...),
		Stream:   &stream,
		Options:  map[string]interface{}{"temperature": c.temperature},
	}
	for _, tool := range tools {
		ollamaTool, err := toolToOllama(tool)
		if err != nil {
			return nil, err
		}
		req.Tools = append(req.Tools, ollamaTool)
	}

	var reply *api.Message
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		message := resp.Message
		reply = &message
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Error("Ollama API error")
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("ollama API error: %w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("ollama API error: %w", err)
	}
	if reply == nil {
		return nil, fmt.Errorf("no response from Ollama")
	}

	if len(reply.ToolCalls) > 0 {
		call := reply.ToolCalls[0]
		args, err := argumentsFromOllama(call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("ollama: %w", err)
		}
		toolCall := &ToolCall{Name: call.Function.Name, Arguments: args}
		c.logger.WithFields(logrus.Fields{"tool": toolCall.Name, "arguments": toolCall.Arguments}).Info("Tool call")
		return &ChatResult{
			ToolCall:   toolCall,
			RawMessage: Message{Role: RoleAssistant, ToolCall: toolCall},
		}, nil
	}

	return &ChatResult{
		Text:       reply.Content,
		RawMessage: AssistantText(reply.Content),
	}, nil
}

func (c *OllamaClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:     c.model,
		Provider: Ollama,
	}
}

func argumentsFromOllama(args api.ToolCallFunctionArguments) (map[string]interface{}, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool arguments: %w", err)
	}
	if string(raw) == "null" {
		return map[string]interface{}{}, nil
	}
	return decodeArguments(string(raw))
}

func messagesToOllama(messages []Message) ([]api.Message, error) {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == RoleAssistant && msg.ToolCall != nil:
			args, err := toJSONMap(msg.ToolCall.Arguments)
			if err != nil {
				return nil, fmt.Errorf("ollama: encoding arguments of %s: %w", msg.ToolCall.Name, err)
			}
			result = append(result, api.Message{
				Role: "assistant",
				ToolCalls: []api.ToolCall{{
					Function: api.ToolCallFunction{Name: msg.ToolCall.Name, Arguments: api.ToolCallFunctionArguments(args)},
				}},
			})
		case isEmptyReply(msg):
			continue
		case msg.Role == RoleAssistant:
			result = append(result, api.Message{Role: "assistant", Content: msg.Text})
		case msg.Role == RoleToolResult && msg.ToolResult != nil:
			content, err := json.Marshal(msg.ToolResult.Result)
			if err != nil {
				return nil, fmt.Errorf("ollama: encoding result of %s: %w", msg.ToolResult.Name, err)
			}
			result = append(result, api.Message{Role: "tool", Content: string(content)})
		default:
			result = append(result, api.Message{Role: "user", Content: msg.Text})
		}
	}
	return result, nil
}

// toolToOllama goes through JSON so the nested parameter schema lands in api.Tool's own shape.
func toolToOllama(tool Tool) (api.Tool, error) {
	raw, err := json.Marshal(map[string]interface{}{
		"type": "function",
		"function": map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"parameters": map[string]interface{}{
				"type":       string(TypeObject),
				"properties": propertiesSchema(tool.Parameters.Properties),
				"required":   []string{},
			},
		},
	})
	if err != nil {
		return api.Tool{}, fmt.Errorf("ollama: encoding tool %s: %w", tool.Name, err)
	}
	var out api.Tool
	if err := json.Unmarshal(raw, &out); err != nil {
		return api.Tool{}, fmt.Errorf("ollama: decoding tool %s: %w", tool.Name, err)
	}
	return out, nil
}
