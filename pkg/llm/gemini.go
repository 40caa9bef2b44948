package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
	logger      *logrus.Entry
}

func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	// Create the Gemini SDK client using the provided API key.
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiClient{
		client:      client,
		model:       config.Model,
		temperature: config.Temperature,
		logger:      logrus.WithField("provider", Gemini),
	}, nil
}

func (c *GeminiClient) Chat(ctx context.Context, messages []Message, systemPrompt string, tools []Tool) (*ChatResult, error) {
	// Check if the context is cancelled
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	contents, err := messagesToGeminiContents(messages)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: no messages to send")
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(c.temperature))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	if len(tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, tool := range tools {
			declarations = append(declarations, toolToGeminiDeclaration(tool))
		}
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	// The SDK sends the last turn explicitly, everything before it is history
	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		c.logger.WithError(err).Error("Gemini API error")
		if isGeminiRateLimit(err) {
			return nil, fmt.Errorf("gemini API error: %w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	return c.classify(resp), nil
}

func (c *GeminiClient) classify(resp *genai.GenerateContentResponse) *ChatResult {
	var text strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.FunctionCall:
				args := p.Args
				if args == nil {
					args = map[string]interface{}{}
				}
				toolCall := &ToolCall{Name: p.Name, Arguments: args}
				c.logger.WithFields(logrus.Fields{"tool": toolCall.Name, "arguments": toolCall.Arguments}).Info("Tool call")
				return &ChatResult{
					ToolCall:   toolCall,
					RawMessage: Message{Role: RoleAssistant, ToolCall: toolCall},
				}
			case genai.Text:
				text.WriteString(string(p))
			}
		}
	}

	// Gemini omits the text part entirely when the model has nothing to say
	reply := text.String()
	return &ChatResult{
		Text:       reply,
		RawMessage: AssistantText(reply),
	}
}

// GetModelInfo returns information about the Gemini model.
func (c *GeminiClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:     c.model,
		Provider: Gemini,
	}
}

func messagesToGeminiContents(messages []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg.Role == RoleAssistant && msg.ToolCall != nil:
			args, err := toJSONMap(msg.ToolCall.Arguments)
			if err != nil {
				return nil, fmt.Errorf("gemini: tool call %s: %w", msg.ToolCall.Name, err)
			}
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.FunctionCall{Name: msg.ToolCall.Name, Args: args}},
			})
		case isEmptyReply(msg):
			continue
		case msg.Role == RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(msg.Text)},
			})
		case msg.Role == RoleToolResult && msg.ToolResult != nil:
			response, err := toJSONMap(msg.ToolResult.Result)
			if err != nil {
				return nil, fmt.Errorf("gemini: tool result %s: %w", msg.ToolResult.Name, err)
			}
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.FunctionResponse{Name: msg.ToolResult.Name, Response: response}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Text)},
			})
		}
	}
	return contents, nil
}

func toolToGeminiDeclaration(tool Tool) *genai.FunctionDeclaration {
	properties := make(map[string]*genai.Schema, len(tool.Parameters.Properties))
	for name, prop := range tool.Parameters.Properties {
		if prop == nil {
			continue
		}
		properties[name] = toGeminiSchema(prop)
	}
	return &genai.FunctionDeclaration{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
		},
	}
}

var geminiTypes = map[PropertyType]genai.Type{
	TypeString:  genai.TypeString,
	TypeNumber:  genai.TypeNumber,
	TypeBoolean: genai.TypeBoolean,
	TypeObject:  genai.TypeObject,
	TypeArray:   genai.TypeArray,
}

func toGeminiSchema(prop *PropertySchema) *genai.Schema {
	schema := &genai.Schema{
		Type:        geminiTypes[prop.Type],
		Description: prop.Description,
	}
	if len(prop.Enum) > 0 {
		schema.Enum = prop.Enum
	}
	if prop.Items != nil {
		schema.Items = toGeminiSchema(prop.Items)
	}
	if len(prop.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(prop.Properties))
		for name, nested := range prop.Properties {
			if nested == nil {
				continue
			}
			schema.Properties[name] = toGeminiSchema(nested)
		}
	}
	return schema
}

func isGeminiRateLimit(err error) bool {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusTooManyRequests || apiErr.GRPCStatus().Code() == codes.ResourceExhausted {
			return true
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}
	return false
}
