package llm

import (
	"fmt"
	"strings"
)

const (
	Gemini = "gemini"
	Groq   = "groq"
	Ollama = "ollama"
)

// DefaultModels holds the model used when none is configured.
var DefaultModels = map[string]string{
	Gemini: "gemini-2.5-flash",
	Groq:   "llama-3.1-8b-instant",
	Ollama: "llama3.1:8b",
}

// NewClient builds the single adapter selected by config.Provider.
func NewClient(config Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" {
		provider = Gemini
	}
	config.Provider = provider

	if config.Model == "" {
		config.Model = DefaultModels[provider]
	}

	var client Client
	var err error

	switch provider {
	case Gemini:
		client, err = NewGeminiClient(config)
	case Groq:
		client, err = NewGroqClient(config)
	case Ollama:
		client, err = NewOllamaClient(config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}
