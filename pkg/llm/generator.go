package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// GeneratorConfig represents the configuration for the generation model.
type GeneratorConfig struct {
	Model       string
	BaseURL     string // Ollama server URL
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per model call
}

// OllamaGenerator produces grounded answers from a system instruction, a
// context block and a question. Each call has a timeout and is retried at
// most once before a GenerationError is surfaced.
type OllamaGenerator struct {
	config GeneratorConfig
	llm    llms.Model
}

func NewGeneratorWithConfig(config GeneratorConfig) (*OllamaGenerator, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	llm, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &OllamaGenerator{
		config: config,
		llm:    llm,
	}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context, system, contextBlock, question string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman,
			fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s", contextBlock, question)),
	}

	var lastErr error
	attempts := 0
	for attempts < 2 {
		attempts++
		text, err := g.generateOnce(ctx, content)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break // the caller is gone, a retry cannot help
		}
	}

	return "", &GenerationError{Attempts: attempts, Err: lastErr}
}

func (g *OllamaGenerator) generateOnce(ctx context.Context, content []llms.MessageContent) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	response, err := g.llm.GenerateContent(callCtx, content,
		llms.WithTemperature(g.config.Temperature),
		llms.WithMaxTokens(g.config.MaxTokens),
	)
	if err != nil {
		return "", err
	}
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("empty response from LLM")
	}
	return text, nil
}
