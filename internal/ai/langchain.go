package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangChainProvider adapts a langchaingo model to Provider.
type LangChainProvider struct {
	llm   llms.Model
	model string
}

func NewLangChainProvider(llm llms.Model, model string) *LangChainProvider {
	return &LangChainProvider{llm: llm, model: model}
}

func NewOpenAIProvider(apiKey, model, baseURL string) (*LangChainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return NewLangChainProvider(llm, model), nil
}

func NewAnthropicProvider(apiKey, model string) (*LangChainProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key required")
	}
	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return NewLangChainProvider(llm, model), nil
}

func (p *LangChainProvider) Model() string { return p.model }

func (p *LangChainProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	resp, err := p.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role string) schema.ChatMessageType {
	switch role {
	case "system":
		return schema.ChatMessageTypeSystem
	case "assistant":
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
