package ai

import (
	"context"
	"fmt"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider produces a single completion for a conversation.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ModelInfo describes one model a provider can serve.
type ModelInfo struct {
	Name            string `json:"name" yaml:"name"`
	Label           string `json:"label" yaml:"label"`
	Provider        string `json:"provider" yaml:"-"`
	MaxTokenAllowed int    `json:"maxTokenAllowed" yaml:"maxTokenAllowed"`
}

// ModelLister fetches the models a provider currently offers.
type ModelLister func(ctx context.Context) ([]ModelInfo, error)

// ModelResolutionError means no usable model could be picked for a provider.
type ModelResolutionError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ModelResolutionError) Error() string {
	msg := fmt.Sprintf("ai: no model available for provider %q", e.Provider)
	if e.Model != "" {
		msg += fmt.Sprintf(" (requested %q)", e.Model)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelResolutionError) Unwrap() error { return e.Err }
