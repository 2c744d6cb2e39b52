package ai

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("text generator not configured")

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	// JSON asks the provider for a JSON document instead of prose.
	JSON bool
}

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Disabled is used when no API key is configured. Every call fails, which
// callers turn into their fallback values.
type Disabled struct{}

func (Disabled) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return "", ErrNotConfigured
}
