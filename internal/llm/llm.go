// Package llm wraps the text-generation providers behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shaun/pagesmith/internal/config"
	"github.com/shaun/pagesmith/internal/prompt"
)

var (
	ErrEmptyResponse = errors.New("empty response")
	ErrMissingParts  = errors.New("response did not split into html and readme")
)

// Generator turns a prompt into raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New returns the Generator for cfg.LLMProvider.
func New(ctx context.Context, cfg config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.LLMAPIKey, cfg.LLMModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*[ \t]*\r?\n(.*?)\r?\n?```$")

// StripFences removes a markdown code fence wrapping the whole text.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := reFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// SplitPair splits a modify response into its HTML and README sections.
func SplitPair(text string) (html, readme string, err error) {
	parts := strings.Split(text, prompt.Delimiter)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: got %d parts", ErrMissingParts, len(parts))
	}
	html, readme = StripFences(parts[0]), StripFences(parts[1])
	if html == "" || readme == "" {
		return "", "", fmt.Errorf("%w: empty section", ErrMissingParts)
	}
	return html, readme, nil
}
