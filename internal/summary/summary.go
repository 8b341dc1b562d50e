// Package summary condenses a day's log entries into a structured
// digest: keywords, key events, and sentiment.
package summary

import (
	"context"
	"fmt"
	"strings"
)

// Provider abstracts a chat-completion model used for summarization.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

const systemPrompt = "Given a series of journal entries covering various aspects of life such as work, food, family, " +
	"and personal reflections, summarize each entry by extracting keywords, identifying sentiment, and highlighting significant " +
	"points. Prioritize information relevant to your day, including major events, key tasks, and other important details. Present " +
	"keywords as a comma-separated list, key events as bullet points (limited to a maximum of 10 bullets), and provide sentiment " +
	"analysis covering a broad range of emotions, categorized into positive, negative, and neutral, while also identifying specific " +
	"emotions when applicable."

// Service turns transcripts into journal summaries via its provider.
type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Summarize condenses one or more log entries. Entries are joined with
// blank lines so the model sees them as distinct journal entries.
func (s *Service) Summarize(ctx context.Context, entries []string) (string, error) {
	joined := strings.TrimSpace(strings.Join(entries, "\n\n"))
	if joined == "" {
		return "", fmt.Errorf("nothing to summarize")
	}

	out, err := s.provider.Complete(ctx, systemPrompt, joined)
	if err != nil {
		return "", fmt.Errorf("summarize with %s: %w", s.provider.Name(), err)
	}
	return out, nil
}
