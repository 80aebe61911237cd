// Package summarize produces the narrative explanation attached to a
// completed pathway. Summarization is best-effort: the engine degrades to
// an empty summary when a backend fails.
package summarize

import (
	"context"
	"fmt"
)

// Summarizer writes a short narrative of how the resolved courses fit the
// student's query.
type Summarizer interface {
	Summarize(ctx context.Context, courseDescriptions []string, query string) (string, error)
}

// Options selects and configures a summarizer backend.
type Options struct {
	// Provider: "none", "genai" or "openai"
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds a summarizer from options. The zero Provider disables
// summarization.
func New(opts Options) (Summarizer, error) {
	switch opts.Provider {
	case "", "none":
		return Noop{}, nil
	case "genai":
		return NewGeminiSummarizer(opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAISummarizer(opts.APIKey, opts.Model, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s (use 'none', 'genai' or 'openai')", opts.Provider)
	}
}

// Noop returns an empty summary. Used when no LLM backend is configured.
type Noop struct{}

// Summarize implements Summarizer.
func (Noop) Summarize(context.Context, []string, string) (string, error) {
	return "", nil
}

// summaryPrompt frames the narrative request for the generative backends.
const summaryPrompt = `You are an academic advisor. Given a student's goal and
the list of courses chosen for their degree plan, write a short narrative
(2-4 sentences) explaining how the plan fits the goal. Mention notable
courses by code. Plain text only.`

func buildSummaryInput(courseDescriptions []string, query string) string {
	input := "Student goal: " + query + "\n\nChosen courses:\n"
	for _, desc := range courseDescriptions {
		input += "- " + desc + "\n"
	}
	return input
}
