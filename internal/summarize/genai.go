package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiSummarizer generates the narrative with the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer creates a Gemini-backed summarizer.
func NewGeminiSummarizer(apiKey, modelName string) (*GeminiSummarizer, error) {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiSummarizer{client: client, model: modelName}, nil
}

// Summarize implements Summarizer.
func (s *GeminiSummarizer) Summarize(ctx context.Context, courseDescriptions []string, query string) (string, error) {
	full := summaryPrompt + "\n\n" + buildSummaryInput(courseDescriptions, query)

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("summarization returned no content")
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}
