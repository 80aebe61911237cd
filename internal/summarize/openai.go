package summarize

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"
)

// OpenAISummarizer generates the narrative through the OpenAI Responses API.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

// NewOpenAISummarizer creates an OpenAI-backed summarizer.
func NewOpenAISummarizer(apiKey, modelName, baseURL string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	opts := []ooption.RequestOption{ooption.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, ooption.WithBaseURL(baseURL))
	}
	return &OpenAISummarizer{client: openai.NewClient(opts...), model: modelName}, nil
}

// Summarize implements Summarizer.
func (s *OpenAISummarizer) Summarize(ctx context.Context, courseDescriptions []string, query string) (string, error) {
	params := oresponses.ResponseNewParams{
		Model:        oshared.ResponsesModel(s.model),
		Instructions: openai.String(summaryPrompt),
		Input: oresponses.ResponseNewParamsInputUnion{
			OfString: openai.String(buildSummaryInput(courseDescriptions, query)),
		},
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(resp.OutputText()), nil
}
