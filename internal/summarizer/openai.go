package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/config"
)

const (
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultOpenAIMaxRetries = 2
	openAIRequestTimeout    = 120 * time.Second
)

type openAISummarizer struct {
	client openai.Client
	model  string
	prompt string
}

func newOpenAISummarizer(cfg config.OpenAIConfig, prompt string) *openAISummarizer {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(defaultOpenAIMaxRetries),
		option.WithRequestTimeout(openAIRequestTimeout),
	)
	return &openAISummarizer{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
		prompt: prompt,
	}
}

// Summarize runs one chat completion: the instructions as system message, the transcript as user message
func (s *openAISummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.prompt),
			openai.UserMessage(transcript),
		},
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", s.fail(fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", s.fail(fmt.Errorf("no choices in response"))
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", s.fail(fmt.Errorf("empty response"))
	}
	return summary, nil
}

func (s *openAISummarizer) fail(err error) error {
	return &apperr.ExternalProcessError{Stage: "summarize", Command: "openai:" + s.model, Err: err}
}
