package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
)

type geminiSummarizer struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	prompt     string
	logger     logger.Logger
}

// Summarize sends the transcript to Gemini. Rotates API keys on 429 / quota errors.
func (s *geminiSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt := buildPrompt(s.prompt, transcript)

	var lastErr error
	for range s.apiKeys {
		idx, key := s.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			if isQuotaError(err) {
				s.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", s.fail(fmt.Errorf("generate content: %w", err))
		}

		if text := strings.TrimSpace(responseText(result)); text != "" {
			return text, nil
		}
		return "", s.fail(fmt.Errorf("empty response from Gemini"))
	}

	return "", s.fail(fmt.Errorf("all API keys exhausted: %w", lastErr))
}

func (s *geminiSummarizer) fail(err error) error {
	return &apperr.ExternalProcessError{Stage: "summarize", Command: "gemini:" + s.model, Err: err}
}

func (s *geminiSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey moves past key idx unless a concurrent call already did
func (s *geminiSummarizer) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
