package summarizer

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/config"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/pkg/executor"
)

const defaultPrompt = `You review recorded answers from a job interview. Summarize the candidate's answer below in English.

Requirements:
- Start with one sentence stating what the answer is about
- List the key points in the order they were made
- Note concrete examples, numbers or technologies the candidate mentioned
- Use markdown: bullet points, bold for important keywords
- Do not invent content that is not in the transcript`

// New creates the Summarizer selected by cfg.Backend
func New(cfg config.SummarizerConfig, exec executor.Executor, log logger.Logger) (Summarizer, error) {
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" {
		prompt = defaultPrompt
	}

	switch cfg.Backend {
	case config.BackendCommand, "":
		return &commandSummarizer{
			binary:   cfg.Command.BinaryPath,
			args:     cfg.Command.Args,
			executor: exec,
		}, nil
	case config.BackendGemini:
		if len(cfg.Gemini.APIKeys) == 0 {
			return nil, fmt.Errorf("gemini backend needs at least one API key")
		}
		return &geminiSummarizer{
			apiKeys: cfg.Gemini.APIKeys,
			model:   cfg.Gemini.Model,
			prompt:  prompt,
			logger:  log,
		}, nil
	case config.BackendOpenAI:
		return newOpenAISummarizer(cfg.OpenAI, prompt), nil
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Backend)
	}
}

// buildPrompt appends the transcript to the instruction block
func buildPrompt(prompt, transcript string) string {
	return fmt.Sprintf("%s\n\nTranscript:\n---\n%s\n---", prompt, transcript)
}
