package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/internal/config"
	"github.com/nguyentantai21042004/interview-clips/pkg/executor"
)

type whisperTranscriber struct {
	cfg      config.WhisperConfig
	executor executor.Executor
}

// NewWhisperTranscriber creates a Transcriber backed by the whisper.cpp CLI
func NewWhisperTranscriber(cfg config.WhisperConfig, exec executor.Executor) Transcriber {
	return &whisperTranscriber{cfg: cfg, executor: exec}
}

// TranscriptPath is where whisper.cpp writes the text output for wavPath
func TranscriptPath(wavPath string) string {
	return strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".txt"
}

// Transcribe runs whisper with -otxt and returns the trimmed content of the .txt it writes
func (t *whisperTranscriber) Transcribe(ctx context.Context, wavPath string) (string, error) {
	wavPath, err := filepath.Abs(wavPath)
	if err != nil {
		return "", &apperr.ExternalProcessError{Stage: StageTranscribe, Command: t.cfg.BinaryPath, Err: err}
	}
	modelPath, err := filepath.Abs(t.cfg.ModelPath)
	if err != nil {
		return "", &apperr.ExternalProcessError{Stage: StageTranscribe, Command: t.cfg.BinaryPath, Err: err}
	}
	binary := t.cfg.BinaryPath
	// a relative binary with a separator would resolve against the work dir
	if strings.ContainsRune(binary, filepath.Separator) && !filepath.IsAbs(binary) {
		if binary, err = filepath.Abs(binary); err != nil {
			return "", &apperr.ExternalProcessError{Stage: StageTranscribe, Command: t.cfg.BinaryPath, Err: err}
		}
	}
	outputPrefix := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))

	// -otxt: plain text output at <prefix>.txt
	// -l: force language, avoids detection drift on short clips
	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"-otxt",
		"-l", t.cfg.Language,
		"-t", strconv.Itoa(t.cfg.Threads),
		"--output-file", outputPrefix,
	}
	if t.cfg.Prompt != "" {
		args = append(args, "--prompt", t.cfg.Prompt)
	}

	// run inside the work dir so stray side files are removed with it
	if _, err := t.executor.ExecuteInDir(ctx, filepath.Dir(wavPath), binary, args...); err != nil {
		return "", &apperr.ExternalProcessError{Stage: StageTranscribe, Command: t.cfg.BinaryPath, Err: err}
	}

	data, err := os.ReadFile(TranscriptPath(wavPath))
	if err != nil {
		return "", &apperr.ExternalProcessError{
			Stage:   StageTranscribe,
			Command: t.cfg.BinaryPath,
			Err:     fmt.Errorf("read transcript: %w", err),
		}
	}
	return strings.TrimSpace(string(data)), nil
}
