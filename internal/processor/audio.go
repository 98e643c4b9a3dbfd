package processor

import (
	"context"
	"path/filepath"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/pkg/executor"
)

const wavName = "audio.wav"

type ffmpegExtractor struct {
	binary   string
	executor executor.Executor
}

// NewFFmpegExtractor creates an AudioExtractor backed by the ffmpeg binary
func NewFFmpegExtractor(binary string, exec executor.Executor) AudioExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ffmpegExtractor{binary: binary, executor: exec}
}

// Extract writes <workDir>/audio.wav: no video, mono, 16kHz, PCM 16-bit little-endian
func (e *ffmpegExtractor) Extract(ctx context.Context, clipPath, workDir string) (string, error) {
	wavPath := filepath.Join(workDir, wavName)

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", clipPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		wavPath,
	}

	if _, err := e.executor.Execute(ctx, e.binary, args...); err != nil {
		return "", &apperr.ExternalProcessError{Stage: StageExtract, Command: e.binary, Err: err}
	}
	return wavPath, nil
}
