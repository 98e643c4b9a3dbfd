package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
	"github.com/nguyentantai21042004/interview-clips/pkg/executor"
)

const (
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
)

// Analyze runs extract -> transcribe -> summarize for one clip. The first failing
// stage ends the run. The clip, the work dir and everything in it are removed on return.
func (p *implProcessor) Analyze(ctx context.Context, clipPath string) (Result, error) {
	cleanup := &cleanupList{remove: p.remove}
	cleanup.add(clipPath)
	defer p.runCleanup(ctx, cleanup)

	release, err := p.sem.acquire(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("wait for pipeline slot: %w", err)
	}
	defer release()

	startTime := time.Now()
	p.logger.Info(ctx, "Analyzing clip: %s (%d/%d slots in use)", clipPath, p.sem.inUse(), p.sem.capacity())

	if err := os.MkdirAll(p.opts.TempDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(p.opts.TempDir, "run-*")
	if err != nil {
		return Result{}, fmt.Errorf("create work dir: %w", err)
	}
	cleanup.add(workDir)

	// Step 1: Extract audio
	var wavPath string
	err = p.stage(ctx, StageExtract, func(ctx context.Context) error {
		var err error
		wavPath, err = p.stages.Extractor.Extract(ctx, clipPath, workDir)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	cleanup.add(wavPath)

	// Step 2: Transcribe
	var transcript string
	cleanup.add(TranscriptPath(wavPath))
	err = p.stage(ctx, StageTranscribe, func(ctx context.Context) error {
		var err error
		transcript, err = p.stages.Transcriber.Transcribe(ctx, wavPath)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	// Step 3: Summarize
	var summary string
	err = p.stage(ctx, StageSummarize, func(ctx context.Context) error {
		var err error
		summary, err = p.stages.Summarizer.Summarize(ctx, transcript)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	p.logger.Info(ctx, "Clip analyzed in %s (%d chars transcript)", time.Since(startTime), len(transcript))
	return Result{Transcript: transcript, Summary: summary}, nil
}

// stage runs fn under the stage deadline and normalises its error to *apperr.ExternalProcessError
func (p *implProcessor) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := ctx
	if p.opts.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, p.opts.StageTimeout)
		defer cancel()
	}

	err := fn(stageCtx)
	if err == nil {
		return nil
	}

	timedOut := errors.Is(err, executor.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(stageCtx.Err(), context.DeadlineExceeded)

	var ext *apperr.ExternalProcessError
	if errors.As(err, &ext) {
		if ext.Stage == "" {
			ext.Stage = name
		}
		ext.Timeout = ext.Timeout || timedOut
	} else {
		ext = &apperr.ExternalProcessError{Stage: name, Timeout: timedOut, Err: err}
	}

	p.logger.Error(ctx, "Stage %s failed: %v", name, ext)
	return ext
}
