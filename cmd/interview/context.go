package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/interview-clips/internal/analysis"
	"github.com/nguyentantai21042004/interview-clips/internal/artifact"
	"github.com/nguyentantai21042004/interview-clips/internal/auth"
	"github.com/nguyentantai21042004/interview-clips/internal/config"
	"github.com/nguyentantai21042004/interview-clips/internal/guard"
	"github.com/nguyentantai21042004/interview-clips/internal/logger"
	"github.com/nguyentantai21042004/interview-clips/internal/metadata"
	"github.com/nguyentantai21042004/interview-clips/internal/processor"
	"github.com/nguyentantai21042004/interview-clips/internal/report"
	"github.com/nguyentantai21042004/interview-clips/internal/session"
	"github.com/nguyentantai21042004/interview-clips/internal/summarizer"
	"github.com/nguyentantai21042004/interview-clips/pkg/executor"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.LoadDotEnv(); err != nil {
			c.configErr = err
			return
		}
		path := strings.TrimSpace(*c.configFlag)
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureApp() (*app, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = buildApp(cfg, logger.New(cfg.Logging.Level))
	})
	return c.app, c.appErr
}

// app holds the wired services shared by all commands
type app struct {
	cfg       *config.Config
	log       logger.Logger
	auth      *auth.Authenticator
	store     metadata.Store
	guard     *guard.Guard
	sessions  session.Manager
	reporter  *report.Writer
	processor processor.Processor
	analysis  analysis.Service
}

func buildApp(cfg *config.Config, log logger.Logger) (*app, error) {
	for _, dir := range []string{cfg.Paths.Storage, cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	loc, err := time.LoadLocation(cfg.Storage.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	authn := auth.New(cfg.Auth.Tokens)
	store := metadata.New(cfg.Paths.Storage, log)
	artifacts := artifact.New(store.Dir, artifact.Options{
		ContentType: cfg.Storage.ContentType,
		Extension:   cfg.Storage.Extension,
		MaxBytes:    cfg.MaxUploadBytes(),
	}, log)
	g := guard.New(artifacts, cfg.Storage.Extension, cfg.Storage.MaxQuestions)
	reporter := report.New(store.Dir, log)

	deps := session.Deps{
		Auth:      authn,
		Store:     store,
		Artifacts: artifacts,
		Guard:     g,
		Logger:    log,
	}
	if cfg.Report.OnFinish {
		deps.Reporter = reporter
	}
	sessions := session.New(deps, session.Options{
		TimeZone:    cfg.Storage.TimeZone,
		Location:    loc,
		OnCollision: cfg.Storage.OnCollision,
	})

	exec := executor.New(cfg.StageTimeout())
	sum, err := summarizer.New(cfg.Summarizer, exec, log)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}
	proc := processor.New(processor.Stages{
		Extractor:   processor.NewFFmpegExtractor(cfg.FFmpeg.BinaryPath, exec),
		Transcriber: processor.NewWhisperTranscriber(cfg.Whisper, exec),
		Summarizer:  sum,
	}, processor.Options{
		TempDir:       cfg.Paths.Temp,
		MaxConcurrent: cfg.Pipeline.MaxConcurrent,
		StageTimeout:  cfg.StageTimeout(),
	}, log)
	svc := analysis.New(proc, sessions, analysis.Options{
		TempDir:      cfg.Paths.Temp,
		MaxQuestions: cfg.Storage.MaxQuestions,
	}, log)

	return &app{
		cfg:       cfg,
		log:       log,
		auth:      authn,
		store:     store,
		guard:     g,
		sessions:  sessions,
		reporter:  reporter,
		processor: proc,
		analysis:  svc,
	}, nil
}
