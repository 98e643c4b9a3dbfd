package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/interview-clips/internal/httpapi"
	"github.com/nguyentantai21042004/interview-clips/internal/watcher"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the inbox watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Interview clip backend")
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	a.log.Info(ctx, "Storage: %s (max %d MB, %d questions)", cfg.Paths.Storage, cfg.Storage.MaxUploadMB, cfg.Storage.MaxQuestions)
	a.log.Info(ctx, "Summarizer: %s, pipeline concurrency %d", cfg.Summarizer.Backend, cfg.Pipeline.MaxConcurrent)

	api := httpapi.New(httpapi.Deps{
		Auth:     a.auth,
		Sessions: a.sessions,
		Analysis: a.analysis,
		Index:    a.guard,
		Logger:   a.log,
	}, httpapi.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		TempDir:        cfg.Paths.Temp,
	})
	// three stages plus queueing for a pipeline slot
	srv := api.NewHTTPServer(cfg.Server.Addr, 3*cfg.StageTimeout()+time.Minute)

	var w watcher.Watcher
	if cfg.Watcher.Enabled {
		var err error
		if w, err = watcher.New(cfg.Paths.Inbox, a.analysis.HandleInboxFile, a.log); err != nil {
			return err
		}
		defer w.Stop()
	}

	errChan := make(chan error, 2)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	a.log.Info(ctx, "Listening on %s", cfg.Server.Addr)

	watchDone := make(chan struct{})
	if w != nil {
		go func() {
			defer close(watchDone)
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	} else {
		close(watchDone)
	}

	a.log.Info(ctx, "Press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info(context.Background(), "Shutdown signal received")
	case runErr = <-errChan:
		a.log.Error(context.Background(), "Server error: %v", runErr)
	}
	stop()

	a.log.Info(context.Background(), "Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn(context.Background(), "HTTP shutdown: %v", err)
	}
	<-watchDone

	a.log.Info(context.Background(), "Stopped")
	return runErr
}
