package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/interview-clips/internal/config"
)

type checkResult struct {
	name   string
	target string
	ok     bool
	detail string
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := runChecks(cfg)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				status := "ok"
				if !r.ok {
					status = "FAIL"
					failed++
				}
				rows = append(rows, []string{r.name, r.target, status, r.detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Target", "Status", "Detail"}, rows, nil))

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func runChecks(cfg *config.Config) []checkResult {
	results := []checkResult{
		checkBinary("ffmpeg", cfg.FFmpeg.BinaryPath),
		checkBinary("whisper", cfg.Whisper.BinaryPath),
		checkFile("whisper model", cfg.Whisper.ModelPath),
		checkWritable("storage", cfg.Paths.Storage),
		checkWritable("temp", cfg.Paths.Temp),
	}
	if cfg.Summarizer.Backend == config.BackendCommand {
		results = append(results, checkBinary("summarizer", cfg.Summarizer.Command.BinaryPath))
	}
	if cfg.Watcher.Enabled {
		results = append(results, checkWritable("inbox", cfg.Paths.Inbox))
	}
	return results
}

func checkBinary(name, binary string) checkResult {
	path, err := exec.LookPath(binary)
	if err != nil {
		return checkResult{name: name, target: binary, detail: err.Error()}
	}
	return checkResult{name: name, target: binary, ok: true, detail: path}
}

func checkFile(name, path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{name: name, target: path, detail: err.Error()}
	}
	if info.IsDir() {
		return checkResult{name: name, target: path, detail: "is a directory"}
	}
	return checkResult{name: name, target: path, ok: true, detail: fmt.Sprintf("%d MB", info.Size()>>20)}
}

func checkWritable(name, dir string) checkResult {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return checkResult{name: name, target: dir, detail: err.Error()}
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return checkResult{name: name, target: dir, detail: err.Error()}
	}
	f.Close()
	os.Remove(f.Name())

	abs, _ := filepath.Abs(dir)
	return checkResult{name: name, target: dir, ok: true, detail: abs}
}
