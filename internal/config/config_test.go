package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		Whisper: WhisperConfig{
			ModelPath:  "models/test.bin",
			BinaryPath: "./whisper",
			Language:   "en",
		},
		Auth: AuthConfig{Tokens: []string{"demo123"}},
		Summarizer: SummarizerConfig{
			Command: CommandConfig{BinaryPath: "llm"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing model path", func(c *Config) { c.Whisper.ModelPath = "" }, true},
		{"missing language", func(c *Config) { c.Whisper.Language = "" }, true},
		{"blank tokens only", func(c *Config) { c.Auth.Tokens = []string{" ", ""} }, true},
		{"bad time zone", func(c *Config) { c.Storage.TimeZone = "Mars/Olympus" }, true},
		{"bad collision policy", func(c *Config) { c.Storage.OnCollision = "merge" }, true},
		{"command backend without binary", func(c *Config) { c.Summarizer.Command.BinaryPath = "" }, true},
		{"gemini without keys", func(c *Config) { c.Summarizer.Backend = BackendGemini }, true},
		{"gemini with keys", func(c *Config) {
			c.Summarizer.Backend = BackendGemini
			c.Summarizer.Gemini.APIKeys = []string{"k1"}
		}, false},
		{"openai without key", func(c *Config) { c.Summarizer.Backend = BackendOpenAI }, true},
		{"unknown backend", func(c *Config) { c.Summarizer.Backend = "carrier-pigeon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Tokens = []string{" demo123 ", "", "abc456"}
	cfg.Storage.Extension = ".webm"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Storage.MaxQuestions != 5 {
		t.Errorf("MaxQuestions = %d, want 5", cfg.Storage.MaxQuestions)
	}
	if cfg.MaxUploadBytes() != 50*1024*1024 {
		t.Errorf("MaxUploadBytes() = %d", cfg.MaxUploadBytes())
	}
	if cfg.Storage.ContentType != "video/webm" || cfg.Storage.Extension != "webm" {
		t.Errorf("media = %q/%q", cfg.Storage.ContentType, cfg.Storage.Extension)
	}
	if cfg.Storage.OnCollision != CollisionSuffix {
		t.Errorf("OnCollision = %q", cfg.Storage.OnCollision)
	}
	if cfg.StageTimeout().Minutes() != 5 {
		t.Errorf("StageTimeout() = %s", cfg.StageTimeout())
	}
	if len(cfg.Auth.Tokens) != 2 || cfg.Auth.Tokens[0] != "demo123" {
		t.Errorf("Tokens = %q", cfg.Auth.Tokens)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleYAML = `
paths:
  storage: "data/storage"

storage:
  time_zone: "UTC"
  max_questions: 3

auth:
  tokens: ["demo123", "abc456"]

whisper:
  model_path: "models/test.bin"
  binary_path: "./whisper"
  language: "en"

summarizer:
  backend: "command"
  command:
    binary_path: "llm"
    args: ["-m", "local"]

logging:
  level: "debug"
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.ModelPath != "models/test.bin" {
		t.Errorf("ModelPath = %v, want %v", cfg.Whisper.ModelPath, "models/test.bin")
	}
	if cfg.Paths.Storage != "data/storage" {
		t.Errorf("Storage = %v, want %v", cfg.Paths.Storage, "data/storage")
	}
	if cfg.Storage.MaxQuestions != 3 {
		t.Errorf("MaxQuestions = %d, want 3", cfg.Storage.MaxQuestions)
	}
	if len(cfg.Summarizer.Command.Args) != 2 {
		t.Errorf("Command.Args = %q", cfg.Summarizer.Command.Args)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("STORAGE_PATH", "/srv/interviews")
	t.Setenv("TOKEN_LIST", "x1, x2 ,,")
	t.Setenv("MAX_SIZE_MB", "10")
	t.Setenv("PORT", "8080")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Paths.Storage != "/srv/interviews" {
		t.Errorf("Storage = %q", cfg.Paths.Storage)
	}
	if len(cfg.Auth.Tokens) != 2 || cfg.Auth.Tokens[1] != "x2" {
		t.Errorf("Tokens = %q", cfg.Auth.Tokens)
	}
	if cfg.Storage.MaxUploadMB != 10 {
		t.Errorf("MaxUploadMB = %d", cfg.Storage.MaxUploadMB)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadBadEnvNumber(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("MAX_SIZE_MB", "fifty")

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject a non-numeric MAX_SIZE_MB")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadDotEnvMissingFiles(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := LoadDotEnv(); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil when no files exist", err)
	}
}
