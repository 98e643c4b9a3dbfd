package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Paths      PathsConfig      `yaml:"paths"`
	Storage    StorageConfig    `yaml:"storage"`
	Auth       AuthConfig       `yaml:"auth"`
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Report     ReportConfig     `yaml:"report"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PathsConfig struct {
	Storage string `yaml:"storage"`
	Temp    string `yaml:"temp"`
	Inbox   string `yaml:"inbox"`
}

type StorageConfig struct {
	TimeZone     string `yaml:"time_zone"`
	MaxUploadMB  int    `yaml:"max_upload_mb"`
	MaxQuestions int    `yaml:"max_questions"`
	ContentType  string `yaml:"content_type"`
	Extension    string `yaml:"extension"`
	OnCollision  string `yaml:"on_collision"`
}

type AuthConfig struct {
	Tokens []string `yaml:"tokens"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type SummarizerConfig struct {
	Backend string        `yaml:"backend"`
	Prompt  string        `yaml:"prompt"`
	Command CommandConfig `yaml:"command"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
}

type CommandConfig struct {
	BinaryPath string   `yaml:"binary_path"`
	Args       []string `yaml:"args"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type OpenAIConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type PipelineConfig struct {
	MaxConcurrent       int `yaml:"max_concurrent"`
	StageTimeoutSeconds int `yaml:"stage_timeout_seconds"`
}

type WatcherConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ReportConfig struct {
	OnFinish bool `yaml:"on_finish"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	BackendCommand = "command"
	BackendGemini  = "gemini"
	BackendOpenAI  = "openai"

	CollisionSuffix = "suffix"
	CollisionReject = "reject"
)

// StageTimeout bounds every external process invocation of the pipeline
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Pipeline.StageTimeoutSeconds) * time.Second
}

// MaxUploadBytes is the artifact size ceiling
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) * 1024 * 1024
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.Language == "" {
		return fmt.Errorf("whisper.language is required")
	}

	tokens := c.Auth.Tokens[:0:0]
	for _, t := range c.Auth.Tokens {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return fmt.Errorf("auth.tokens is required")
	}
	c.Auth.Tokens = tokens

	if c.Server.Addr == "" {
		c.Server.Addr = ":4000"
	}
	if c.Paths.Storage == "" {
		c.Paths.Storage = "storage"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Storage.TimeZone == "" {
		c.Storage.TimeZone = "Asia/Bangkok"
	}
	if _, err := time.LoadLocation(c.Storage.TimeZone); err != nil {
		return fmt.Errorf("storage.time_zone: %w", err)
	}
	if c.Storage.MaxUploadMB <= 0 {
		c.Storage.MaxUploadMB = 50
	}
	if c.Storage.MaxQuestions <= 0 {
		c.Storage.MaxQuestions = 5
	}
	if c.Storage.ContentType == "" {
		c.Storage.ContentType = "video/webm"
	}
	if c.Storage.Extension == "" {
		c.Storage.Extension = "webm"
	}
	c.Storage.Extension = strings.TrimPrefix(c.Storage.Extension, ".")
	switch c.Storage.OnCollision {
	case "":
		c.Storage.OnCollision = CollisionSuffix
	case CollisionSuffix, CollisionReject:
	default:
		return fmt.Errorf("storage.on_collision must be %q or %q", CollisionSuffix, CollisionReject)
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}

	if c.Summarizer.Backend == "" {
		c.Summarizer.Backend = BackendCommand
	}
	switch c.Summarizer.Backend {
	case BackendCommand:
		if c.Summarizer.Command.BinaryPath == "" {
			return fmt.Errorf("summarizer.command.binary_path is required")
		}
	case BackendGemini:
		if len(c.Summarizer.Gemini.APIKeys) == 0 {
			return fmt.Errorf("summarizer.gemini.api_keys is required")
		}
		if c.Summarizer.Gemini.Model == "" {
			c.Summarizer.Gemini.Model = "gemini-2.5-flash"
		}
	case BackendOpenAI:
		if c.Summarizer.OpenAI.APIKey == "" {
			return fmt.Errorf("summarizer.openai.api_key is required")
		}
		if c.Summarizer.OpenAI.Model == "" {
			c.Summarizer.OpenAI.Model = "gpt-4o-mini"
		}
	default:
		return fmt.Errorf("summarizer.backend %q is not supported", c.Summarizer.Backend)
	}

	if c.Pipeline.MaxConcurrent == 0 {
		c.Pipeline.MaxConcurrent = 2
	}
	if c.Pipeline.StageTimeoutSeconds == 0 {
		c.Pipeline.StageTimeoutSeconds = 300
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
