package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultTitlePrompt is the system prompt used for title generation.
const DefaultTitlePrompt = "You are a title generator. Create a concise title (max 60 characters) that captures the essence of the given text. The title should be clear and descriptive."

// DefaultNotesPrompt is the system prompt used for notes generation.
const DefaultNotesPrompt = `You are a helpful assistant that organizes text into clear and concise notes. Your task is to take the given transcript and structure it into well-organized notes. Follow these guidelines:
1. Identify the main topics and key points.
2. Group related information together logically.
3. Use clear headings or sections where appropriate.
4. Use bullet points or numbered lists for clarity when needed.
5. Ensure the notes are easy to read and understand.
6. Summarize lengthy sections concisely while retaining important details.
7. Maintain a neutral and objective tone.`

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port string

	OpenAIKey          string
	OpenAIBaseURL      string // empty means the public API
	STTProvider        string
	TranscriptionModel string
	ChatModel          string
	TitlePrompt        string
	NotesPrompt        string

	DatabaseDriver string // postgres, sqlite or memory
	DatabaseURL    string
	AutoMigrate    bool

	AudioDir     string
	FFmpegFormat string // ffmpeg input format, e.g. avfoundation, pulse, alsa
	FFmpegInput  string

	LogLevel  string
	LogPretty bool

	UserID string // identity used by the CLI
}

type fileConfig struct {
	Port               string `toml:"port"`
	OpenAIKey          string `toml:"openai_api_key"`
	OpenAIBaseURL      string `toml:"openai_base_url"`
	STTProvider        string `toml:"stt_provider"`
	TranscriptionModel string `toml:"transcription_model"`
	ChatModel          string `toml:"chat_model"`
	TitlePrompt        string `toml:"title_prompt"`
	NotesPrompt        string `toml:"notes_prompt"`
	DatabaseDriver     string `toml:"database_driver"`
	DatabaseURL        string `toml:"database_url"`
	AutoMigrate        *bool  `toml:"auto_migrate"`
	AudioDir           string `toml:"audio_dir"`
	FFmpegFormat       string `toml:"ffmpeg_format"`
	FFmpegInput        string `toml:"ffmpeg_input"`
	LogLevel           string `toml:"log_level"`
	LogPretty          *bool  `toml:"log_pretty"`
	UserID             string `toml:"user_id"`
}

// Load builds the configuration from defaults, the optional TOML file and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := configFilePath(); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		applyFile(cfg, &fc)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.DatabaseDriver = DriverPostgres
		} else {
			cfg.DatabaseDriver = DriverMemory
		}
	}

	return cfg, nil
}

// Validate reports configuration that would only fail later, on the first
// API call. A missing OpenAI key is fatal.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is required. Set it as an environment variable, in .env, or as openai_api_key in the config file")
	}

	switch c.DatabaseDriver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for database driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unsupported database driver: %s. Supported: postgres, sqlite, memory", c.DatabaseDriver)
	}

	if c.AudioDir == "" {
		return fmt.Errorf("audio directory must not be empty")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		STTProvider:        "openai",
		TranscriptionModel: "whisper-1",
		ChatModel:          "gpt-4o",
		TitlePrompt:        DefaultTitlePrompt,
		NotesPrompt:        DefaultNotesPrompt,
		AudioDir:           defaultAudioDir(),
		FFmpegFormat:       defaultFFmpegFormat(),
		FFmpegInput:        defaultFFmpegInput(),
		LogLevel:           "info",
		LogPretty:          true,
	}
}

func applyFile(cfg *Config, fc *fileConfig) {
	setString(&cfg.Port, fc.Port)
	setString(&cfg.OpenAIKey, fc.OpenAIKey)
	setString(&cfg.OpenAIBaseURL, fc.OpenAIBaseURL)
	setString(&cfg.STTProvider, fc.STTProvider)
	setString(&cfg.TranscriptionModel, fc.TranscriptionModel)
	setString(&cfg.ChatModel, fc.ChatModel)
	setString(&cfg.TitlePrompt, fc.TitlePrompt)
	setString(&cfg.NotesPrompt, fc.NotesPrompt)
	setString(&cfg.DatabaseDriver, fc.DatabaseDriver)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	if fc.AudioDir != "" {
		cfg.AudioDir = expandTilde(fc.AudioDir)
	}
	setString(&cfg.FFmpegFormat, fc.FFmpegFormat)
	setString(&cfg.FFmpegInput, fc.FFmpegInput)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.UserID, fc.UserID)
	if fc.AutoMigrate != nil {
		cfg.AutoMigrate = *fc.AutoMigrate
	}
	if fc.LogPretty != nil {
		cfg.LogPretty = *fc.LogPretty
	}
}

func applyEnvOverrides(cfg *Config) error {
	setString(&cfg.Port, os.Getenv("PORT"))
	setString(&cfg.OpenAIKey, os.Getenv("OPENAI_API_KEY"))
	setString(&cfg.OpenAIBaseURL, os.Getenv("OPENAI_BASE_URL"))
	setString(&cfg.STTProvider, strings.ToLower(os.Getenv("STT_PROVIDER")))
	setString(&cfg.DatabaseDriver, strings.ToLower(os.Getenv("DATABASE_DRIVER")))
	setString(&cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&cfg.FFmpegFormat, os.Getenv("MEDSCRIBE_FFMPEG_FORMAT"))
	setString(&cfg.FFmpegInput, os.Getenv("MEDSCRIBE_FFMPEG_INPUT"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&cfg.UserID, os.Getenv("MEDSCRIBE_USER_ID"))
	if v := os.Getenv("MEDSCRIBE_AUDIO_DIR"); v != "" {
		cfg.AudioDir = expandTilde(v)
	}

	for key, dst := range map[string]*bool{
		"DATABASE_AUTO_MIGRATE": &cfg.AutoMigrate,
		"LOG_PRETTY":            &cfg.LogPretty,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func configFilePath() string {
	if p := os.Getenv("MEDSCRIBE_CONFIG"); p != "" {
		return expandTilde(p)
	}

	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "medscribe")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "medscribe")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultAudioDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "medscribe", "audio")
	}
	return filepath.Join(".", "uploads")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
