package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Intervals IntervalsConfig `mapstructure:"intervals"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config points at the bucket holding recorded voice clips.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// IntervalsConfig configures the calendar service. AthleteID and APIKey are
// the defaults for athletes that have not stored their own.
type IntervalsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AthleteID string        `mapstructure:"athlete_id"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AssistantConfig holds the tunables of the plan workflow.
type AssistantConfig struct {
	DefaultStartTime     string   `mapstructure:"default_start_time"`
	DeleteConcurrency    int      `mapstructure:"delete_concurrency"`
	ConfirmKeywords      []string `mapstructure:"confirm_keywords"`
	HistoryKeywords      []string `mapstructure:"history_keywords"`
	FutureKeywords       []string `mapstructure:"future_keywords"`
	MonthKeywords        []string `mapstructure:"month_keywords"`
	HistoryDays          int      `mapstructure:"history_days"`
	FutureDays           int      `mapstructure:"future_days"`
	MonthDays            int      `mapstructure:"month_days"`
	AudioIncludesHistory bool     `mapstructure:"audio_includes_history"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ErrMissingJWTSecret is returned by ValidateServer when jwt.secret is unset.
var ErrMissingJWTSecret = errors.New("config: jwt.secret (JWT_SECRET) must be set to run the server")

var (
	DefaultConfirmKeywords = []string{"passt", "ja", "hochladen", "ok", "mach es", "yes", "upload"}
	DefaultHistoryKeywords = []string{"gestern", "letzte", "vergangen", "bisher", "analyse", "wie lief", "war", "history", "last", "yesterday", "how did"}
	DefaultFutureKeywords  = []string{"plan", "woche", "morgen", "nächste", "kalender", "geplant", "zukunft", "next", "tomorrow", "week", "calendar", "schedule"}
	DefaultMonthKeywords   = []string{"monat", "month"}
)

// LoadConfig reads configuration from an optional config.yaml in path, a
// .env file and environment variables, in increasing precedence.
func LoadConfig(path string) (config Config, err error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment only")
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, gemini.api_key -> GEMINI_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)
	// Names used by the first deployments of the assistant.
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("intervals.athlete_id", "INTERVALS_ATHLETE_ID", "INTERVALS_ID")
	_ = v.BindEnv("intervals.api_key", "INTERVALS_API_KEY", "INTERVALS_KEY")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	config.Assistant = config.Assistant.WithDefaults()
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "plan_coach")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket_name", "voice-clips")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("intervals.base_url", "https://intervals.icu/api/v1")
	v.SetDefault("intervals.athlete_id", "")
	v.SetDefault("intervals.api_key", "")
	v.SetDefault("intervals.timeout", "0s")
	v.SetDefault("assistant.default_start_time", "09:00:00")
	v.SetDefault("assistant.delete_concurrency", 10)
	v.SetDefault("assistant.confirm_keywords", DefaultConfirmKeywords)
	v.SetDefault("assistant.history_keywords", DefaultHistoryKeywords)
	v.SetDefault("assistant.future_keywords", DefaultFutureKeywords)
	v.SetDefault("assistant.month_keywords", DefaultMonthKeywords)
	v.SetDefault("assistant.history_days", 7)
	v.SetDefault("assistant.future_days", 14)
	v.SetDefault("assistant.month_days", 60)
	v.SetDefault("assistant.audio_includes_history", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// ValidateServer checks the settings the HTTP server cannot start without.
// The terminal client does not need them.
func (c Config) ValidateServer() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// WithDefaults fills zero values, for configs built by hand in tests and the CLI.
func (a AssistantConfig) WithDefaults() AssistantConfig {
	if a.DefaultStartTime == "" {
		a.DefaultStartTime = "09:00:00"
	}
	if a.DeleteConcurrency <= 0 {
		a.DeleteConcurrency = 10
	}
	if len(a.ConfirmKeywords) == 0 {
		a.ConfirmKeywords = DefaultConfirmKeywords
	}
	if len(a.HistoryKeywords) == 0 {
		a.HistoryKeywords = DefaultHistoryKeywords
	}
	if len(a.FutureKeywords) == 0 {
		a.FutureKeywords = DefaultFutureKeywords
	}
	if len(a.MonthKeywords) == 0 {
		a.MonthKeywords = DefaultMonthKeywords
	}
	if a.HistoryDays <= 0 {
		a.HistoryDays = 7
	}
	if a.FutureDays <= 0 {
		a.FutureDays = 14
	}
	if a.MonthDays <= 0 {
		a.MonthDays = 60
	}
	return a
}

// DefaultAssistant returns the assistant settings with every default applied.
func DefaultAssistant() AssistantConfig {
	return AssistantConfig{AudioIncludesHistory: true}.WithDefaults()
}
