package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resumebek/internal/followup"
	"github.com/spigell/resumebek/internal/metrics"
	"github.com/spigell/resumebek/internal/notify"
	"github.com/spigell/resumebek/internal/pipeline"
	"github.com/spigell/resumebek/internal/resume"
)

const (
	app = "resumebek"
)

type Config struct {
	Detector DetectorConfig `mapstructure:"detector"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	AI       AIConfig       `mapstructure:"ai"`
	CTA      notify.CTA     `mapstructure:"cta"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	FollowUp FollowUpConfig `mapstructure:"followup"`
}

type DetectorConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=100"`
}

type PipelineConfig struct {
	MaxFileSize     int64         `mapstructure:"max-file-size" validate:"gte=0"`
	MinTextLength   int           `mapstructure:"min-text-length" validate:"gte=0"`
	AnalysisTimeout time.Duration `mapstructure:"analysis-timeout" validate:"gte=0"`
}

type AIConfig struct {
	Provider string       `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api-key"`
	APIKeyFile        string `mapstructure:"api-key-file"`
	Model             string `mapstructure:"model"`
	MaxInputChars     int    `mapstructure:"max-input-chars" validate:"gte=0"`
	RequestsPerMinute int    `mapstructure:"requests-per-minute" validate:"gte=0"`
	MaxLogLength      int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type MetricsConfig struct {
	Dir           string `mapstructure:"dir" validate:"required"`
	RetentionDays int    `mapstructure:"retention-days" validate:"gte=0"`
}

type FollowUpConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Delay   time.Duration `mapstructure:"delay" validate:"gte=0"`
	Store   string        `mapstructure:"store" validate:"oneof=file sqlite"`
	Path    string        `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resumebek detects resumes in uploaded documents, reviews them with AI and follows up with the author",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resumebek.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("detector.threshold", resume.DefaultThreshold)
	v.SetDefault("pipeline.max-file-size", pipeline.DefaultMaxFileSize)
	v.SetDefault("pipeline.min-text-length", pipeline.DefaultMinTextLength)
	v.SetDefault("pipeline.analysis-timeout", pipeline.DefaultAnalysisTimeout)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.max-input-chars", 3000)
	v.SetDefault("cta.url", notify.DefaultPhotoURL)
	v.SetDefault("cta.promo", notify.DefaultPromo)
	v.SetDefault("cta.utm-source", notify.DefaultUTMSource)
	v.SetDefault("metrics.dir", "analytics")
	v.SetDefault("metrics.retention-days", metrics.DefaultRetentionDays)
	v.SetDefault("followup.enabled", true)
	v.SetDefault("followup.delay", followup.DefaultDelay)
	v.SetDefault("followup.store", "file")
}

func initConfig() {
	// Secrets may come from a .env file next to the binary. It is optional.
	_ = godotenv.Load()

	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config file is optional, an explicit one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if config.FollowUp.Path == "" {
		config.FollowUp.Path = "followup_jobs.json"
		if config.FollowUp.Store == "sqlite" {
			config.FollowUp.Path = "followup_jobs.db"
		}
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &config, nil
}

func (c *Config) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxFileSize:     c.Pipeline.MaxFileSize,
		MinTextLength:   c.Pipeline.MinTextLength,
		AnalysisTimeout: c.Pipeline.AnalysisTimeout,
		FollowUpDelay:   c.FollowUp.Delay,
		CTA:             c.CTA,
	}
}
