package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/divya16-bit/ApplyBee/internal/gist"
	"github.com/divya16-bit/ApplyBee/internal/server"
)

const (
	app = "applybee"
)

type Config struct {
	Matcher MatcherConfig `mapstructure:"matcher"`
	AI      AIConfig      `mapstructure:"ai"`
	Gist    GistConfig    `mapstructure:"gist"`
	Server  server.Config `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type MatcherConfig struct {
	SemanticScoreEnabled      bool    `mapstructure:"semantic-score-enabled"`
	SemanticNormalizerEnabled bool    `mapstructure:"semantic-normalizer-enabled"`
	SemanticModelName         string  `mapstructure:"semantic-model-name"`
	SkillCategoryThreshold    float64 `mapstructure:"skill-category-threshold" validate:"gte=0,lte=1"`
	MaxInputChars             int     `mapstructure:"max-input-chars" validate:"gte=500,lte=200000"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Explain  bool          `mapstructure:"explain"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type GistConfig struct {
	Defaults gist.Defaults `mapstructure:"defaults"`
}

// RedisConfig points at the category embedding cache. An empty URL disables it.
type RedisConfig struct {
	URL string        `mapstructure:"url" validate:"omitempty,url"`
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "applybee scores resumes against job descriptions and drafts answers for application forms",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"matcher.semantic-score-enabled":      "MATCHER_SEMANTIC",
		"matcher.semantic-normalizer-enabled": "MATCHER_SEMANTIC_NORMALIZER",
		"matcher.semantic-model-name":         "SENTENCE_MODEL",
		"matcher.skill-category-threshold":    "SKILL_CATEGORY_THRESHOLD",
		"ai.gemini.api-key-file":              "GEMINI_API_KEY_FILE",
		"redis.url":                           "REDIS_URL",
		"server.addr":                         "APPLYBEE_ADDR",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is applybee.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("matcher.semantic-score-enabled", false)
	viper.SetDefault("matcher.semantic-normalizer-enabled", true)
	viper.SetDefault("matcher.semantic-model-name", "text-embedding-004")
	viper.SetDefault("matcher.skill-category-threshold", 0.6)
	viper.SetDefault("matcher.max-input-chars", 12000)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	d := gist.DefaultAnswers()
	viper.SetDefault("gist.defaults.location", d.Location)
	viper.SetDefault("gist.defaults.country", d.Country)
	viper.SetDefault("gist.defaults.notice-period", d.NoticePeriod)
	viper.SetDefault("gist.defaults.salary", d.Salary)
	viper.SetDefault("gist.defaults.relocation", d.Relocation)
	viper.SetDefault("gist.defaults.work-authorization", d.WorkAuthorization)
	viper.SetDefault("gist.defaults.visa", d.Visa)
	viper.SetDefault("gist.defaults.behavioral", d.Behavioral)
	viper.SetDefault("gist.defaults.long-form", d.LongForm)

	s := server.DefaultConfig()
	viper.SetDefault("server.addr", s.Addr)
	viper.SetDefault("server.max-concurrent", s.MaxConcurrent)
	viper.SetDefault("server.request-timeout", s.RequestTimeout)
	viper.SetDefault("server.rate-limit", s.RateLimit)
	viper.SetDefault("server.rate-burst", s.RateBurst)
}

func initConfig() {
	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so only an explicit or broken config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}
	config.Server.Version = version

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return config, nil
}
