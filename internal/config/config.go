// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultPrefix is the environment prefix for settings without an explicit name.
const DefaultPrefix = "STATS"

type Config struct {
	// GitHub
	GithubToken    string `envconfig:"GITHUB_TOKEN"`
	GithubUsername string `envconfig:"GITHUB_USERNAME" validate:"required,excludesall=/,excludes=.."`
	GraphQLURL     string `envconfig:"GITHUB_GRAPHQL_URL" default:"https://api.github.com/graphql" validate:"url"`
	RestURL        string `envconfig:"GITHUB_API_URL" default:"https://api.github.com/" validate:"url"`

	// App
	CacheDir    string `split_words:"true" default:"cache" validate:"required"`
	LogLevel    string `split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `split_words:"true" default:"text" validate:"oneof=text json"`
	MetricsFile string `split_words:"true"`

	// Performance tuning
	RequestTimeout    time.Duration `split_words:"true" default:"30s" validate:"gt=0"`
	Concurrency       int           `split_words:"true" default:"4" validate:"gt=0"`
	RequestsPerMinute int           `split_words:"true" default:"300" validate:"gt=0"`
	AllStars          bool          `split_words:"true" default:"false"`
}

type Loader struct {
	Prefix   string
	EnvFiles []string
	Validate *validator.Validate
}

func NewLoader(prefix string) *Loader {
	return &Loader{Prefix: prefix, EnvFiles: []string{".env"}, Validate: validator.New()}
}

// Load reads the configuration. Overrides are applied after the environment
// and before validation, so command-line flags can fill required settings.
func (l *Loader) Load(overrides ...func(*Config)) (Config, error) {
	var cfg Config

	// .env files are optional
	_ = godotenv.Load(l.EnvFiles...)

	if err := envconfig.Process(l.Prefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env load: %w", err)
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if err := l.Validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
