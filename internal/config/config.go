package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone     = "UTC"
	configPathEnv       = "REGMONITOR_CONFIG"
	databaseDSNEnv      = "DATABASE_DSN"
	databaseDriverEnv   = "DATABASE_DRIVER"
	translatorAPIKeyEnv = "TRANSLATOR_API_KEY"
	translatorModelEnv  = "TRANSLATOR_MODEL"
	webhookURLEnv       = "WEBHOOK_URL"
	logLevelEnv         = "LOG_LEVEL"
	logFormatEnv        = "LOG_FORMAT"
	rulesPathEnv        = "RULES_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Rules         RulesConfig        `yaml:"rules"`
	Translator    TranslatorConfig   `yaml:"translator"`
	Notifications NotificationConfig `yaml:"notifications"`
	Feeds         []FeedConfig       `yaml:"feeds" validate:"dive"`
	GoogleNews    GoogleNewsConfig   `yaml:"googleNews"`
}

// LoggingConfig selects the slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DatabaseConfig describes the SQL store.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// SchedulerConfig defines how often the pipeline runs in schedule mode.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval" validate:"gt=0"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// FetchConfig bounds network work done per run.
type FetchConfig struct {
	Timeout             time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxConcurrent       int           `yaml:"maxConcurrent" validate:"gte=1,lte=64"`
	MaxAgeDays          int           `yaml:"maxAgeDays" validate:"gte=1"`
	GoogleNewsPerSecond float64       `yaml:"googleNewsPerSecond" validate:"gt=0"`
	UserAgent           string        `yaml:"userAgent"`
	SkipDateEnrichment  bool          `yaml:"skipDateEnrichment"`
	RecycledDateSources []string      `yaml:"recycledDateSources"`
}

// RulesConfig points to an optional rule pack overriding the embedded one.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// TranslatorConfig defines how to contact an OpenAI-compatible chat API.
type TranslatorConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint" validate:"required_if=Enabled true,omitempty,url"`
	Model        string `yaml:"model" validate:"required_if=Enabled true"`
	APIKey       string `yaml:"apiKey"`
	TargetLang   string `yaml:"targetLang"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig describes a chat webhook receiving run digests.
type WebhookConfig struct {
	URL         string `yaml:"url" validate:"omitempty,url"`
	DigestLimit int    `yaml:"digestLimit" validate:"gte=0"`
}

// FeedConfig describes a single RSS/Atom feed.
type FeedConfig struct {
	Name    string `yaml:"name" validate:"required"`
	URL     string `yaml:"url" validate:"required,url"`
	Scanner string `yaml:"scanner" validate:"required"`
	Lang    string `yaml:"lang"`
	Region  string `yaml:"region"`
}

// GoogleNewsConfig describes the search-RSS queries.
type GoogleNewsConfig struct {
	Disabled bool           `yaml:"disabled"`
	Endpoint string         `yaml:"endpoint" validate:"required_unless=Disabled true,omitempty,url"`
	Locales  []LocaleConfig `yaml:"locales" validate:"dive"`
	Queries  []QueryConfig  `yaml:"queries" validate:"dive"`
}

// LocaleConfig maps a locale key to Google News edition parameters.
type LocaleConfig struct {
	Key  string `yaml:"key" validate:"required"`
	HL   string `yaml:"hl" validate:"required"`
	GL   string `yaml:"gl" validate:"required"`
	CEID string `yaml:"ceid" validate:"required"`
}

// QueryConfig lists search terms issued against one locale.
type QueryConfig struct {
	Locale string   `yaml:"locale" validate:"required"`
	Terms  []string `yaml:"terms" validate:"min=1,dive,required"`
}

// Locale finds a configured locale by key.
func (g GoogleNewsConfig) Locale(key string) (LocaleConfig, bool) {
	for _, l := range g.Locales {
		if l.Key == key {
			return l, true
		}
	}
	return LocaleConfig{}, false
}

// Load reads YAML configuration (if present), applies environment overrides
// and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field references.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}

	for _, q := range c.GoogleNews.Queries {
		if _, ok := c.GoogleNews.Locale(q.Locale); !ok {
			return fmt.Errorf("config: query locale %q is not configured", q.Locale)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(translatorAPIKeyEnv); v != "" {
		c.Translator.APIKey = v
	}

	if v := os.Getenv(translatorModelEnv); v != "" {
		c.Translator.Model = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.Webhook.URL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(rulesPathEnv); v != "" {
		c.Rules.Path = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: unknown timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.MaxConcurrent > 0 {
		base.Fetch.MaxConcurrent = override.Fetch.MaxConcurrent
	}
	if override.Fetch.MaxAgeDays > 0 {
		base.Fetch.MaxAgeDays = override.Fetch.MaxAgeDays
	}
	if override.Fetch.GoogleNewsPerSecond > 0 {
		base.Fetch.GoogleNewsPerSecond = override.Fetch.GoogleNewsPerSecond
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.SkipDateEnrichment {
		base.Fetch.SkipDateEnrichment = true
	}
	if len(override.Fetch.RecycledDateSources) > 0 {
		base.Fetch.RecycledDateSources = override.Fetch.RecycledDateSources
	}

	if override.Rules.Path != "" {
		base.Rules.Path = override.Rules.Path
	}

	if override.Translator.Enabled {
		base.Translator.Enabled = true
	}
	if override.Translator.Endpoint != "" {
		base.Translator.Endpoint = override.Translator.Endpoint
	}
	if override.Translator.Model != "" {
		base.Translator.Model = override.Translator.Model
	}
	if override.Translator.APIKey != "" {
		base.Translator.APIKey = override.Translator.APIKey
	}
	if override.Translator.TargetLang != "" {
		base.Translator.TargetLang = override.Translator.TargetLang
	}
	if override.Translator.SystemPrompt != "" {
		base.Translator.SystemPrompt = override.Translator.SystemPrompt
	}

	if override.Notifications.Webhook.URL != "" {
		base.Notifications.Webhook.URL = override.Notifications.Webhook.URL
	}
	if override.Notifications.Webhook.DigestLimit > 0 {
		base.Notifications.Webhook.DigestLimit = override.Notifications.Webhook.DigestLimit
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.GoogleNews.Disabled {
		base.GoogleNews.Disabled = true
	}
	if override.GoogleNews.Endpoint != "" {
		base.GoogleNews.Endpoint = override.GoogleNews.Endpoint
	}
	if len(override.GoogleNews.Locales) > 0 {
		base.GoogleNews.Locales = override.GoogleNews.Locales
	}
	if len(override.GoogleNews.Queries) > 0 {
		base.GoogleNews.Queries = override.GoogleNews.Queries
	}

	return base
}
