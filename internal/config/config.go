package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	HubSpot HubSpotConfig `yaml:"hubspot" mapstructure:"hubspot"`
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`
	Deal    DealConfig    `yaml:"deal" mapstructure:"deal"`
	Meeting MeetingConfig `yaml:"meeting" mapstructure:"meeting"`
	Answers AnswersConfig `yaml:"answers" mapstructure:"answers"`
	Names   NamesConfig   `yaml:"names" mapstructure:"names"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Sentry  SentryConfig  `yaml:"sentry" mapstructure:"sentry"`
	DryRun  bool          `yaml:"dry_run" mapstructure:"dry_run"`
}

// HubSpotConfig holds HubSpot private app settings.
type HubSpotConfig struct {
	Token       string  `yaml:"token" mapstructure:"token"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RoutingConfig maps webhook path segments to CRM owners.
//
// Emails is an allow-list: each entry routes to the owner with the same
// email using the shared HubSpot token. Mailboxes adds explicit routes that
// may name a different owner or token.
type RoutingConfig struct {
	Emails    []string        `yaml:"emails" mapstructure:"emails"`
	Mailboxes []MailboxConfig `yaml:"mailboxes" mapstructure:"mailboxes"`
}

// MailboxConfig is one explicit route.
type MailboxConfig struct {
	Mailbox    string `yaml:"mailbox" mapstructure:"mailbox"`
	OwnerEmail string `yaml:"owner_email" mapstructure:"owner_email"`
	Token      string `yaml:"token" mapstructure:"token"`
}

// DealConfig controls deals created for new contacts.
type DealConfig struct {
	Stage             string `yaml:"stage" mapstructure:"stage"`
	Pipeline          string `yaml:"pipeline" mapstructure:"pipeline"`
	ClosedStagePrefix string `yaml:"closed_stage_prefix" mapstructure:"closed_stage_prefix"`
}

// MeetingConfig controls meeting records created per booking.
type MeetingConfig struct {
	LocationLabel string `yaml:"location_label" mapstructure:"location_label"`
	Outcome       string `yaml:"outcome" mapstructure:"outcome"`
}

// AnswersConfig lists label keywords that identify answer fields.
type AnswersConfig struct {
	Phone   []string `yaml:"phone" mapstructure:"phone"`
	Title   []string `yaml:"title" mapstructure:"title"`
	Comment []string `yaml:"comment" mapstructure:"comment"`
}

// NamesConfig configures full name parsing.
type NamesConfig struct {
	Honorifics []string `yaml:"honorifics" mapstructure:"honorifics"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN                   string  `yaml:"dsn" mapstructure:"dsn"`
	Environment           string  `yaml:"environment" mapstructure:"environment"`
	Release               string  `yaml:"release" mapstructure:"release"`
	HealthcheckSampleRate float64 `yaml:"healthcheck_sample_rate" mapstructure:"healthcheck_sample_rate"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BOOKINGSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("hubspot.token", "")
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.rate_limit", 9)
	v.SetDefault("hubspot.timeout_secs", 30)
	v.SetDefault("routing.emails", []string{})
	v.SetDefault("deal.stage", "appointmentscheduled")
	v.SetDefault("deal.pipeline", "default")
	v.SetDefault("deal.closed_stage_prefix", "closed")
	v.SetDefault("meeting.location_label", "Remote")
	v.SetDefault("meeting.outcome", "SCHEDULED")
	v.SetDefault("answers.phone", []string{"phone", "telephone", "telefon", "mobile", "handy"})
	v.SetDefault("answers.title", []string{"title", "subject", "topic", "titel", "thema", "betreff"})
	v.SetDefault("answers.comment", []string{"comment", "agenda", "note", "kommentar", "bemerkung", "anmerkung"})
	v.SetDefault("names.honorifics", []string{"Herr", "Frau"})
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.release", "")
	v.SetDefault("sentry.healthcheck_sample_rate", 0.001)
	v.SetDefault("dry_run", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
