package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Google    GoogleConfig    `mapstructure:"google"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Expense   ExpenseConfig   `mapstructure:"expense"`
	Dedup     DedupConfig     `mapstructure:"dedup"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SlackConfig holds the inbound transport configuration
type SlackConfig struct {
	BotToken        string        `mapstructure:"bot_token"`
	WebhookPath     string        `mapstructure:"webhook_path"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// GoogleConfig holds service-account credential sources
type GoogleConfig struct {
	CredentialsB64  string `mapstructure:"credentials_b64"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// StorageConfig selects the durable store attachments are relayed to
type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // drive or gcs
	DriveFolderID string `mapstructure:"drive_folder_id"`
	GCSBucket     string `mapstructure:"gcs_bucket"`
}

// LedgerConfig selects the ledger backend records are appended to
type LedgerConfig struct {
	Backend       string `mapstructure:"backend"` // sheets or excel
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	Range         string `mapstructure:"range"`
	WorkbookPath  string `mapstructure:"workbook_path"`
	Sheet         string `mapstructure:"sheet"`
}

// ExpenseConfig holds extraction and timestamp settings
type ExpenseConfig struct {
	HomeCurrency string `mapstructure:"home_currency"`
	Timezone     string `mapstructure:"timezone"`
}

// DedupConfig holds event deduplication settings
type DedupConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Backend string        `mapstructure:"backend"` // memory or sqlite
	Path    string        `mapstructure:"path"`
}

// ExtractorConfig selects the extraction strategy
type ExtractorConfig struct {
	Mode         string        `mapstructure:"mode"` // regex or llm
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	OpenAIModel  string        `mapstructure:"openai_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Slack defaults
	viper.SetDefault("slack.webhook_path", "/slack/events")
	viper.SetDefault("slack.download_timeout", 8*time.Second)

	// Storage defaults
	viper.SetDefault("storage.backend", "drive")

	// Ledger defaults
	viper.SetDefault("ledger.backend", "sheets")
	viper.SetDefault("ledger.range", "Expenses")
	viper.SetDefault("ledger.sheet", "Expenses")

	// Expense defaults
	viper.SetDefault("expense.home_currency", "INR")
	viper.SetDefault("expense.timezone", "Asia/Kolkata")

	// Dedup defaults
	viper.SetDefault("dedup.ttl", 600*time.Second)
	viper.SetDefault("dedup.backend", "memory")
	viper.SetDefault("dedup.path", "data/dedup.db")

	// Extractor defaults
	viper.SetDefault("extractor.mode", "regex")
	viper.SetDefault("extractor.openai_model", "gpt-4o-mini")
	viper.SetDefault("extractor.timeout", 20*time.Second)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	viper.BindEnv("google.credentials_b64", "GOOGLE_CREDS_B64")
	viper.BindEnv("google.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("ledger.spreadsheet_id", "SPREADSHEET_ID")
	viper.BindEnv("extractor.openai_api_key", "OPENAI_API_KEY")
}

// Validate validates the configuration. Missing credentials or destination
// ids are fatal here so the process refuses to serve traffic instead of
// failing silently per request.
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}

	switch c.Ledger.Backend {
	case "sheets":
		if c.Ledger.SpreadsheetID == "" {
			return fmt.Errorf("ledger.spreadsheet_id is required for the sheets backend")
		}
		if !c.Google.hasCredentials() {
			return fmt.Errorf("google credentials are required for the sheets backend")
		}
	case "excel":
		if c.Ledger.WorkbookPath == "" {
			return fmt.Errorf("ledger.workbook_path is required for the excel backend")
		}
	default:
		return fmt.Errorf("ledger.backend must be sheets or excel, got %q", c.Ledger.Backend)
	}

	switch c.Storage.Backend {
	case "drive":
		if !c.Google.hasCredentials() {
			return fmt.Errorf("google credentials are required for the drive backend")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required for the gcs backend")
		}
		if !c.Google.hasCredentials() {
			return fmt.Errorf("google credentials are required for the gcs backend")
		}
	default:
		return fmt.Errorf("storage.backend must be drive or gcs, got %q", c.Storage.Backend)
	}

	switch c.Dedup.Backend {
	case "memory":
	case "sqlite":
		if c.Dedup.Path == "" {
			return fmt.Errorf("dedup.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("dedup.backend must be memory or sqlite, got %q", c.Dedup.Backend)
	}

	switch c.Extractor.Mode {
	case "regex":
	case "llm":
		if c.Extractor.OpenAIAPIKey == "" {
			return fmt.Errorf("extractor.openai_api_key is required for llm mode")
		}
	default:
		return fmt.Errorf("extractor.mode must be regex or llm, got %q", c.Extractor.Mode)
	}

	return nil
}

func (g GoogleConfig) hasCredentials() bool {
	return g.CredentialsB64 != "" || g.CredentialsFile != ""
}
