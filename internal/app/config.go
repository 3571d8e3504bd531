package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sheet_image_gen/internal/embed"
	"sheet_image_gen/internal/notifications"
	"sheet_image_gen/internal/sheets"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const discordAppURL = "https://discord.com/app"

// Config is read from the environment once at startup.
type Config struct {
	CredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS" required:"true"`
	SpreadsheetID   string `envconfig:"SPREADSHEET_ID" required:"true"`
	SheetTab        string `envconfig:"SHEET_TAB" default:"RECIPES"`
	PromptColumn    string `envconfig:"PROMPT_COLUMN" default:"K"`
	ResultColumn    string `envconfig:"RESULT_COLUMN" default:"D"`
	EmbedColumn     string `envconfig:"EMBED_COLUMN" default:"E"`
	StartRow        int    `envconfig:"START_ROW" default:"2"`

	ChannelURL   string        `envconfig:"CHANNEL_URL" default:"https://discord.com/channels/1382818633348026501/1382818633348026504"`
	CDPURL       string        `envconfig:"CDP_URL" default:"http://localhost:9222"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	PollTimeout  time.Duration `envconfig:"POLL_TIMEOUT" default:"120s"`
	EmbedImages  bool          `envconfig:"EMBED_IMAGES" default:"true"`

	NtfyEnabled  bool   `envconfig:"NTFY_ENABLED" default:"false"`
	NtfyURL      string `envconfig:"NTFY_URL" default:"https://ntfy.sh"`
	NtfyTopic    string `envconfig:"NTFY_TOPIC" default:"sheet-images"`
	NtfyPriority string `envconfig:"NTFY_PRIORITY"`
}

// LoadConfig decodes and validates the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		return fmt.Errorf("SPREADSHEET_ID must not be blank")
	}
	if c.StartRow < 1 {
		return fmt.Errorf("START_ROW must be at least 1, got %d", c.StartRow)
	}
	for name, col := range map[string]string{
		"PROMPT_COLUMN": c.PromptColumn,
		"RESULT_COLUMN": c.ResultColumn,
		"EMBED_COLUMN":  c.EmbedColumn,
	} {
		if sheets.ColumnIndex(col) < 0 {
			return fmt.Errorf("%s is not a column name: %q", name, col)
		}
	}
	if c.PollInterval <= 0 || c.PollTimeout <= 0 {
		return fmt.Errorf("POLL_INTERVAL and POLL_TIMEOUT must be positive")
	}
	return nil
}

// SheetConfig is the sheet layout described by the config.
func (c *Config) SheetConfig() sheets.Config {
	return sheets.Config{
		SpreadsheetID: c.SpreadsheetID,
		Tab:           c.SheetTab,
		PromptColumn:  c.PromptColumn,
		ResultColumn:  c.ResultColumn,
		StartRow:      c.StartRow,
	}
}

// EmbedConfig places embedded images in EmbedColumn starting at StartRow.
func (c *Config) EmbedConfig() embed.Config {
	cfg := embed.DefaultConfig
	cfg.StartRow = c.StartRow
	cfg.Column = sheets.ColumnIndex(c.EmbedColumn)
	return cfg
}

// ChatURL is the channel to open, falling back to the app root when no channel is set.
func (c *Config) ChatURL() string {
	if c.ChannelURL == "" {
		return discordAppURL
	}
	return c.ChannelURL
}

// debugForced reports whether DEBUG holds a true boolean value.
func debugForced() bool {
	on, err := strconv.ParseBool(os.Getenv("DEBUG"))
	return err == nil && on
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	if debugForced() {
		levelStr = "debug"
	}
	switch levelStr {
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	case "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		level, parseErr := zerolog.ParseLevel(levelStr)
		if parseErr != nil {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
			break
		}
		zerolog.SetGlobalLevel(level)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// InitializeNotificationClient creates and returns the notification client
func InitializeNotificationClient(cfg *Config) *notifications.Client {
	log.Debug().
		Bool("enabled", cfg.NtfyEnabled).
		Str("base_url", cfg.NtfyURL).
		Str("topic", cfg.NtfyTopic).
		Msg("Initializing notification client")

	client := notifications.NewClient(cfg.NtfyURL, cfg.NtfyTopic, cfg.NtfyEnabled, cfg.NtfyPriority)

	if cfg.NtfyEnabled {
		log.Info().Str("topic", cfg.NtfyTopic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return client
}
