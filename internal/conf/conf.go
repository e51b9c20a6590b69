package conf

import (
	"os"
	"strconv"
)

// Config represents application configuration, loaded once at startup
type Config struct {
	// LINE messaging channel configuration
	Line LineConfig

	// Trello store configuration
	Trello TrelloConfig

	// Gemini configuration (optional)
	Gemini GeminiConfig

	// Entity store backend selection
	Store StoreConfig

	// Contact resolver thresholds
	Resolver ResolverConfig

	// Scheduling defaults
	Schedule ScheduleConfig

	// Sweep trigger configuration
	Sweep SweepConfig

	// HTTP listen port
	Port int
}

// LineConfig contains LINE channel credentials
type LineConfig struct {
	ChannelToken  string
	ChannelSecret string
}

// TrelloConfig contains Trello credentials and list identifiers
type TrelloConfig struct {
	APIKey             string
	Token              string
	ScheduledListID    string
	ContactsListID     string
	SentListID         string
	AdminsListID       string
	CustomFieldContact string
}

// GeminiConfig contains language-model credentials
type GeminiConfig struct {
	APIKey string
	Model  string
}

// StoreConfig selects the entity store backend
type StoreConfig struct {
	Backend string // "trello" or "sqlite"
	DBPath  string // sqlite only
}

// ResolverConfig contains fuzzy-match thresholds (0-100)
type ResolverConfig struct {
	Floor      int // discard candidates scoring below this
	AutoAccept int // auto-resolve when the top score reaches this
}

// ScheduleConfig contains scheduling defaults
type ScheduleConfig struct {
	DefaultSendHour int // local hour for the next-day default due time
}

// SweepConfig contains sweep trigger configuration
type SweepConfig struct {
	Secret          string // shared secret for the trigger endpoint, empty = open
	IntervalMinutes int    // internal ticker interval, 0 = external trigger only
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return &Config{
		Line: LineConfig{
			ChannelToken:  os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
			ChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		},
		Trello: TrelloConfig{
			APIKey:             os.Getenv("TRELLO_API_KEY"),
			Token:              os.Getenv("TRELLO_TOKEN"),
			ScheduledListID:    envOr("TRELLO_SCHEDULED_LIST_ID", "6977369f93d182d2298e671f"),
			ContactsListID:     envOr("TRELLO_CONTACTS_LIST_ID", "69773964fa6f1fe4ff71c21b"),
			SentListID:         envOr("TRELLO_SENT_LIST_ID", "697742862d609f8dd32aff23"),
			AdminsListID:       envOr("TRELLO_ADMINS_LIST_ID", "69775e7a019120099baed077"),
			CustomFieldContact: envOr("TRELLO_CUSTOM_FIELD_CONTACT", "697737cc9cb876d6ede390e4"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  os.Getenv("GEMINI_MODEL"),
		},
		Store: StoreConfig{
			Backend: envOr("STORE_BACKEND", "trello"),
			DBPath:  os.Getenv("STORE_DB_PATH"),
		},
		Resolver: ResolverConfig{
			Floor:      envInt("FUZZY_FLOOR", 50),
			AutoAccept: envInt("FUZZY_AUTO_ACCEPT", 80),
		},
		Schedule: ScheduleConfig{
			DefaultSendHour: envInt("DEFAULT_SEND_HOUR", 9),
		},
		Sweep: SweepConfig{
			Secret:          os.Getenv("CRON_SECRET"),
			IntervalMinutes: envInt("SWEEP_INTERVAL_MINUTES", 0),
		},
		Port: envInt("PORT", 5000),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Line.ChannelToken == "" || c.Line.ChannelSecret == "" {
		return &ConfigError{Field: "LINE_CHANNEL_ACCESS_TOKEN/LINE_CHANNEL_SECRET", Message: "required"}
	}
	if c.Store.Backend != "trello" && c.Store.Backend != "sqlite" {
		return &ConfigError{Field: "STORE_BACKEND", Message: "must be trello or sqlite"}
	}
	if c.Store.Backend == "trello" && (c.Trello.APIKey == "" || c.Trello.Token == "") {
		return &ConfigError{Field: "TRELLO_API_KEY/TRELLO_TOKEN", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
