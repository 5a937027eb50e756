package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Smoobu guest-messaging gateway
	Smoobu SmoobuConfig

	// AI classification/composition service
	AI AIConfig

	// Lark cleaner channel and owner notifications
	Lark LarkConfig

	// Store configuration
	Store StoreConfig

	// Poll configuration
	Poll PollConfig

	// Property defaults used when building conversation context
	Property PropertyConfig

	// Confidence below which requests and replies escalate to the owner
	ConfidenceThreshold float64

	// Prompts configuration (loaded from YAML, defaults built in)
	Prompts *PromptsConfig

	// Log level (zerolog), defaults to info
	LogLevel string

	// Debug mode
	Debug bool
}

// SmoobuConfig contains Smoobu configuration
type SmoobuConfig struct {
	APIKey      string
	BaseURL     string // empty for production
	ApartmentID int64
}

// AIConfig contains the AI service configuration
type AIConfig struct {
	APIKey  string
	BaseURL string // empty for the OpenAI default
	Model   string
}

// LarkConfig contains Lark configuration
type LarkConfig struct {
	AppID         string
	AppSecret     string
	CleanerChatID string // chat with the cleaning staff
	OwnerChatID   string // owner escalation chat; empty falls back to console
	CleanerName   string
}

// StoreConfig contains store configuration
type StoreConfig struct {
	DBPath      string
	CacheDBPath string
}

// PollConfig contains polling configuration
type PollConfig struct {
	Interval      time.Duration
	LookaheadDays int
}

// PropertyConfig contains per-property defaults
type PropertyConfig struct {
	DefaultCheckinTime  string
	DefaultCheckoutTime string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".checkin-bridge", "requests.db")
	}

	cacheDBPath := os.Getenv("CACHE_DB_PATH")
	if cacheDBPath == "" {
		cacheDBPath = filepath.Join(filepath.Dir(dbPath), "reservations.db")
	}

	pollSeconds := 60
	if val := os.Getenv("POLL_INTERVAL"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			pollSeconds = parsed
		}
	}

	lookaheadDays := 14
	if val := os.Getenv("LOOKAHEAD_DAYS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			lookaheadDays = parsed
		}
	}

	threshold := 0.6
	if val := os.Getenv("CONFIDENCE_THRESHOLD"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			threshold = parsed
		}
	}

	var apartmentID int64
	if val := os.Getenv("SMOOBU_APARTMENT_ID"); val != "" {
		apartmentID, _ = strconv.ParseInt(val, 10, 64)
	}

	checkin := os.Getenv("DEFAULT_CHECKIN_TIME")
	if checkin == "" {
		checkin = "15:00"
	}
	checkout := os.Getenv("DEFAULT_CHECKOUT_TIME")
	if checkout == "" {
		checkout = "11:00"
	}

	cleanerName := os.Getenv("CLEANER_NAME")
	if cleanerName == "" {
		cleanerName = "Marie"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	promptsConfig, _ := LoadPromptsConfig(os.Getenv("PROMPTS_CONFIG_PATH"))

	return &Config{
		Smoobu: SmoobuConfig{
			APIKey:      os.Getenv("SMOOBU_API_KEY"),
			BaseURL:     os.Getenv("SMOOBU_BASE_URL"),
			ApartmentID: apartmentID,
		},
		AI: AIConfig{
			APIKey:  os.Getenv("AI_API_KEY"),
			BaseURL: os.Getenv("AI_BASE_URL"),
			Model:   os.Getenv("AI_MODEL"),
		},
		Lark: LarkConfig{
			AppID:         os.Getenv("LARK_APP_ID"),
			AppSecret:     os.Getenv("LARK_APP_SECRET"),
			CleanerChatID: os.Getenv("LARK_CLEANER_CHAT_ID"),
			OwnerChatID:   os.Getenv("LARK_OWNER_CHAT_ID"),
			CleanerName:   cleanerName,
		},
		Store: StoreConfig{
			DBPath:      dbPath,
			CacheDBPath: cacheDBPath,
		},
		Poll: PollConfig{
			Interval:      time.Duration(pollSeconds) * time.Second,
			LookaheadDays: lookaheadDays,
		},
		Property: PropertyConfig{
			DefaultCheckinTime:  checkin,
			DefaultCheckoutTime: checkout,
		},
		ConfidenceThreshold: threshold,
		Prompts:             promptsConfig,
		LogLevel:            logLevel,
		Debug:               os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Smoobu.APIKey == "" {
		return &ConfigError{Field: "SMOOBU_API_KEY", Message: "required"}
	}
	if c.Smoobu.ApartmentID == 0 {
		return &ConfigError{Field: "SMOOBU_APARTMENT_ID", Message: "required"}
	}
	if c.AI.APIKey == "" {
		return &ConfigError{Field: "AI_API_KEY", Message: "required"}
	}
	if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
		return &ConfigError{Field: "LARK_APP_ID/LARK_APP_SECRET", Message: "required"}
	}
	if c.Lark.CleanerChatID == "" {
		return &ConfigError{Field: "LARK_CLEANER_CHAT_ID", Message: "required"}
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
