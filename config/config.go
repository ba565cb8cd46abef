package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"elaina/database"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `yaml:"discord_token"`
	GuildID      string `yaml:"guild_id"` // Guild to register commands in; empty registers globally
	AdminUID     int64  `yaml:"admin_uid"`

	// Database configuration
	DatabaseURL  string `yaml:"database_url"`
	DatabaseName string `yaml:"database_name"`

	// Economy
	StartingBalance int64 `yaml:"starting_balance"`

	// Channel receiving one log embed per finished game
	LogChannelID string `yaml:"log_channel_id"`

	// Lottery
	LotteryTimezone string `yaml:"lottery_timezone"`
	LotteryDrawCron string `yaml:"lottery_draw_cron"`

	// Weather
	WeatherAPIKey  string `yaml:"weather_api_key"`
	WeatherBaseURL string `yaml:"weather_base_url"`

	// NATS configuration, empty disables event forwarding
	NATSServers string `yaml:"nats_servers"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// OpenTelemetry
	OTelEnabled              bool   `yaml:"otel_enabled"`
	OTelServiceName          string `yaml:"otel_service_name"`
	OTelExporterType         string `yaml:"otel_exporter_type"` // console, otlp, none
	OTelOTLPEndpoint         string `yaml:"otel_otlp_endpoint"`
	OTelExportIntervalMillis int    `yaml:"otel_export_interval_millis"`

	// Environment
	Environment string `yaml:"environment"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL combines the base URL with the configured database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the bot runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func defaults() *Config {
	return &Config{
		StartingBalance:          10000,
		LotteryTimezone:          "Asia/Ho_Chi_Minh",
		LotteryDrawCron:          "0 18 * * *",
		WeatherBaseURL:           "https://api.openweathermap.org/data/2.5",
		LogLevel:                 "info",
		OTelServiceName:          "elaina",
		OTelExporterType:         "none",
		OTelOTLPEndpoint:         "localhost:4317",
		OTelExportIntervalMillis: 60000,
	}
}

// load reads the optional YAML file and then applies environment overrides
func load() (*Config, error) {
	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile merges the YAML file at path into config
func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(config *Config) {
	setString(&config.DiscordToken, "DISCORD_TOKEN")
	setString(&config.GuildID, "GUILD_ID")
	setString(&config.DatabaseURL, "DATABASE_URL")
	setString(&config.DatabaseName, "DATABASE_NAME")
	setString(&config.LogChannelID, "LOG_CHANNEL_ID")
	setString(&config.LotteryTimezone, "LOTTERY_TIMEZONE")
	setString(&config.LotteryDrawCron, "LOTTERY_DRAW_CRON")
	setString(&config.WeatherAPIKey, "WEATHER_API_KEY")
	setString(&config.WeatherBaseURL, "WEATHER_BASE_URL")
	setString(&config.NATSServers, "NATS_SERVERS")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.LogFile, "LOG_FILE")
	setString(&config.OTelServiceName, "OTEL_SERVICE_NAME")
	setString(&config.OTelExporterType, "OTEL_EXPORTER_TYPE")
	setString(&config.OTelOTLPEndpoint, "OTEL_OTLP_ENDPOINT")
	setString(&config.Environment, "ENVIRONMENT")

	if uid := os.Getenv("ADMIN_UID"); uid != "" {
		if parsed, err := strconv.ParseInt(uid, 10, 64); err == nil {
			config.AdminUID = parsed
		}
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if enabled := os.Getenv("OTEL_ENABLED"); enabled != "" {
		config.OTelEnabled = strings.EqualFold(enabled, "true")
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}
}

func (c *Config) validate() error {
	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}
	return nil
}

// setString overwrites dst when the environment variable is set
func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	config := defaults()
	config.Environment = "test"
	config.DiscordToken = "test-token"
	return config
}
