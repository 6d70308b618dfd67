package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Activity  ActivityConfig  `mapstructure:"activity"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Keepalive KeepaliveConfig `mapstructure:"keepalive"`
}

type TelegramConfig struct {
	Token            string  `mapstructure:"token"`
	ConfessionChatID int64   `mapstructure:"confession_chat_id"`
	AdminIDs         []int64 `mapstructure:"admin_ids"`
}

type ActivityConfig struct {
	MaxSamples   int    `mapstructure:"max_samples"`
	SaveInterval int    `mapstructure:"save_interval"`
	DataFile     string `mapstructure:"data_file"`
	CounterFile  string `mapstructure:"counter_file"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type KeepaliveConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("activity.max_samples", 5000)
	v.SetDefault("activity.save_interval", 30)
	v.SetDefault("activity.data_file", "activity.json")
	v.SetDefault("activity.counter_file", "confession_count.json")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)
	v.SetDefault("keepalive.enabled", true)
	v.SetDefault("keepalive.port", 8080)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if n := v.GetInt("MAX_SAMPLES_PER_USER"); n > 0 {
		config.Activity.MaxSamples = n
	}

	if n := v.GetInt("SAVE_INTERVAL"); n > 0 {
		config.Activity.SaveInterval = n
	}

	return &config, nil
}
