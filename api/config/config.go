/* config.go
 * Contains the process configuration. Values come from an optional .env file, the environment and command line flags,
 * with flags taking precedence. User preferences are not configured here, they live in the settings store
 */

package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendMongo  = "mongo"
)

type Config struct {
	SettingsBackend   string
	SettingsFile      string
	SettingsProfile   string
	MongoURI          string
	MongoDatabase     string
	LogLevel          string
	LogJSON           bool
	DiscordToken      string
	DiscordChannel    string
	HTTPAddr          string
	RequestsPerSecond float64
	RequestTimeout    time.Duration
	Once              string
}

// Load reads the configuration.
// Preconditions: Receives the command line arguments without the program name
// Postconditions: Returns the configuration, or an error if a value is malformed or a required value is missing
func Load(args []string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (*Config, error) {
	env := func(key string, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	rps, err := strconv.ParseFloat(env("REQUESTS_PER_SECOND", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUESTS_PER_SECOND: %w", err)
	}
	timeout, err := time.ParseDuration(env("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{}
	fs := flag.NewFlagSet("live-tennis", flag.ContinueOnError)
	fs.StringVar(&cfg.SettingsBackend, "settings", env("SETTINGS_BACKEND", BackendFile), "Settings backend: memory, file or mongo")
	fs.StringVar(&cfg.SettingsFile, "settings-file", env("SETTINGS_FILE", "./live-tennis.yaml"), "Path of the YAML settings file")
	fs.StringVar(&cfg.SettingsProfile, "profile", env("SETTINGS_PROFILE", "default"), "Settings profile stored in MongoDB")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", env("MONGO_URI", ""), "MongoDB connection string")
	fs.StringVar(&cfg.MongoDatabase, "mongo-db", env("MONGO_DB", "live_tennis"), "MongoDB database name")
	fs.StringVar(&cfg.LogLevel, "log-level", env("LOG_LEVEL", "info"), "Log level")
	fs.StringVar(&cfg.DiscordChannel, "discord-channel", env("DISCORD_CHANNEL_ID", ""), "Discord channel receiving notifications")
	fs.StringVar(&cfg.HTTPAddr, "http", env("HTTP_ADDR", ""), "Address of the status server, empty disables it")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", rps, "Outbound requests per second")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", timeout, "Timeout of a single outbound request")
	fs.StringVar(&cfg.Once, "once", "false", "Run a single fetch cycle and exit: takes true or false as argument")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg.LogJSON = strings.EqualFold(env("LOG_FORMAT", "text"), "json")
	cfg.DiscordToken = env("DISCORD_TOKEN", "")

	switch cfg.SettingsBackend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the mongo settings backend")
		}
	default:
		return nil, fmt.Errorf("unknown settings backend %q", cfg.SettingsBackend)
	}
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %v", cfg.RequestsPerSecond)
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannel == "" {
		return nil, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}

	return cfg, nil
}
