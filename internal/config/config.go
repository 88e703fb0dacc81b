package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/erazemk/carregistry/internal/notion"
)

// Configuration keys. They are read from the environment and from an
// optional dotenv file.
const (
	KeyNotionToken      = "NOTION_TOKEN"
	KeyNotionDatabaseID = "NOTION_DATABASE_ID"
	KeyNotionAPIURL     = "NOTION_API_URL"
	KeyNotionVersion    = "NOTION_VERSION"
	KeyPort             = "PORT"
	KeyLogLevel         = "LOG_LEVEL"
	KeyAuthSecret       = "AUTH_SECRET"
)

// DefaultEnvFile is the dotenv file read when present.
const DefaultEnvFile = ".env"

// Config holds the gateway settings. It is loaded once at startup and never
// modified afterwards.
type Config struct {
	NotionToken      string
	NotionDatabaseID string
	NotionAPIURL     string
	NotionVersion    string
	Port             int
	LogLevel         string
	AuthSecret       string
}

// New returns a viper instance with defaults set and the environment bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyNotionAPIURL, notion.DefaultBaseURL)
	v.SetDefault(KeyNotionVersion, notion.DefaultVersion)
	v.SetDefault(KeyPort, 3000)
	v.SetDefault(KeyLogLevel, "info")
	v.AutomaticEnv()
	return v
}

// Load reads envFile, if it exists, and builds the configuration. Environment
// variables take precedence over the file.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", envFile, err)
		}
	}

	port := v.GetInt(KeyPort)
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid %s: %q", KeyPort, v.GetString(KeyPort))
	}

	return &Config{
		NotionToken:      v.GetString(KeyNotionToken),
		NotionDatabaseID: v.GetString(KeyNotionDatabaseID),
		NotionAPIURL:     v.GetString(KeyNotionAPIURL),
		NotionVersion:    v.GetString(KeyNotionVersion),
		Port:             port,
		LogLevel:         v.GetString(KeyLogLevel),
		AuthSecret:       v.GetString(KeyAuthSecret),
	}, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Missing lists the Notion settings that are empty. They are not required to
// start, but every remote call fails without them.
func (c *Config) Missing() []string {
	var missing []string
	if c.NotionToken == "" {
		missing = append(missing, KeyNotionToken)
	}
	if c.NotionDatabaseID == "" {
		missing = append(missing, KeyNotionDatabaseID)
	}
	return missing
}
