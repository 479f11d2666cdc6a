package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// defaultAPITimeout is used when api_timeout is not set in the
// configuration file.
const defaultAPITimeout = 30 * time.Second

// Config represents the entire application configuration.
type Config struct {
	APIBaseURL    string        `yaml:"api_base_url"`
	APITimeoutStr string        `yaml:"api_timeout"`
	DatabasePath  string        `yaml:"database_path"`
	DownloadDir   string        `yaml:"download_dir"`
	Web           WebConfig     `yaml:"web"`
	APITimeout    time.Duration // Parsed from APITimeoutStr
}

// WebConfig holds settings specific to the web server.
type WebConfig struct {
	ListenAddress   string `yaml:"listen_address"`
	TemplatesPath   string `yaml:"templates_path"`
	StaticPath      string `yaml:"static_path"`
	DevelopmentMode bool   `yaml:"development_mode"`
}

// Load loads and validates the configuration from the given file path.
func Load(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", filePath)
	}

	configFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(configFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
	}

	if err := validateAndPrepare(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateAndPrepare checks for required fields and sets up derived values.
func validateAndPrepare(c *Config) error {
	if c.APIBaseURL == "" {
		return errors.New("api_base_url is missing")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is missing")
	}

	c.APITimeout = defaultAPITimeout
	if c.APITimeoutStr != "" {
		timeout, err := time.ParseDuration(c.APITimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid api_timeout format: %w", err)
		}
		c.APITimeout = timeout
	}

	if c.DownloadDir == "" {
		c.DownloadDir = "."
	}

	return nil
}

// ValidateWeb checks the web settings, which are only required when the
// web server is started. The on-disk template and static paths are only
// needed in development mode; otherwise the embedded copies serve.
func (c *Config) ValidateWeb() error {
	if c.Web.ListenAddress == "" {
		return errors.New("web.listen_address is missing")
	}
	if c.Web.DevelopmentMode {
		if c.Web.TemplatesPath == "" {
			return errors.New("web.templates_path is missing")
		}
		if c.Web.StaticPath == "" {
			return errors.New("web.static_path is missing")
		}
	}
	return nil
}
