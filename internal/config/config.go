package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxUploadSize = 25 * 1024 * 1024 // 25MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the Rollkeeper server
type Config struct {
	// Server configuration
	Host string
	Port int

	// Data configuration
	DataDir      string // root for the sqlite database and blob store
	AliasOverlay string // optional YAML file with extra sheet field aliases

	// Application configuration
	Version       string
	ServerName    string
	LogLevel      string
	MaxUploadSize int64 // Maximum uploaded PDF size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		DataDir:       filepath.Join(currentDir, "data"),
		AliasOverlay:  "",
		Version:       "1.0.0",
		ServerName:    "rollkeeper",
		LogLevel:      DefaultLogLevel,
		MaxUploadSize: DefaultMaxUploadSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.DataDir != "" {
		if expandedPath, err := filepath.Abs(cfg.DataDir); err == nil {
			cfg.DataDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("ROLLKEEPER")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("datadir", cfg.DataDir)
	viper.SetDefault("aliases", cfg.AliasOverlay)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxuploadsize", cfg.MaxUploadSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("datadir", cfg.DataDir, "Directory for the database and stored sheets")
	pflag.String("aliases", cfg.AliasOverlay, "Optional YAML file with extra sheet field aliases")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxuploadsize", cfg.MaxUploadSize, "Maximum uploaded PDF size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("datadir", pflag.Lookup("datadir"))
	_ = viper.BindPFlag("aliases", pflag.Lookup("aliases"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxuploadsize", pflag.Lookup("maxuploadsize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nRollkeeper - campaign character-sheet manager\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # defaults, ./data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --datadir=/var/lib/rollkeeper    # custom data directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081       # listen on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  ROLLKEEPER_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  ROLLKEEPER_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  ROLLKEEPER_DATADIR        Data directory\n")
		fmt.Fprintf(os.Stderr, "  ROLLKEEPER_ALIASES        Alias overlay file\n")
		fmt.Fprintf(os.Stderr, "  ROLLKEEPER_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  ROLLKEEPER_MAXUPLOADSIZE  Maximum upload size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DataDir = viper.GetString("datadir")
	cfg.AliasOverlay = viper.GetString("aliases")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxUploadSize = viper.GetInt64("maxuploadsize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate data directory
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}

	// Check if data directory exists, create if it doesn't
	if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.DataDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create data directory %s: %w", c.DataDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access data directory %s: %w", c.DataDir, err)
	}

	// Alias overlay is optional, but must exist when set
	if c.AliasOverlay != "" {
		if _, err := os.Stat(c.AliasOverlay); err != nil {
			return fmt.Errorf("cannot access alias overlay %s: %w", c.AliasOverlay, err)
		}
	}

	// Validate max upload size
	if c.MaxUploadSize <= 0 {
		return errors.New("maximum upload size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabasePath returns the location of the sqlite database file
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "rollkeeper.db")
}

// BlobDir returns the root directory of the blob store
func (c *Config) BlobDir() string {
	return filepath.Join(c.DataDir, "sheets")
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, DataDir: %s, LogLevel: %s, MaxUploadSize: %d}",
		c.Host, c.Port, c.DataDir, c.LogLevel, c.MaxUploadSize)
}
