package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Display  DisplayConfig  `toml:"display"`
	Email    EmailConfig    `toml:"email"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"             env:"CARDORACLE_SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `toml:"read_timeout"     env:"CARDORACLE_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `toml:"write_timeout"    env:"CARDORACLE_SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"CARDORACLE_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	AllowedOrigins  []string      `toml:"allowed_origins"  env:"CARDORACLE_SERVER_ALLOWED_ORIGINS"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver string `toml:"driver" env:"CARDORACLE_DB_DRIVER" env-default:"sqlite"`
	// DSN defaults to oracle.db in the data directory for sqlite
	DSN string `toml:"dsn" env:"CARDORACLE_DB_DSN"`
}

type LogConfig struct {
	Mode string `toml:"mode" env:"CARDORACLE_LOG_MODE" env-default:"development"`
}

type DisplayConfig struct {
	PoweredBy        bool   `toml:"powered_by"         env:"CARDORACLE_POWERED_BY"`
	DefaultBackImage string `toml:"default_back_image" env:"CARDORACLE_DEFAULT_BACK_IMAGE" env-default:"/static/cardback.svg"`
	DefaultReading   uint   `toml:"default_reading"    env:"CARDORACLE_DEFAULT_READING"`
}

type EmailConfig struct {
	Allow         bool          `toml:"allow"          env:"CARDORACLE_EMAIL_ALLOW"`
	SubscribeText string        `toml:"subscribe_text" env:"CARDORACLE_EMAIL_SUBSCRIBE_TEXT"`
	From          string        `toml:"from"           env:"CARDORACLE_EMAIL_FROM"`
	FromName      string        `toml:"from_name"      env:"CARDORACLE_EMAIL_FROM_NAME" env-default:"Card Oracle"`
	Subject       string        `toml:"subject"        env:"CARDORACLE_EMAIL_SUBJECT"   env-default:"Your Reading"`
	FormText      string        `toml:"form_text"      env:"CARDORACLE_EMAIL_FORM_TEXT" env-default:"Email this Reading to:"`
	SuccessText   string        `toml:"success_text"   env:"CARDORACLE_EMAIL_SUCCESS_TEXT" env-default:"Your email has been sent. Please make sure to check your spam folder."`
	SMTPHost      string        `toml:"smtp_host"      env:"CARDORACLE_SMTP_HOST" env-default:"localhost"`
	SMTPPort      int           `toml:"smtp_port"      env:"CARDORACLE_SMTP_PORT" env-default:"587"`
	SMTPUsername  string        `toml:"smtp_username"  env:"CARDORACLE_SMTP_USERNAME"`
	SMTPPassword  string        `toml:"smtp_password"  env:"CARDORACLE_SMTP_PASSWORD"`
	Timeout       time.Duration `toml:"timeout"        env:"CARDORACLE_EMAIL_TIMEOUT" env-default:"15s"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    GetDefaultDatabasePath(),
		},
		Log: LogConfig{Mode: "development"},
		Display: DisplayConfig{
			DefaultBackImage: "/static/cardback.svg",
		},
		Email: EmailConfig{
			FromName:    "Card Oracle",
			Subject:     "Your Reading",
			FormText:    "Email this Reading to:",
			SuccessText: "Your email has been sent. Please make sure to check your spam folder.",
			SMTPHost:    "localhost",
			SMTPPort:    587,
			Timeout:     15 * time.Second,
		},
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetCacheDir returns XDG_CACHE_HOME/cardoracle or default path
func GetCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "cardoracle")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cardoracle")
	}
	return filepath.Join(homeDir, ".cache", "cardoracle")
}

// GetDefaultDatabasePath returns the sqlite file used when no DSN is configured
func GetDefaultDatabasePath() string {
	return filepath.Join(GetXDGDataHome(), "cardoracle", "oracle.db")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cardoracle", "config.toml")
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file at the default location is created with defaults.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := write(path, Default()); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = GetDefaultDatabasePath()
	}

	return &cfg, nil
}

// SetDefaultReading stores the reading used by commands run without --reading
func SetDefaultReading(path string, readingID uint) error {
	if path == "" {
		path = GetConfigFilePath()
	}
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	cfg.Display.DefaultReading = readingID
	return write(path, cfg)
}

// write encodes cfg as TOML, creating the parent directory
func write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}
