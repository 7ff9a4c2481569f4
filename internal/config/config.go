package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort       int           `yaml:"port"`
	DatabasePath     string        `yaml:"databasePath"` // Store endpoint
	BackupDir        string        `yaml:"backupDir"`
	BackupRetention  time.Duration `yaml:"backupRetention"`
	BackupMaxRecords int           `yaml:"backupMaxRecords"`
	BackupSchedule   string        `yaml:"backupSchedule"` // Empty disables the in-process scheduler
	JWTSecret        string        `yaml:"jwtSecret"`
	JWTTTL           time.Duration `yaml:"jwtTTL"`
	AllowedOrigins   []string      `yaml:"allowedOrigins"`
	LogLevel         string        `yaml:"logLevel"`
	AppEnv           string        `yaml:"appEnv"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		ServerPort:       3001,
		DatabasePath:     "./cms.db",
		BackupDir:        "./backups",
		BackupRetention:  10 * 24 * time.Hour,
		BackupMaxRecords: 20,
		JWTSecret:        "cms-jwt-secret-change-in-production",
		JWTTTL:           24 * time.Hour,
		AllowedOrigins:   []string{"http://localhost:3000"},
		LogLevel:         "info",
		AppEnv:           "development",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshalling yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	if v, ok := os.LookupEnv("PORT"); ok {
		if c.ServerPort, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
	}
	if v, ok := os.LookupEnv("BACKUP_RETENTION"); ok {
		if c.BackupRetention, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid BACKUP_RETENTION: %w", err)
		}
	}
	if v, ok := os.LookupEnv("BACKUP_MAX_RECORDS"); ok {
		if c.BackupMaxRecords, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid BACKUP_MAX_RECORDS: %w", err)
		}
	}
	if v, ok := os.LookupEnv("JWT_TTL"); ok {
		if c.JWTTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid JWT_TTL: %w", err)
		}
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}

	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.BackupDir = getEnv("BACKUP_DIR", c.BackupDir)
	c.BackupSchedule = getEnv("BACKUP_SCHEDULE", c.BackupSchedule)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	return nil
}

// Validate rejects values the backup job and server cannot run with.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 {
		return fmt.Errorf("port must be positive, got %d", c.ServerPort)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.BackupDir == "" {
		return fmt.Errorf("backup directory is required")
	}
	if c.BackupRetention <= 0 {
		return fmt.Errorf("backup retention must be positive, got %s", c.BackupRetention)
	}
	if c.BackupMaxRecords <= 0 {
		return fmt.Errorf("backup max records must be positive, got %d", c.BackupMaxRecords)
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			return fmt.Errorf("invalid backup schedule: %w", err)
		}
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
