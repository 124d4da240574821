package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	TPT       TPTConfig       `yaml:"tpt"`
	Weather   WeatherConfig   `yaml:"weather"`
	Assistant AssistantConfig `yaml:"assistant"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the store: Postgres when URL is set, otherwise
// the local SQLite file.
type DatabaseConfig struct {
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
}

// TPTConfig holds report-calculator settings.
type TPTConfig struct {
	ReportsDir     string   `yaml:"reports_dir"`
	UploadDir      string   `yaml:"upload_dir"`
	RetentionDays  int      `yaml:"retention_days"`
	ExclusionGroup []string `yaml:"exclusion_group"`

	// Snapshot backend: "file" (default) or "s3".
	SnapshotBackend string `yaml:"snapshot_backend"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`
	S3Region        string `yaml:"s3_region"`
	AWSProfile      string `yaml:"aws_profile"`
}

// WeatherConfig holds OpenWeather settings for the dashboard widget.
type WeatherConfig struct {
	APIKey    string  `yaml:"api_key"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// AssistantConfig holds the OpenAI proxy settings.
type AssistantConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Load reads the YAML config at path and applies defaults. A missing
// file is not an error: the defaults alone run a local instance.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "app.db"
	}
	if cfg.TPT.ReportsDir == "" {
		cfg.TPT.ReportsDir = "data/tpt_reports"
	}
	if cfg.TPT.UploadDir == "" {
		cfg.TPT.UploadDir = "data/uploads"
	}
	if cfg.TPT.RetentionDays == 0 {
		cfg.TPT.RetentionDays = 90
	}
	if cfg.TPT.SnapshotBackend == "" {
		cfg.TPT.SnapshotBackend = "file"
	}
	if cfg.Weather.Latitude == 0 && cfg.Weather.Longitude == 0 {
		cfg.Weather.Latitude = 26.0636
		cfg.Weather.Longitude = -80.2073
	}
	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = "gpt-4o-mini"
	}

	return &cfg, nil
}

// LoadFromEnv loads the YAML config, then overrides from the environment
// (after sourcing .env if present).
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if p := os.Getenv("SQLITE_PATH"); p != "" {
		cfg.Database.SQLitePath = p
	}
	if dir := os.Getenv("TPT_REPORTS_DIR"); dir != "" {
		cfg.TPT.ReportsDir = dir
	}
	if v := os.Getenv("TPT_RETENTION_DAYS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			cfg.TPT.RetentionDays = d
		}
	}
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" {
		cfg.Weather.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Assistant.APIKey = key
	}
	return cfg, nil
}
