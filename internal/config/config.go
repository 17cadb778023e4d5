package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath           = "storyweaver.yaml"
	DefaultGeofenceRadius = 10.0
	DefaultPollInterval   = 3 * time.Second

	EnvDatabaseDSN   = "STORYWEAVER_DATABASE_DSN"
	EnvNeo4jPassword = "STORYWEAVER_NEO4J_PASSWORD"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Stories  []string       `yaml:"stories"`
	Exclude  []string       `yaml:"exclude"`
	Database DatabaseConfig `yaml:"database"`
	Export   ExportConfig   `yaml:"export"`
	Player   PlayerConfig   `yaml:"player"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ExportConfig struct {
	Author              string `yaml:"author"`
	BaseManifestURL     string `yaml:"base_manifest_url"`
	PlatformManifestURL string `yaml:"platform_manifest_url"`
	VRActorMapping      string `yaml:"vr_actor_mapping"`
	VRLocationMapping   string `yaml:"vr_location_mapping"`
	OutputDir           string `yaml:"output_dir"`
}

type PlayerConfig struct {
	GeofenceRadius float64       `yaml:"geofence_radius_m"`
	PollInterval   time.Duration `yaml:"poll_interval"`
}

// Neo4jConfig is optional; an empty URI disables the graph mirror.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadProjectConfig reads path, loads a .env file sitting next to it when
// present, applies environment overrides and defaults, then validates.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	envPath := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *ProjectConfig) {
	if dsn := os.Getenv(EnvDatabaseDSN); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if password := os.Getenv(EnvNeo4jPassword); password != "" {
		cfg.Neo4j.Password = password
	}
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Player.GeofenceRadius == 0 {
		cfg.Player.GeofenceRadius = DefaultGeofenceRadius
	}
	if cfg.Player.PollInterval == 0 {
		cfg.Player.PollInterval = DefaultPollInterval
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "export"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Neo4j.URI != "" && cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = "neo4j"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !strings.HasPrefix(cfg.Database.DSN, "sqlite://") &&
		!strings.HasPrefix(cfg.Database.DSN, "postgres://") &&
		!strings.HasPrefix(cfg.Database.DSN, "postgresql://") {
		return fmt.Errorf("database dsn must start with sqlite:// or postgres://")
	}
	if cfg.Player.GeofenceRadius < 0 {
		return fmt.Errorf("player geofence_radius_m must be positive")
	}
	if cfg.Player.PollInterval < 0 {
		return fmt.Errorf("player poll_interval must be positive")
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported logging format: %s", cfg.Logging.Format)
	}
	return nil
}
