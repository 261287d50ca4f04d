package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/collision-records-go/internal/table"
)

// Config holds the locations and options of one enrichment run
type Config struct {
	CollisionsPath string `yaml:"collisions_path"`
	PartiesPath    string `yaml:"parties_path"`
	VictimsPath    string `yaml:"victims_path"`
	OutputPath     string `yaml:"output_path"`
	ReportPath     string `yaml:"report_path"`
	DBPath         string `yaml:"db_path"` // empty disables SQLite persistence
	JoinPolicy     string `yaml:"join_policy"`
	LogLevel       string `yaml:"log_level"`
	LogJSON        bool   `yaml:"log_json"`
	BatchSize      int    `yaml:"batch_size"` // rows per SQLite insert batch
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		CollisionsPath: "data/Collisions.csv",
		PartiesPath:    "data/Parties.csv",
		VictimsPath:    "data/Victims.csv",
		OutputPath:     "data/related_collisions.csv",
		ReportPath:     "data/collision_report.json",
		JoinPolicy:     string(table.InnerJoin),
		LogLevel:       "info",
		BatchSize:      1000,
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a .env file
// in the working directory and the environment, later sources winning.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.CollisionsPath = getEnv("COLLISIONS_CSV", c.CollisionsPath)
	c.PartiesPath = getEnv("PARTIES_CSV", c.PartiesPath)
	c.VictimsPath = getEnv("VICTIMS_CSV", c.VictimsPath)
	c.OutputPath = getEnv("OUTPUT_CSV", c.OutputPath)
	c.ReportPath = getEnv("REPORT_JSON", c.ReportPath)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.JoinPolicy = getEnv("JOIN_POLICY", c.JoinPolicy)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	logJSON, err := parseBoolEnv("LOG_JSON", c.LogJSON)
	if err != nil {
		return fmt.Errorf("parse LOG_JSON: %w", err)
	}
	c.LogJSON = logJSON

	batch, err := parseIntEnv("DB_BATCH_SIZE", c.BatchSize)
	if err != nil {
		return fmt.Errorf("parse DB_BATCH_SIZE: %w", err)
	}
	c.BatchSize = batch
	return nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"collisions path", c.CollisionsPath},
		{"parties path", c.PartiesPath},
		{"victims path", c.VictimsPath},
		{"output path", c.OutputPath},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	if _, err := table.ParseJoinPolicy(c.JoinPolicy); err != nil {
		return fmt.Errorf("join policy: %w", err)
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	return nil
}

// Policy returns the parsed join policy. Call Validate first.
func (c Config) Policy() table.JoinPolicy {
	p, err := table.ParseJoinPolicy(c.JoinPolicy)
	if err != nil {
		return table.InnerJoin
	}
	return p
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(val)
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}
