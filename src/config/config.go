// Package config provides configuration management for pipetriage.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingToken        = errors.New("AZURE_PIPELINES_TOKEN environment variable is required")
	ErrMissingOrganization = errors.New("AZURE_DEVOPS_ORG_URL environment variable is required")
	ErrMissingProject      = errors.New("AZURE_DEVOPS_PROJECT environment variable is required")
)

// DefaultLogsDir is where JSON snapshots land when no directory is configured.
const DefaultLogsDir = "logs"

// Config holds the application configuration. It is passed explicitly at
// construction; no component reads the environment on its own.
type Config struct {
	// Token is the Azure DevOps personal access token used for basic auth.
	Token string
	// OrganizationURL is the org base URL, e.g. https://dev.azure.com/acme.
	OrganizationURL string
	// Project is the Azure DevOps project name.
	Project string

	// SaveLogs enables JSON snapshot side artifacts under LogsDir.
	SaveLogs bool
	// LogsDir is the snapshot output directory.
	LogsDir string

	// PostgresDSN enables verdict persistence when set.
	PostgresDSN string
	// RedpandaBrokers enables distributed agent mode when non-empty.
	RedpandaBrokers []string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Token:           os.Getenv("AZURE_PIPELINES_TOKEN"),
		OrganizationURL: strings.TrimRight(os.Getenv("AZURE_DEVOPS_ORG_URL"), "/"),
		Project:         os.Getenv("AZURE_DEVOPS_PROJECT"),
		LogsDir:         os.Getenv("PIPETRIAGE_LOGS_DIR"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
	}

	if v := os.Getenv("PIPETRIAGE_SAVE_LOGS"); v != "" {
		saveLogs, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PIPETRIAGE_SAVE_LOGS value %q: %w", v, err)
		}
		cfg.SaveLogs = saveLogs
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = DefaultLogsDir
	}
	if brokers := os.Getenv("REDPANDA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.RedpandaBrokers = append(cfg.RedpandaBrokers, b)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the provider credentials are present. Missing values
// are configuration errors the caller decides how to surface; the core never
// terminates the process.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.OrganizationURL == "" {
		return ErrMissingOrganization
	}
	if c.Project == "" {
		return ErrMissingProject
	}
	return nil
}

// AgenticMode reports whether the distributed agent stack is configured.
func (c *Config) AgenticMode() bool {
	return len(c.RedpandaBrokers) > 0
}
