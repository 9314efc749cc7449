package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// setRequiredEnv sets the three mandatory variables.
func setRequiredEnv(t *testing.T) {
	t.Setenv("AZURE_PIPELINES_TOKEN", "pat-token")
	t.Setenv("AZURE_DEVOPS_ORG_URL", "https://dev.azure.com/acme")
	t.Setenv("AZURE_DEVOPS_PROJECT", "myproject")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PIPETRIAGE_SAVE_LOGS", "true")
	t.Setenv("PIPETRIAGE_LOGS_DIR", "/tmp/snapshots")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/pipetriage")
	t.Setenv("REDPANDA_BROKERS", "localhost:19092, localhost:29092")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Token != "pat-token" || cfg.Project != "myproject" {
		t.Errorf("credentials not loaded: %+v", cfg)
	}
	if !cfg.SaveLogs || cfg.LogsDir != "/tmp/snapshots" {
		t.Errorf("snapshot settings not loaded: %+v", cfg)
	}
	if want := []string{"localhost:19092", "localhost:29092"}; !reflect.DeepEqual(cfg.RedpandaBrokers, want) {
		t.Errorf("RedpandaBrokers = %v, want %v", cfg.RedpandaBrokers, want)
	}
	if !cfg.AgenticMode() {
		t.Error("AgenticMode() = false with brokers configured")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PIPETRIAGE_SAVE_LOGS", "")
	t.Setenv("PIPETRIAGE_LOGS_DIR", "")
	t.Setenv("REDPANDA_BROKERS", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.SaveLogs {
		t.Error("SaveLogs defaulted to true")
	}
	if cfg.LogsDir != DefaultLogsDir {
		t.Errorf("LogsDir = %q, want %q", cfg.LogsDir, DefaultLogsDir)
	}
	if cfg.AgenticMode() {
		t.Error("AgenticMode() = true without brokers")
	}
}

func TestLoadFromEnvInvalidSaveLogs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PIPETRIAGE_SAVE_LOGS", "ture")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("expected an error for an unparseable PIPETRIAGE_SAVE_LOGS")
	}
	if !strings.Contains(err.Error(), "PIPETRIAGE_SAVE_LOGS") {
		t.Errorf("error %v does not name the offending variable", err)
	}
}

func TestLoadFromEnvTrimsOrgURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AZURE_DEVOPS_ORG_URL", "https://dev.azure.com/acme/")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}
	if cfg.OrganizationURL != "https://dev.azure.com/acme" {
		t.Errorf("OrganizationURL = %q, trailing slash not trimmed", cfg.OrganizationURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing token", Config{OrganizationURL: "u", Project: "p"}, ErrMissingToken},
		{"missing org", Config{Token: "t", Project: "p"}, ErrMissingOrganization},
		{"missing project", Config{Token: "t", OrganizationURL: "u"}, ErrMissingProject},
		{"complete", Config{Token: "t", OrganizationURL: "u", Project: "p"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
