// file: internal/config/persistence_test.go
// version: 1.4.0
// guid: 5e6f7a8b-9c0d-1e2f-3a4b-5c6d7e8f9a0b

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetConfigTestState() {
	viper.Reset()
	AppConfig = Config{}
}

func TestConfigFilePath(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	AppConfig.DatabasePath = "/data/rxscribe.db"
	if got := ConfigFilePath(); got != filepath.Join("/data", "config.yaml") {
		t.Errorf("unexpected config path: %s", got)
	}

	AppConfig.DatabasePath = ""
	if got := ConfigFilePath(); got != "" {
		t.Errorf("expected empty path without a database path, got %s", got)
	}
}

func TestSaveAndLoadConfigFile(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	dir := t.TempDir()
	InitConfig()
	AppConfig.DatabasePath = filepath.Join(dir, "rxscribe.db")
	AppConfig.CatalogCSV = filepath.Join(dir, "medicines.csv")
	AppConfig.OpenAIAPIKey = "sk-test"
	AppConfig.EnableAIRecognition = true

	if err := SaveConfigToFile(); err != nil {
		t.Fatalf("SaveConfigToFile failed: %v", err)
	}

	info, err := os.Stat(ConfigFilePath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	// A fresh config should pick the saved values back up as fallbacks.
	saved := AppConfig.DatabasePath
	AppConfig = Config{DatabasePath: saved}
	if err := LoadConfigFromFile(); err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}

	if AppConfig.CatalogCSV != filepath.Join(dir, "medicines.csv") {
		t.Errorf("catalog_csv not restored, got %q", AppConfig.CatalogCSV)
	}
	if AppConfig.OpenAIAPIKey != "sk-test" {
		t.Error("openai_api_key not restored")
	}
	if !AppConfig.EnableAIRecognition {
		t.Error("enable_ai_recognition not restored")
	}
}

func TestLoadConfigFileDoesNotOverrideSetValues(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	dir := t.TempDir()
	AppConfig.DatabasePath = filepath.Join(dir, "rxscribe.db")
	data := []byte("catalog_csv: /from/file.csv\nopenai_api_key: sk-file\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	AppConfig.CatalogCSV = "/from/env.csv"
	if err := LoadConfigFromFile(); err != nil {
		t.Fatalf("LoadConfigFromFile failed: %v", err)
	}

	if AppConfig.CatalogCSV != "/from/env.csv" {
		t.Errorf("file value must not override an already-set value, got %q", AppConfig.CatalogCSV)
	}
	if AppConfig.OpenAIAPIKey != "sk-file" {
		t.Error("empty field must be filled from file")
	}
}

func TestLoadConfigFileMissingIsNotAnError(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	AppConfig.DatabasePath = filepath.Join(t.TempDir(), "rxscribe.db")
	if err := LoadConfigFromFile(); err != nil {
		t.Errorf("missing config file must not be an error, got %v", err)
	}
}

func TestLoadConfigFileBadYAMLIsTolerated(t *testing.T) {
	resetConfigTestState()
	t.Cleanup(resetConfigTestState)

	dir := t.TempDir()
	AppConfig.DatabasePath = filepath.Join(dir, "rxscribe.db")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfigFromFile(); err != nil {
		t.Errorf("unparseable config file must be tolerated, got %v", err)
	}
}
